package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/school"
	"github.com/trezcool/scorebook/core/statistic"
	exportsvc "github.com/trezcool/scorebook/services/export"
)

// view loads the collections and projects them with vf.
func (cli *commandLine) view(ctx context.Context, vf statistic.ViewFilter) (statistic.View, error) {
	if err := vf.Validate(cli.validate); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return statistic.View{}, filterError(core.TranslateValidationErrors(verrs, cli.translator))
		}
		return statistic.View{}, err
	}
	if err := cli.svc.Load(ctx); err != nil {
		return statistic.View{}, err
	}
	return cli.svc.View(vf.Query())
}

// filterError lists the invalid flags of a ValidationError, eg: "invalid filter: class must be a valid number".
func filterError(err error) error {
	var verr *core.ValidationError
	if !errors.As(err, &verr) || len(verr.Fields) == 0 {
		return err
	}
	msgs := make([]string, len(verr.Fields))
	for i, f := range verr.Fields {
		msgs[i] = f.Error
	}
	return errors.Errorf("invalid filter: %s", strings.Join(msgs, "; "))
}

// report prints the statistics table followed by the column averages.
func (cli *commandLine) report(ctx context.Context, vf statistic.ViewFilter) error {
	v, err := cli.view(ctx, vf)
	if err != nil {
		return err
	}
	if v.Count == 0 {
		fmt.Fprintln(cli.out, "no students")
		return nil
	}

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Code\tName\tClass\tHK1\tHK2\tProject\tTotal\tAttendance\tHomework\tPreparation\t")
	for _, r := range v.Rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d%%\t%d%%\t%d%%\t\n",
			r.StudentCode, r.Name, r.ClassName,
			school.FormatScore(r.HK1), school.FormatScore(r.HK2), school.FormatScore(r.Project), school.FormatScore(r.Total),
			r.Attendance, r.Homework, r.Preparation,
		)
	}
	avg := v.Averages
	fmt.Fprintf(w, "Average\t\t\t%s\t%s\t%s\t%s\t%s%%\t%s%%\t%s%%\t\n",
		school.FormatScore(avg.HK1), school.FormatScore(avg.HK2), school.FormatScore(avg.Project), school.FormatScore(avg.Total),
		school.FormatScore(avg.Attendance), school.FormatScore(avg.Homework), school.FormatScore(avg.Preparation),
	)
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d students\n", v.Count)
	return nil
}

func (cli *commandLine) export(ctx context.Context, vf statistic.ViewFilter, path string) error {
	v, err := cli.view(ctx, vf)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating export file")
	}
	if err := exportsvc.WriteXLSX(f, v); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "closing export file")
	}
	fmt.Fprintf(cli.out, "%d students exported to %s\n", v.Count, path)
	return nil
}

func (cli *commandLine) seedScores(ctx context.Context, studentID int64) error {
	if err := cli.svc.Load(ctx); err != nil {
		return err
	}
	created, err := cli.svc.SeedScores(ctx, studentID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d score rows created\n", len(created))
	return nil
}
