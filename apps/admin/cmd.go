package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/scorebook/core/statistic"
)

var (
	errHelp = errors.New("help provided")
)

type commandLine struct {
	svc        *statistic.Service
	db         *sqlx.DB // nil unless the backend is a SQL database
	validate   *validator.Validate
	translator ut.Translator
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  report [-search TEXT] [-class ID] [-ordering FIELD] - print the statistics table")
	fmt.Fprintln(cli.out, "  export -o FILE [-search TEXT] [-class ID] [-ordering FIELD] - write the statistics table to an xlsx file")
	fmt.Fprintln(cli.out, "  seedscores -student ID - create empty score rows for the subjects a student has none for")
	fmt.Fprintln(cli.out, "  importdb -file FILE - import a db.json file into the SQL database")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, down, redo, status, version...) on the SQL database")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func viewFlags(fs *flag.FlagSet) *statistic.ViewFilter {
	var vf statistic.ViewFilter
	fs.StringVar(&vf.Search, "search", "", "Filter by student name or code.")
	fs.StringVar(&vf.Class, "class", "", "Filter by class ID.")
	fs.StringVar(&vf.Ordering, "ordering", "", "Sort column, prefixed with - for descending. eg: -total")
	return &vf
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	reportCmd := cli.newFlagSet("report")
	reportFilter := viewFlags(reportCmd)

	exportCmd := cli.newFlagSet("export")
	exportFilter := viewFlags(exportCmd)
	exportOut := exportCmd.String("o", "", "The xlsx file to write.")

	seedScoresCmd := cli.newFlagSet("seedscores")
	seedScoresStudent := seedScoresCmd.Int64("student", 0, "The student's ID.")

	importDBCmd := cli.newFlagSet("importdb")
	importDBFile := importDBCmd.String("file", "", "The db.json file to import.")

	switch args[1] {
	case "report":
		if err := reportCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.report(ctx, *reportFilter)
	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *exportOut == "" {
			exportCmd.Usage()
			return errHelp
		}
		return cli.export(ctx, *exportFilter, *exportOut)
	case "seedscores":
		if err := seedScoresCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *seedScoresStudent <= 0 {
			seedScoresCmd.Usage()
			return errHelp
		}
		return cli.seedScores(ctx, *seedScoresStudent)
	case "importdb":
		if err := importDBCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importDBFile == "" {
			importDBCmd.Usage()
			return errHelp
		}
		return cli.importDB(ctx, *importDBFile)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}
