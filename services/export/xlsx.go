// Package exportsvc renders statistics views as spreadsheets.
package exportsvc

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/scorebook/core/statistic"
)

const (
	SheetName   = "Statistics"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var header = []interface{}{
	"Code", "Name", "Class", "Subjects",
	"HK1", "HK2", "Project", "Total",
	"Attendance", "Homework", "Preparation",
}

// WriteXLSX writes the rows of v as an XLSX workbook, followed by an averages row when v has one.
func WriteXLSX(w io.Writer, v statistic.View) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating style")
	}

	setRow := func(row int, values []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		return f.SetSheetRow(SheetName, cell, &values)
	}

	if err := setRow(1, header); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for i, r := range v.Rows {
		values := []interface{}{
			r.StudentCode, r.Name, r.ClassName, r.SubjectsCount,
			r.HK1, r.HK2, r.Project, r.Total,
			r.Attendance, r.Homework, r.Preparation,
		}
		if err := setRow(i+2, values); err != nil {
			return errors.Wrapf(err, "writing student %d", r.ID)
		}
	}

	if avg := v.Averages; avg != nil {
		last := len(v.Rows) + 2
		values := []interface{}{
			"Average", "", "", "",
			avg.HK1, avg.HK2, avg.Project, avg.Total,
			avg.Attendance, avg.Homework, avg.Preparation,
		}
		if err := setRow(last, values); err != nil {
			return errors.Wrap(err, "writing averages")
		}
		if err := f.SetRowStyle(SheetName, last, last, bold); err != nil {
			return errors.Wrap(err, "styling averages")
		}
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return errors.Wrap(err, "styling header")
	}

	return errors.Wrap(f.Write(w), "writing workbook")
}
