package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grade"
)

var (
	titleColor   = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

func (cli *commandLine) listGrades(ordering string) error {
	listing, err := cli.gradeSvc.ListGrades(context.Background(), "", core.ParseOrdering(ordering)...)
	if err != nil {
		return err
	}
	if len(listing.Records) == 0 {
		warnColor.Fprintln(cli.out, "No grade records.")
		return nil
	}

	titleColor.Fprintf(cli.out, "\n%d grade records\n", len(listing.Records))
	table := tablewriter.NewWriter(cli.out)
	table.SetHeader(grade.Columns)
	for _, rec := range listing.Records {
		table.Append([]string{
			strconv.Itoa(rec.ID),
			rec.Name,
			strconv.Itoa(rec.MiddleGrade),
			strconv.Itoa(rec.FinalGrade),
			strconv.Itoa(rec.Grade),
		})
	}
	table.Render()
	return nil
}

func (cli *commandLine) importGrades(fp string) error {
	file, err := os.Open(fp)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	res, err := cli.gradeSvc.Import(context.Background(), file, filepath.Base(fp))
	if err != nil {
		if vErr, ok := errors.Cause(err).(*core.ValidationError); ok {
			for _, fErr := range vErr.Fields {
				errorColor.Fprintf(cli.out, "%s: %s\n", fErr.Field, fErr.Error)
			}
		}
		return err
	}
	successColor.Fprintf(cli.out, "imported %d grade records (%d rows, %d duplicates)\n", res.Saved, res.Rows, res.Duplicates)
	return nil
}

func (cli *commandLine) exportGrades(format, out string) error {
	ex, err := cli.gradeSvc.Export(context.Background(), format)
	if err != nil {
		return err
	}
	if out == "" {
		out = ex.Filename
	}
	if err = os.WriteFile(out, ex.Content, 0o644); err != nil {
		return errors.Wrap(err, "writing export")
	}
	successColor.Fprintf(cli.out, "exported grades to %s\n", out)
	return nil
}

func (cli *commandLine) deleteGrades() error {
	if err := cli.gradeSvc.DeleteAll(context.Background()); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "deleted all grade records")
	return nil
}
