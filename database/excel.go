package database

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/tealeg/xlsx/v3"
)

var ErrWhereClauseCount = errors.New("whereClauses must match tables in length")

// ExportTablesToExcel writes each table to a sheet of an .xlsx workbook.
// whereClauses may be nil, or hold one "WHERE ..." (or empty) entry per
// table. stripPattern, when non-empty, is a regular expression removed from
// table names to build sheet names.
func (d *DB) ExportTablesToExcel(tables []string, path string, whereClauses []string, stripPattern string) error {
	if whereClauses == nil {
		whereClauses = make([]string, len(tables))
	}
	if len(whereClauses) != len(tables) {
		return ErrWhereClauseCount
	}

	var strip *regexp.Regexp
	if stripPattern != "" {
		var err error
		strip, err = regexp.Compile(stripPattern)
		if err != nil {
			return fmt.Errorf("invalid strip pattern: %w", err)
		}
	}

	file := xlsx.NewFile()
	for i, table := range tables {
		df, err := d.Sql(
			"SELECT * FROM {{ tbl }} {{ where }}",
			map[string]interface{}{"tbl": table, "where": whereClauses[i]},
		)
		if err != nil {
			return fmt.Errorf("failed to export table %q: %w", table, err)
		}

		sheetName := table
		if strip != nil {
			sheetName = strip.ReplaceAllString(sheetName, "")
		}
		sheet, err := file.AddSheet(sheetName)
		if err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", sheetName, err)
		}

		header := sheet.AddRow()
		for _, name := range df.Names() {
			header.AddCell().SetValue(name)
		}
		for r := 0; r < df.Nrow(); r++ {
			row := sheet.AddRow()
			for c := 0; c < df.Ncol(); c++ {
				elem := df.Elem(r, c)
				if elem.IsNA() {
					row.AddCell()
					continue
				}
				row.AddCell().SetValue(elem.Val())
			}
		}
	}

	if err := file.Save(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
