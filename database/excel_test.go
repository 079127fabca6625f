package database

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/tealeg/xlsx/v3"
)

func TestExportTablesToExcel(t *testing.T) {
	d := newTestDB(t)
	mustExec(t, d, `
		CREATE TABLE obs_birds (id INTEGER, name TEXT);
		INSERT INTO obs_birds VALUES (1, 'heron');
		INSERT INTO obs_birds VALUES (2, 'crane');
		CREATE TABLE obs_fish (id INTEGER, name TEXT);
		INSERT INTO obs_fish VALUES (1, 'pike');`)

	path := filepath.Join(t.TempDir(), "export.xlsx")
	err := d.ExportTablesToExcel(
		[]string{"obs_birds", "obs_fish"}, path,
		[]string{"", "WHERE id = 1"}, "^obs_")
	if err != nil {
		t.Fatalf("ExportTablesToExcel() error: %v", err)
	}

	file, err := xlsx.OpenFile(path)
	if err != nil {
		t.Fatalf("workbook does not open: %v", err)
	}
	if len(file.Sheets) != 2 {
		t.Fatalf("workbook has %d sheets, want 2", len(file.Sheets))
	}
	if file.Sheets[0].Name != "birds" || file.Sheets[1].Name != "fish" {
		t.Errorf("sheet names = %q, %q; strip pattern not applied",
			file.Sheets[0].Name, file.Sheets[1].Name)
	}
	// Header row plus data rows.
	if got := file.Sheets[0].MaxRow; got != 3 {
		t.Errorf("birds sheet has %d rows, want 3", got)
	}
	if got := file.Sheets[1].MaxRow; got != 2 {
		t.Errorf("fish sheet has %d rows, want 2", got)
	}
}

func TestExportTablesToExcelBadWhereCount(t *testing.T) {
	d := newTestDB(t)
	err := d.ExportTablesToExcel([]string{"a", "b"}, "out.xlsx", []string{"WHERE 1"}, "")
	if !errors.Is(err, ErrWhereClauseCount) {
		t.Errorf("err = %v, want ErrWhereClauseCount", err)
	}
}
