package database

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"github.com/khankhulgun/khandb/connection"
)

var ErrDatabaseNotFound = errors.New("database path does not exist")

func (d *DB) requireSQLite() error {
	if d.cfg.Dialect != connection.DialectSQLite {
		return ErrSQLiteOnly
	}
	return nil
}

// Databases lists the databases attached to the SQLite connection.
func (d *DB) Databases() (dataframe.DataFrame, error) {
	if err := d.requireSQLite(); err != nil {
		return dataframe.DataFrame{}, err
	}
	return d.QueryFrame("PRAGMA database_list;")
}

// AttachDB attaches another SQLite database file. When name is empty the
// file name without extension is used.
func (d *DB) AttachDB(path, name string) (dataframe.DataFrame, error) {
	if err := d.requireSQLite(); err != nil {
		return dataframe.DataFrame{}, err
	}
	path = strings.ReplaceAll(path, "\\", "/")
	if _, err := os.Stat(path); err != nil {
		return dataframe.DataFrame{}, ErrDatabaseNotFound
	}
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return d.Sql("ATTACH ? AS ?;", []interface{}{path, name})
}

// DetachDB detaches a previously attached database by name.
func (d *DB) DetachDB(name string) (dataframe.DataFrame, error) {
	if err := d.requireSQLite(); err != nil {
		return dataframe.DataFrame{}, err
	}
	return d.Sql("DETACH DATABASE ?;", []interface{}{name})
}

// CreateIndex creates an index named idx_<table>_<column> on table.column.
func (d *DB) CreateIndex(table, column string) (dataframe.DataFrame, error) {
	return d.Sql(
		"CREATE INDEX idx_{{ tbl }}_{{ col }} ON {{ tbl }} ({{ col }});",
		map[string]interface{}{"tbl": table, "col": column},
	)
}
