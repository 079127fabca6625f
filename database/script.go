package database

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gorm.io/gorm"
)

var (
	ErrScriptNotFound = errors.New("script file not found")
	ErrTableExists    = errors.New("target table already exists")
	ErrEmptyFrame     = errors.New("dataframe has no columns")
)

// ExecuteScriptFile runs an SQL script from disk. When record is non-nil the
// script is template-substituted before execution.
func (d *DB) ExecuteScriptFile(path string, record map[string]interface{}) (dataframe.DataFrame, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return dataframe.DataFrame{}, fmt.Errorf("%w: %s", ErrScriptNotFound, path)
		}
		return dataframe.DataFrame{}, err
	}

	script := string(content)
	if record != nil && HasPlaceholders(script) {
		script, err = Render(script, record)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
	}
	return d.Sql(script)
}

// LoadDataFrame creates a table from a DataFrame and fills it. Column types
// follow the frame's series types. The load fails if the table exists.
func (d *DB) LoadDataFrame(df dataframe.DataFrame, table string) (dataframe.DataFrame, error) {
	if df.Ncol() == 0 {
		return dataframe.DataFrame{}, ErrEmptyFrame
	}
	exists, err := d.HasTable(table)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	if exists {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %s", ErrTableExists, table)
	}

	names := df.Names()
	columns := make([]string, len(names))
	for i, name := range names {
		columns[i] = fmt.Sprintf("%q %s", name, sqlType(df.Select(name).Types()[0]))
	}
	createSQL := fmt.Sprintf("CREATE TABLE %q (%s);", table, strings.Join(columns, ", "))

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	insertSQL := fmt.Sprintf("INSERT INTO %q VALUES (%s);", table, placeholders)

	err = d.gorm.Transaction(func(tx *gorm.DB) error {
		d.echo(createSQL)
		if err := tx.Exec(createSQL).Error; err != nil {
			return err
		}
		for r := 0; r < df.Nrow(); r++ {
			args := make([]interface{}, len(names))
			for c := range names {
				elem := df.Elem(r, c)
				if elem.IsNA() {
					args[c] = nil
				} else {
					args[c] = elem.Val()
				}
			}
			if err := tx.Exec(insertSQL, args...).Error; err != nil {
				return fmt.Errorf("row %d: %w", r, err)
			}
		}
		return nil
	})
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	result := SuccessFrame(createSQL, 1)
	result = result.RBind(SuccessFrame(insertSQL, df.Nrow()))
	return result, nil
}

// CreateTableAs materializes a SELECT as a new table, going through the
// frame so column types survive the round trip.
func (d *DB) CreateTableAs(table, query string) (dataframe.DataFrame, error) {
	df, err := d.Sql(query)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	return d.LoadDataFrame(df, table)
}

func sqlType(t series.Type) string {
	switch t {
	case series.Int:
		return "INTEGER"
	case series.Float:
		return "REAL"
	case series.Bool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}
