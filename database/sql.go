package database

import (
	"errors"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"gorm.io/gorm"
)

var (
	ErrEmptyStatement = errors.New("no SQL statements to execute")
	ErrTooManyArgs    = errors.New("Sql accepts at most one data argument")
	ErrBadDataType    = errors.New("unsupported data argument type")
)

// Sql executes one or more SQL statements and always returns a DataFrame.
//
// The optional data argument may be:
//
//	[]interface{}            positional args for a single execution
//	map[string]interface{}   template variables, or named args (@name style)
//	[][]interface{}          executemany with positional args
//	[]map[string]interface{} executemany with template variables or named args
//
// Queries return their result rows. Statements return a success frame with
// columns SQL and Result. A templated query run over a list of records is
// rendered per record and merged into a single UNION ALL query.
func (d *DB) Sql(query string, data ...interface{}) (dataframe.DataFrame, error) {
	var arg interface{}
	switch len(data) {
	case 0:
	case 1:
		arg = data[0]
	default:
		return dataframe.DataFrame{}, ErrTooManyArgs
	}

	stmts := SplitStatements(query)
	if len(stmts) == 0 {
		return dataframe.DataFrame{}, ErrEmptyStatement
	}

	// Templated query over a batch: render per record, UNION ALL, run once.
	if batch, ok := arg.([]map[string]interface{}); ok {
		if len(stmts) == 1 && HasPlaceholders(query) && isQuery(stmts[0]) {
			rendered, err := RenderBatch(query, batch, true)
			if err != nil {
				return dataframe.DataFrame{}, err
			}
			return d.QueryFrame(rendered)
		}
	}

	// Every statement in a script runs; the first query's rows win over
	// statement echoes and any later query results.
	var frames []dataframe.DataFrame
	var queryFrame *dataframe.DataFrame
	for _, stmt := range stmts {
		df, returnedRows, err := d.execStatement(stmt, arg)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		if returnedRows {
			if queryFrame == nil {
				queryFrame = &df
			}
			continue
		}
		frames = append(frames, df)
	}
	if queryFrame != nil {
		return *queryFrame, nil
	}

	out := frames[0]
	for _, df := range frames[1:] {
		out = out.RBind(df)
	}
	if out.Err != nil {
		return dataframe.DataFrame{}, out.Err
	}
	return out, nil
}

// execStatement runs a single statement with the given data argument and
// reports whether it was a row-returning query.
func (d *DB) execStatement(stmt string, arg interface{}) (dataframe.DataFrame, bool, error) {
	switch data := arg.(type) {
	case nil:
		return d.execSingle(stmt, nil)

	case map[string]interface{}:
		if HasPlaceholders(stmt) {
			rendered, err := Render(stmt, data)
			if err != nil {
				return dataframe.DataFrame{}, false, err
			}
			return d.execSingle(rendered, nil)
		}
		// Named args, gorm @name style.
		return d.execSingle(stmt, []interface{}{data})

	case []interface{}:
		return d.execSingle(stmt, data)

	case [][]interface{}:
		if err := d.execBatch(stmt, len(data), func(i int) (string, []interface{}, error) {
			return stmt, data[i], nil
		}); err != nil {
			return dataframe.DataFrame{}, false, err
		}
		return SuccessFrame(stmt, len(data)), false, nil

	case []map[string]interface{}:
		templated := HasPlaceholders(stmt)
		if err := d.execBatch(stmt, len(data), func(i int) (string, []interface{}, error) {
			if templated {
				rendered, err := Render(stmt, data[i])
				return rendered, nil, err
			}
			return stmt, []interface{}{data[i]}, nil
		}); err != nil {
			return dataframe.DataFrame{}, false, err
		}
		return SuccessFrame(stmt, len(data)), false, nil
	}

	return dataframe.DataFrame{}, false, fmt.Errorf("%w: %T", ErrBadDataType, arg)
}

func (d *DB) execSingle(stmt string, args []interface{}) (dataframe.DataFrame, bool, error) {
	if isQuery(stmt) {
		df, err := d.QueryFrame(stmt, args...)
		return df, true, err
	}
	affected, err := d.Exec(stmt, args...)
	if err != nil {
		return dataframe.DataFrame{}, false, err
	}
	return SuccessFrame(stmt, int(affected)), false, nil
}

// execBatch iterates a statement over a batch of records in one transaction.
func (d *DB) execBatch(stmt string, n int, record func(i int) (string, []interface{}, error)) error {
	return d.gorm.Transaction(func(tx *gorm.DB) error {
		for i := 0; i < n; i++ {
			rendered, args, err := record(i)
			if err != nil {
				return err
			}
			d.echo(rendered)
			if err := tx.Exec(rendered, args...).Error; err != nil {
				return fmt.Errorf("batch record %d: %w", i, err)
			}
		}
		return nil
	})
}
