package database

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Success frames report statements that returned no rows.
const (
	resultColumnSQL    = "SQL"
	resultColumnResult = "Result"
)

// SuccessFrame builds the two-column frame returned for statements that do
// not produce rows: the statement text and the number of affected rows (or
// batch size for executemany).
func SuccessFrame(sqlText string, result int) dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{strings.TrimSpace(sqlText)}, series.String, resultColumnSQL),
		series.New([]int{result}, series.Int, resultColumnResult),
	)
}

// IsSuccessFrame reports whether a frame is a statement echo rather than
// query results.
func IsSuccessFrame(df dataframe.DataFrame) bool {
	names := df.Names()
	return len(names) == 2 && names[0] == resultColumnSQL && names[1] == resultColumnResult
}

// BuildFrame materializes raw column/row data as a gota DataFrame. Column
// types are detected from the first non-NULL value; NULLs become NaN.
func BuildFrame(columns []string, rows [][]interface{}) dataframe.DataFrame {
	if len(columns) == 0 {
		return dataframe.New()
	}

	seriesList := make([]series.Series, len(columns))
	for col := range columns {
		t := detectType(rows, col)
		values := make([]string, len(rows))
		for r := range rows {
			values[r] = formatValue(rows[r][col])
		}
		seriesList[col] = series.New(values, t, columns[col])
	}
	return dataframe.New(seriesList...)
}

func detectType(rows [][]interface{}, col int) series.Type {
	for _, row := range rows {
		switch row[col].(type) {
		case nil:
			continue
		case int, int32, int64:
			return series.Int
		case float32, float64:
			return series.Float
		case bool:
			return series.Bool
		default:
			return series.String
		}
	}
	return series.String
}

// formatValue renders a scanned driver value for gota's string-based series
// constructors. gota parses these back into the detected column type and
// treats "NaN" as missing.
func formatValue(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return "NaN"
	case []byte:
		if utf8.Valid(value) {
			return string(value)
		}
		return fmt.Sprintf("%x", value)
	case time.Time:
		return value.Format("2006-01-02 15:04:05")
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprint(value)
	}
}

// ScanRows drains a sql.Rows into column names and raw row values.
func ScanRows(rows *sql.Rows) ([]string, [][]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	var out [][]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return columns, out, nil
}
