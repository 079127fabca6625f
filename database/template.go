package database

import (
	"fmt"
	"io"
	"strings"

	"github.com/valyala/fasttemplate"
)

// Template placeholders look like {{ var }}.
const (
	tagOpen  = "{{"
	tagClose = "}}"
)

// HasPlaceholders reports whether the SQL contains {{ var }} placeholders.
func HasPlaceholders(sql string) bool {
	return strings.Contains(sql, tagOpen)
}

// Render substitutes {{ var }} placeholders with values from record.
// Unknown variables are an error rather than an empty substitution so typos
// do not silently produce broken SQL.
func Render(sql string, record map[string]interface{}) (string, error) {
	t, err := fasttemplate.NewTemplate(sql, tagOpen, tagClose)
	if err != nil {
		return "", fmt.Errorf("invalid SQL template: %w", err)
	}
	return t.ExecuteFuncStringWithErr(func(w io.Writer, tag string) (int, error) {
		value, ok := record[strings.TrimSpace(tag)]
		if !ok {
			return 0, fmt.Errorf("no value for template variable %q", strings.TrimSpace(tag))
		}
		return io.WriteString(w, fmt.Sprint(value))
	})
}

// RenderBatch substitutes a templated statement once per record. With union
// set, the rendered statements are merged into a single UNION ALL query, the
// way a templated SELECT is iterated over a list of table names. Otherwise
// the statements are joined as a script.
func RenderBatch(sql string, records []map[string]interface{}, union bool) (string, error) {
	rendered := make([]string, 0, len(records))
	hadSemicolon := strings.HasSuffix(strings.TrimSpace(sql), ";")

	for _, record := range records {
		stmt, err := Render(sql, record)
		if err != nil {
			return "", err
		}
		rendered = append(rendered, strings.TrimSuffix(strings.TrimSpace(stmt), ";"))
	}

	if union {
		out := strings.Join(rendered, "\nUNION ALL ")
		if hadSemicolon {
			out += ";"
		}
		return out, nil
	}
	return strings.Join(rendered, ";\n") + ";", nil
}
