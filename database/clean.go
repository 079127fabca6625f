package database

import (
	"strings"
)

// CleanSQL strips comments and blank lines from an SQL script, optionally
// removing leading indents as well.
func CleanSQL(sql string, trimIndents bool) string {
	sql = stripComments(sql)

	var lines []string
	for _, line := range strings.Split(sql, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if trimIndents {
			line = strings.TrimSpace(line)
		} else {
			line = strings.TrimRight(line, " \t")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// stripComments removes -- line comments and /* */ block comments while
// leaving quoted strings and identifiers untouched.
func stripComments(sql string) string {
	var out strings.Builder
	out.Grow(len(sql))

	i := 0
	for i < len(sql) {
		c := sql[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			end := scanQuoted(sql, i)
			out.WriteString(sql[i:end])
			i = end
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			for i < len(sql) && sql[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			i += 2
			for i < len(sql) {
				if sql[i] == '*' && i+1 < len(sql) && sql[i+1] == '/' {
					i += 2
					break
				}
				i++
			}
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// scanQuoted returns the index just past a quoted string or identifier
// starting at i. Doubled quote characters escape themselves.
func scanQuoted(sql string, i int) int {
	quote := sql[i]
	i++
	for i < len(sql) {
		if sql[i] == quote {
			if i+1 < len(sql) && sql[i+1] == quote {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return i
}

// SplitStatements splits an SQL script into individual statements. Semicolons
// inside quoted strings, comments, and BEGIN...END bodies (triggers) do not
// split. A floating "END" statement is merged back into the statement before
// it, which keeps trigger scripts intact even when END lands on its own.
func SplitStatements(script string) []string {
	var stmts []string
	var cur strings.Builder
	depth := 0

	flush := func() {
		stmt := strings.TrimSpace(cur.String())
		cur.Reset()
		if stmt == "" {
			return
		}
		if strings.EqualFold(strings.TrimSuffix(stmt, ";"), "end") && len(stmts) > 0 {
			stmts[len(stmts)-1] = strings.TrimSuffix(stmts[len(stmts)-1], ";") + ";\nEND;"
			return
		}
		if !strings.HasSuffix(stmt, ";") {
			stmt += ";"
		}
		stmts = append(stmts, stmt)
	}

	i := 0
	for i < len(script) {
		c := script[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			end := scanQuoted(script, i)
			cur.WriteString(script[i:end])
			i = end
		case c == '-' && i+1 < len(script) && script[i+1] == '-':
			for i < len(script) && script[i] != '\n' {
				cur.WriteByte(script[i])
				i++
			}
		case c == '/' && i+1 < len(script) && script[i+1] == '*':
			cur.WriteString("/*")
			i += 2
			for i < len(script) {
				if script[i] == '*' && i+1 < len(script) && script[i+1] == '/' {
					cur.WriteString("*/")
					i += 2
					break
				}
				cur.WriteByte(script[i])
				i++
			}
		case isWordByte(c):
			start := i
			for i < len(script) && isWordByte(script[i]) {
				i++
			}
			word := script[start:i]
			switch strings.ToLower(word) {
			case "begin":
				if !beginsTransaction(script[i:]) {
					depth++
				}
			case "case":
				depth++
			case "end":
				if depth > 0 {
					depth--
				}
			}
			cur.WriteString(word)
		case c == ';' && depth == 0:
			cur.WriteByte(';')
			i++
			flush()
		default:
			cur.WriteByte(c)
			i++
		}
	}
	flush()
	return stmts
}

// beginsTransaction reports whether the text following a BEGIN keyword makes
// it a transaction start rather than a statement block.
func beginsTransaction(rest string) bool {
	rest = strings.TrimLeft(rest, " \t\r\n")
	if rest == "" || rest[0] == ';' {
		return true
	}
	for _, kw := range []string{"transaction", "deferred", "immediate", "exclusive"} {
		if len(rest) >= len(kw) && strings.EqualFold(rest[:len(kw)], kw) {
			return true
		}
	}
	return false
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// IsQuery reports whether a statement returns rows.
func IsQuery(stmt string) bool {
	return isQuery(stmt)
}

// isQuery reports whether a statement returns rows. A SELECT whose select
// list is a bare function call with no FROM clause (SpatiaLite admin
// functions like InitSpatialMetaData) is treated as a statement, not a query.
func isQuery(stmt string) bool {
	trimmed := strings.TrimSpace(stripComments(stmt))
	lower := strings.ToLower(trimmed)

	switch firstWord(lower) {
	case "select":
		if !strings.Contains(lower, " from ") && isFunctionSelect(lower) {
			return false
		}
		return true
	case "with", "values", "pragma", "explain":
		return true
	}
	return false
}

// isFunctionSelect matches the "SELECT SomeFunc(...)" shape.
func isFunctionSelect(lower string) bool {
	rest := strings.TrimSpace(strings.TrimPrefix(lower, "select"))
	i := 0
	for i < len(rest) && isWordByte(rest[i]) {
		i++
	}
	if i == 0 {
		return false
	}
	rest = strings.TrimLeft(rest[i:], " \t")
	return strings.HasPrefix(rest, "(")
}

func firstWord(s string) string {
	s = strings.TrimLeft(s, " \t\r\n(")
	i := 0
	for i < len(s) && isWordByte(s[i]) {
		i++
	}
	return s[:i]
}
