package schema

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/khankhulgun/khandb/connection"
	"github.com/khankhulgun/khandb/database"
)

var tableCache *ristretto.Cache

func init() {
	// Initialize the cache with Ristretto
	var err error
	tableCache, err = ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 24,
		BufferItems: 64,
	})
	if err != nil {
		log.Fatalf("Failed to initialize schema cache: %v", err)
	}
}

// Column describes a single table column.
type Column struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	NotNull    bool   `json:"not_null"`
	PrimaryKey bool   `json:"primary_key"`
	ForeignKey string `json:"foreign_key,omitempty"`
}

// TableSchema is an at-a-glance description of a table.
type TableSchema struct {
	Table   string   `json:"table"`
	Columns []Column `json:"columns"`
}

// Inspect describes a table's columns. Results are cached per database and
// table with a TTL; Invalidate drops a stale entry after DDL.
func Inspect(d *database.DB, table string) (TableSchema, error) {
	key := cacheKey(d, table)
	if cached, found := tableCache.Get(key); found {
		if ts, ok := cached.(TableSchema); ok {
			return ts, nil
		}
	}

	exists, err := d.HasTable(table)
	if err != nil {
		return TableSchema{}, err
	}
	if !exists {
		return TableSchema{}, fmt.Errorf("%w: %s", database.ErrTableNotFound, table)
	}

	var columns []Column
	switch d.Dialect() {
	case connection.DialectSQLite:
		columns, err = sqliteColumns(d, table)
	case connection.DialectPostgres:
		columns, err = postgresColumns(d, table)
	case connection.DialectSQLServer:
		columns, err = sqlserverColumns(d, table)
	default:
		return TableSchema{}, fmt.Errorf("%w: %q", connection.ErrUnknownDialect, d.Dialect())
	}
	if err != nil {
		return TableSchema{}, err
	}

	ts := TableSchema{Table: table, Columns: columns}
	tableCache.SetWithTTL(key, ts, 1, 10*time.Minute)
	tableCache.Wait()
	return ts, nil
}

// Invalidate drops a table's cached schema.
func Invalidate(d *database.DB, table string) {
	tableCache.Del(cacheKey(d, table))
}

func cacheKey(d *database.DB, table string) string {
	return fmt.Sprintf("%s|%s|%s", d.Dialect(), d.Config().Database, table)
}

// quoteIdent strips quote characters out of an identifier before it is
// interpolated into introspection SQL that cannot take bind parameters.
func quoteIdent(name string) string {
	name = strings.ReplaceAll(name, `"`, "")
	name = strings.ReplaceAll(name, "'", "")
	return name
}

func sqliteColumns(d *database.DB, table string) ([]Column, error) {
	fkeys := map[string]string{}
	_, fkRows, err := d.QueryRaw(fmt.Sprintf("PRAGMA foreign_key_list(%q);", quoteIdent(table)))
	if err == nil {
		// columns: id, seq, table, from, to, on_update, on_delete, match
		for _, row := range fkRows {
			from := asString(row[3])
			fkeys[from] = fmt.Sprintf("%s.%s", asString(row[2]), asString(row[4]))
		}
	}

	_, rows, err := d.QueryRaw(fmt.Sprintf("PRAGMA table_info(%q);", quoteIdent(table)))
	if err != nil {
		return nil, err
	}

	var columns []Column
	for _, row := range rows {
		// columns: cid, name, type, notnull, dflt_value, pk
		name := asString(row[1])
		columns = append(columns, Column{
			Name:       name,
			Type:       asString(row[2]),
			NotNull:    asBool(row[3]),
			PrimaryKey: asBool(row[5]),
			ForeignKey: fkeys[name],
		})
	}
	return columns, nil
}

func postgresColumns(d *database.DB, table string) ([]Column, error) {
	fkeys := map[string]string{}
	fkQuery := `
		SELECT kcu.column_name, ccu.table_name, ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON kcu.constraint_name = tc.constraint_name
		JOIN information_schema.constraint_column_usage ccu
		  ON ccu.constraint_name = tc.constraint_name
		WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_name = ?`
	if _, fkRows, err := d.QueryRaw(fkQuery, table); err == nil {
		for _, row := range fkRows {
			fkeys[asString(row[0])] = fmt.Sprintf("%s.%s", asString(row[1]), asString(row[2]))
		}
	}

	query := `
		SELECT c.column_name,
		       c.data_type,
		       c.is_nullable = 'NO',
		       COALESCE(tc.constraint_type, '') = 'PRIMARY KEY'
		FROM information_schema.columns c
		LEFT JOIN information_schema.key_column_usage kcu
		       ON kcu.table_name = c.table_name AND kcu.column_name = c.column_name
		LEFT JOIN information_schema.table_constraints tc
		       ON tc.constraint_name = kcu.constraint_name AND tc.constraint_type = 'PRIMARY KEY'
		WHERE c.table_schema = 'public' AND c.table_name = ?
		ORDER BY c.ordinal_position`

	_, rows, err := d.QueryRaw(query, table)
	if err != nil {
		return nil, err
	}

	var columns []Column
	for _, row := range rows {
		name := asString(row[0])
		columns = append(columns, Column{
			Name:       name,
			Type:       asString(row[1]),
			NotNull:    asBool(row[2]),
			PrimaryKey: asBool(row[3]),
			ForeignKey: fkeys[name],
		})
	}
	return columns, nil
}

func sqlserverColumns(d *database.DB, table string) ([]Column, error) {
	schemaName := d.Config().SchemaName
	if i := strings.Index(table, "."); i >= 0 {
		schemaName, table = table[:i], table[i+1:]
	}
	query := `
		SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`

	_, rows, err := d.QueryRaw(query, schemaName, table)
	if err != nil {
		return nil, err
	}

	var columns []Column
	for _, row := range rows {
		columns = append(columns, Column{
			Name:    asString(row[0]),
			Type:    asString(row[1]),
			NotNull: strings.EqualFold(asString(row[2]), "NO"),
		})
	}
	return columns, nil
}

// Frame renders the schema as a DataFrame.
func (ts TableSchema) Frame() dataframe.DataFrame {
	n := len(ts.Columns)
	names := make([]string, n)
	types := make([]string, n)
	notNull := make([]bool, n)
	pks := make([]bool, n)
	fks := make([]string, n)
	for i, col := range ts.Columns {
		names[i] = col.Name
		types[i] = col.Type
		notNull[i] = col.NotNull
		pks[i] = col.PrimaryKey
		fks[i] = col.ForeignKey
	}
	return dataframe.New(
		series.New(names, series.String, "Column"),
		series.New(types, series.String, "Type"),
		series.New(notNull, series.Bool, "Not Null"),
		series.New(pks, series.Bool, "Primary Key"),
		series.New(fks, series.String, "Foreign Key"),
	)
}

func (ts TableSchema) String() string {
	return fmt.Sprintf("<TableSchema for %s: %d Columns>\n%s",
		ts.Table, len(ts.Columns), ts.Frame().String())
}

// ColumnNames returns the table's column names in order.
func (ts TableSchema) ColumnNames() []string {
	names := make([]string, len(ts.Columns))
	for i, col := range ts.Columns {
		names[i] = col.Name
	}
	return names
}

// Count returns a table's row count.
func Count(d *database.DB, table string) (int64, error) {
	rows, err := d.Gorm().Raw(fmt.Sprintf("SELECT COUNT(*) FROM %q", quoteIdent(table))).Rows()
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var count int64
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, err
		}
	}
	return count, rows.Err()
}

// ForeignKeys returns a frame of foreign key relationships across all
// tables: Table, Column, Foreign Table, Foreign Key.
func ForeignKeys(d *database.DB) (dataframe.DataFrame, error) {
	tables, err := d.TableNames()
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	var tbl, col, ftbl, fkey []string
	for _, table := range tables {
		ts, err := Inspect(d, table)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		for _, column := range ts.Columns {
			if column.ForeignKey == "" {
				continue
			}
			target := strings.SplitN(column.ForeignKey, ".", 2)
			if len(target) != 2 {
				continue
			}
			tbl = append(tbl, table)
			col = append(col, column.Name)
			ftbl = append(ftbl, target[0])
			fkey = append(fkey, target[1])
		}
	}

	return dataframe.New(
		series.New(tbl, series.String, "Table"),
		series.New(col, series.String, "Column"),
		series.New(ftbl, series.String, "Foreign Table"),
		series.New(fkey, series.String, "Foreign Key"),
	), nil
}

func asString(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(value)
	case string:
		return value
	default:
		return fmt.Sprint(value)
	}
}

func asBool(v interface{}) bool {
	switch value := v.(type) {
	case bool:
		return value
	case int64:
		return value != 0
	case []byte:
		return string(value) == "1" || strings.EqualFold(string(value), "true")
	case string:
		return value == "1" || strings.EqualFold(value, "true")
	default:
		return false
	}
}
