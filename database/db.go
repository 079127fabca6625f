package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/khankhulgun/khandb/connection"
)

var (
	ErrSQLiteOnly    = errors.New("operation is only supported for SQLite databases")
	ErrTableNotFound = errors.New("table does not exist")
)

// DB wraps a gorm handle for interactive querying. Results come back as gota
// dataframes regardless of the statement kind.
type DB struct {
	gorm *gorm.DB
	cfg  connection.Config
	log  zerolog.Logger
}

// New opens a database from a connection config.
func New(cfg connection.Config) (*DB, error) {
	cfg.SetDefaults()
	gdb, err := connection.Connect(cfg)
	if err != nil {
		return nil, err
	}

	// SQLite state (attached databases, in-memory contents, pragmas) lives
	// on the connection, so the pool must not rotate connections under us.
	if cfg.Dialect == connection.DialectSQLite {
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	logger := zerolog.New(os.Stderr).With().
		Timestamp().
		Str("dialect", cfg.Dialect).
		Logger()
	if !cfg.Echo {
		logger = logger.Level(zerolog.WarnLevel)
	}

	return &DB{gorm: gdb, cfg: cfg, log: logger}, nil
}

// Open is a shortcut for the common "dialect plus database name" case, e.g.
// Open("sqlite", ":memory:").
func Open(dialect, database string) (*DB, error) {
	return New(connection.Config{Dialect: dialect, Database: database})
}

// Gorm exposes the underlying gorm handle for callers that need it directly.
func (d *DB) Gorm() *gorm.DB {
	return d.gorm
}

// Config returns the connection config the handle was opened with.
func (d *DB) Config() connection.Config {
	return d.cfg
}

// Dialect returns the database dialect.
func (d *DB) Dialect() string {
	return d.cfg.Dialect
}

// DatabaseName returns the database name without any path prefix.
func (d *DB) DatabaseName() string {
	return filepath.Base(d.cfg.Database)
}

func (d *DB) String() string {
	return d.cfg.String()
}

// Close releases the underlying connection pool.
func (d *DB) Close() error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *DB) echo(sql string) {
	d.log.Info().Str("sql", strings.TrimSpace(sql)).Msg("executing")
}

// QueryRaw runs a query and returns raw column names and row values. The
// spatial layer uses this to reach geometry BLOBs before framing.
func (d *DB) QueryRaw(query string, args ...interface{}) ([]string, [][]interface{}, error) {
	d.echo(query)
	rows, err := d.gorm.Raw(query, args...).Rows()
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	return ScanRows(rows)
}

// QueryFrame runs a query and materializes the results as a DataFrame.
func (d *DB) QueryFrame(query string, args ...interface{}) (dataframe.DataFrame, error) {
	columns, rows, err := d.QueryRaw(query, args...)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	return BuildFrame(columns, rows), nil
}

// Exec runs a statement that returns no rows and reports affected rows.
func (d *DB) Exec(stmt string, args ...interface{}) (int64, error) {
	d.echo(stmt)
	result := d.gorm.Exec(stmt, args...)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// TableNames returns the sorted list of user tables. SQL Server names are
// qualified with the configured schema, matching how they must be addressed.
func (d *DB) TableNames() ([]string, error) {
	var query string
	var args []interface{}

	switch d.cfg.Dialect {
	case connection.DialectSQLite:
		query = `SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'`
	case connection.DialectPostgres:
		query = `SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' AND table_type = 'BASE TABLE'`
	case connection.DialectSQLServer:
		query = `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_TYPE = 'BASE TABLE' AND TABLE_SCHEMA = ?`
		args = append(args, d.cfg.SchemaName)
	default:
		return nil, fmt.Errorf("%w: %q", connection.ErrUnknownDialect, d.cfg.Dialect)
	}

	rows, err := d.gorm.Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if d.cfg.Dialect == connection.DialectSQLServer {
			name = d.cfg.SchemaName + "." + name
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// HasTable reports whether a table exists.
func (d *DB) HasTable(table string) (bool, error) {
	names, err := d.TableNames()
	if err != nil {
		return false, err
	}
	for _, name := range names {
		if name == table {
			return true, nil
		}
	}
	return false, nil
}
