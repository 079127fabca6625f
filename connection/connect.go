package connection

import (
	"database/sql"
	"fmt"
	"sync/atomic"

	sqlite3 "github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Each SQLite config gets its own driver registration because extensions,
// pragmas, and functions are baked into the driver's connect hook.
var sqliteDriverSeq int64

// Connect opens a gorm handle for the configured dialect.
func Connect(c Config) (*gorm.DB, error) {
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	dsn, err := c.DSN()
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch c.Dialect {
	case DialectSQLite:
		dialector = &sqlite.Dialector{
			DriverName: registerSQLiteDriver(c),
			DSN:        dsn,
		}
	case DialectPostgres:
		dialector = postgres.Open(dsn)
	case DialectSQLServer:
		dialector = sqlserver.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, c.Dialect)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", c.Dialect, err)
	}
	return gdb, nil
}

// registerSQLiteDriver registers a go-sqlite3 driver whose connect hook loads
// the configured extensions, applies pragmas, and registers Go functions.
// Returns the plain driver name when no customization is needed.
func registerSQLiteDriver(c Config) string {
	if len(c.Extensions) == 0 && len(c.Pragmas) == 0 && len(c.Functions) == 0 {
		return "sqlite3"
	}

	name := fmt.Sprintf("sqlite3_khandb_%d", atomic.AddInt64(&sqliteDriverSeq, 1))
	sql.Register(name, &sqlite3.SQLiteDriver{
		Extensions: c.Extensions,
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			for _, pragma := range c.Pragmas {
				stmt := fmt.Sprintf("PRAGMA %s=%s;", pragma.Name, pragma.Value)
				if _, err := conn.Exec(stmt, nil); err != nil {
					return fmt.Errorf("failed to apply %s: %w", stmt, err)
				}
			}
			for _, fn := range c.Functions {
				if err := conn.RegisterFunc(fn.Name, fn.Impl, fn.Pure); err != nil {
					return fmt.Errorf("failed to register function %q: %w", fn.Name, err)
				}
			}
			return nil
		},
	})
	return name
}
