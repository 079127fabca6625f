package connection

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Supported dialects
const (
	DialectSQLite    = "sqlite"
	DialectPostgres  = "postgres"
	DialectSQLServer = "sqlserver"
)

const envPrefix = "KHANDB"

var validate = validator.New()

// Pragma is a PRAGMA name/value pair applied on every new SQLite connection.
type Pragma struct {
	Name  string
	Value string
}

// SQLiteFunction is a Go function registered with SQLite at connect time so
// it can be called from SQL statements.
type SQLiteFunction struct {
	Name string
	Impl interface{}
	Pure bool
}

// Config holds everything needed to open a database connection.
type Config struct {
	Dialect  string `envconfig:"DIALECT" json:"dialect" validate:"required,oneof=sqlite postgres sqlserver"`
	Host     string `envconfig:"HOST" json:"host"`
	Port     int    `envconfig:"PORT" json:"port"`
	Username string `envconfig:"USERNAME" json:"username"`
	Password string `envconfig:"PASSWORD" json:"password"`

	// Database is the database name, or the file path (or ":memory:") for SQLite.
	Database string `envconfig:"DATABASE" json:"database" validate:"required"`

	// SchemaName qualifies table names for SQL Server. Defaults to "dbo".
	SchemaName string `envconfig:"SCHEMA_NAME" json:"schema_name"`

	// SSLMode is passed through to the PostgreSQL DSN. Defaults to "disable".
	SSLMode string `envconfig:"SSL_MODE" json:"ssl_mode"`

	// Echo enables statement logging on the DB handle.
	Echo bool `envconfig:"ECHO" json:"echo"`

	// SQLite-only connection options, installed by the connect hook.
	Extensions []string         `ignored:"true" json:"extensions,omitempty"`
	Pragmas    []Pragma         `ignored:"true" json:"pragmas,omitempty"`
	Functions  []SQLiteFunction `ignored:"true" json:"-"`
}

// FromEnv builds a Config from KHANDB_* environment variables, loading a
// .env file first when one exists.
func FromEnv() (Config, error) {
	godotenv.Load()

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment config: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults fills in the dialect-dependent defaults.
func (c *Config) SetDefaults() {
	if c.Port == 0 {
		switch c.Dialect {
		case DialectPostgres:
			c.Port = 5432
		case DialectSQLServer:
			c.Port = 1433
		}
	}
	if c.SchemaName == "" {
		c.SchemaName = "dbo"
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
}

// Validate checks the config against its struct rules.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid connection config: %w", err)
	}
	return nil
}

func (c Config) String() string {
	if c.Dialect == DialectSQLite {
		return fmt.Sprintf("DB[%s] > %s", c.Dialect, c.Database)
	}
	return fmt.Sprintf("DB[%s][%s]:%d > %s@%s", c.Dialect, c.Host, c.Port, c.Username, c.Database)
}
