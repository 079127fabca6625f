package connection

import (
	"errors"
	"fmt"
	"net/url"
)

var ErrUnknownDialect = errors.New("unknown dialect")

// DSN builds the driver connection string for the configured dialect.
func (c Config) DSN() (string, error) {
	cfg := c
	cfg.SetDefaults()

	switch cfg.Dialect {
	case DialectSQLite:
		return cfg.Database, nil
	case DialectPostgres:
		dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode)
		if cfg.Username != "" {
			dsn = fmt.Sprintf("%s user=%s", dsn, cfg.Username)
		}
		if cfg.Password != "" {
			dsn = fmt.Sprintf("%s password=%s", dsn, cfg.Password)
		}
		return dsn, nil
	case DialectSQLServer:
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(cfg.Username, cfg.Password),
			Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			RawQuery: url.Values{"database": []string{cfg.Database}}.Encode(),
		}
		return u.String(), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDialect, c.Dialect)
}
