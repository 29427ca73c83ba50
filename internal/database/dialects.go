package database

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// serverDialect describes a networked database the cooperative can run on.
type serverDialect struct {
	name    string
	host    string
	port    int
	options map[string]string
	open    func(dsn string) gorm.Dialector
	compose func(cfg Config, host string, port int, options []string) string
}

var (
	postgresDialect = serverDialect{
		name:    "postgres",
		host:    "localhost",
		port:    5432,
		options: map[string]string{"sslmode": "disable"},
		open:    postgres.Open,
		compose: func(cfg Config, host string, port int, options []string) string {
			parts := []string{"host=" + host, fmt.Sprintf("port=%d", port), "user=" + cfg.User, "dbname=" + cfg.Name}
			if cfg.Password != "" {
				parts = append(parts, "password="+cfg.Password)
			}
			return strings.Join(append(parts, options...), " ")
		},
	}

	mysqlDialect = serverDialect{
		name:    "mysql",
		host:    "127.0.0.1",
		port:    3306,
		options: map[string]string{"charset": "utf8mb4", "parseTime": "True", "loc": "Local"},
		open:    mysql.Open,
		compose: func(cfg Config, host string, port int, options []string) string {
			account := cfg.User
			if cfg.Password != "" {
				account += ":" + cfg.Password
			}
			return fmt.Sprintf("%s@tcp(%s:%d)/%s?%s", account, host, port, cfg.Name, strings.Join(options, "&"))
		},
	}
)

func (d serverDialect) dsn(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if cfg.User == "" || cfg.Name == "" {
		return "", fmt.Errorf("%s configuration requires user and database name", d.name)
	}

	host, port := cfg.Host, cfg.Port
	if host == "" {
		host = d.host
	}
	if port == 0 {
		port = d.port
	}

	merged := make(map[string]string, len(d.options)+len(cfg.Options))
	for key, value := range d.options {
		merged[key] = value
	}
	for key, value := range cfg.Options {
		merged[key] = value
	}
	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	options := make([]string, 0, len(keys))
	for _, key := range keys {
		options = append(options, key+"="+merged[key])
	}

	return d.compose(cfg, host, port, options), nil
}

func (d serverDialect) openDB(cfg Config) (*gorm.DB, error) {
	dsn, err := d.dsn(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(d.open(dsn), &gorm.Config{Logger: silentLogger()})
}

func buildPostgresDSN(cfg Config) (string, error) { return postgresDialect.dsn(cfg) }

func buildMySQLDSN(cfg Config) (string, error) { return mysqlDialect.dsn(cfg) }
