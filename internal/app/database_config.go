package app

import (
	"strings"

	"github.com/charlesng35/dairyadmin/internal/database"
)

// DatabaseClientConfig converts the application database configuration into the database package representation.
func (c DatabaseConfig) DatabaseClientConfig() database.Config {
	cfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(c.Driver)),
		Path:   strings.TrimSpace(c.Path),
		DSN:    strings.TrimSpace(c.DSN),
	}

	var auth DBAuthConfig
	switch cfg.Driver {
	case "postgres", "postgresql":
		auth = c.Postgres
	case "mysql":
		auth = c.MySQL
	default:
		return cfg
	}

	cfg.Host = auth.Host
	cfg.Port = auth.Port
	cfg.User = auth.Username
	cfg.Password = auth.Password
	cfg.Name = auth.Database
	return cfg
}
