package app

import (
	"strings"

	"github.com/charlesng35/dairyadmin/internal/cache"
)

// RedisEnabled reports whether Redis is switched on and has an address to dial.
func (c CacheConfig) RedisEnabled() bool {
	return c.Redis.Enabled && strings.TrimSpace(c.Redis.Address) != ""
}

// RedisClientConfig converts the Redis block into the cache package representation.
// Blank credentials are treated as absent.
func (c CacheConfig) RedisClientConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Address:  strings.TrimSpace(c.Redis.Address),
		Username: strings.TrimSpace(c.Redis.Username),
		Password: strings.TrimSpace(c.Redis.Password),
		DB:       c.Redis.DB,
		TLS:      c.Redis.TLS,
		Timeout:  c.Redis.Timeout,
	}
}
