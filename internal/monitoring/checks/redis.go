package checks

import (
	"context"
	"time"

	"github.com/charlesng35/dairyadmin/internal/monitoring"
)

const defaultRedisTimeout = 2 * time.Second

// RedisPinger is satisfied by cache.RedisStore.
type RedisPinger interface {
	Ping(ctx context.Context) error
}

// Redis probes the shared cache behind module trees and rate limits. With
// Redis disabled the database cache serves, so the probe stays up. A nil
// client while enabled means bootstrap fell back, which is degraded.
func Redis(client RedisPinger, enabled bool, timeout time.Duration) monitoring.Check {
	return monitoring.NewCheck("redis", func(ctx context.Context) monitoring.ProbeResult {
		switch {
		case !enabled:
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: "redis disabled; using database cache"}
		case client == nil:
			return monitoring.ProbeResult{Status: monitoring.StatusDegraded, Details: "redis unreachable; using database cache"}
		}

		start := time.Now()
		pingCtx, cancel := context.WithTimeout(ctx, chooseTimeout(timeout, defaultRedisTimeout))
		defer cancel()
		return monitoring.ResultFromError("redis", client.Ping(pingCtx), time.Since(start))
	})
}
