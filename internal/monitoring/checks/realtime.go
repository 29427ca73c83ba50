package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/charlesng35/dairyadmin/internal/monitoring"
	"github.com/charlesng35/dairyadmin/internal/realtime"
)

// SubscriberCounter exposes how many clients listen on a realtime stream.
type SubscriberCounter interface {
	Subscribers(stream string) int
}

// Realtime reports the invalidation hub and its subscriber count. A missing hub
// only degrades readiness since clients fall back to polling.
func Realtime(hub SubscriberCounter) monitoring.Check {
	return monitoring.NewCheck("realtime", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if hub == nil {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusDegraded,
				Details:  "realtime hub unavailable",
				Duration: time.Since(start),
			}
		}

		return monitoring.ProbeResult{
			Status:   monitoring.StatusUp,
			Details:  fmt.Sprintf("%d invalidation subscribers", hub.Subscribers(realtime.StreamInvalidations)),
			Duration: time.Since(start),
		}
	})
}
