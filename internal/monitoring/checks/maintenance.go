package checks

import (
	"context"
	"strings"
	"time"

	"github.com/charlesng35/dairyadmin/internal/app/maintenance"
	"github.com/charlesng35/dairyadmin/internal/monitoring"
)

const defaultMaintenanceMaxAge = 26 * time.Hour

// JobReporter exposes the run history of background housekeeping.
type JobReporter interface {
	Jobs() []maintenance.JobStatus
}

// Maintenance verifies that housekeeping jobs keep succeeding. A job that has
// failed repeatedly reports down; one that has not run within maxAge reports degraded.
func Maintenance(reporter JobReporter, maxAge time.Duration, now func() time.Time) monitoring.Check {
	if maxAge <= 0 {
		maxAge = defaultMaintenanceMaxAge
	}
	if now == nil {
		now = time.Now
	}

	return monitoring.NewCheck("maintenance", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if reporter == nil {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusUp,
				Details:  "maintenance disabled",
				Duration: time.Since(start),
			}
		}

		jobs := reporter.Jobs()
		if len(jobs) == 0 {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusUp,
				Details:  "no maintenance runs yet",
				Duration: time.Since(start),
			}
		}

		status := monitoring.StatusUp
		var problems []string
		current := now()

		for _, job := range jobs {
			if job.ConsecutiveFailures > 1 {
				status = worstStatus(status, monitoring.StatusDown)
				problems = append(problems, job.Job+": "+job.LastError)
				continue
			}
			if job.ConsecutiveFailures == 1 {
				status = worstStatus(status, monitoring.StatusDegraded)
				problems = append(problems, job.Job+": "+job.LastError)
			}
			if !job.LastRunAt.IsZero() && current.Sub(job.LastRunAt) > maxAge {
				status = worstStatus(status, monitoring.StatusDegraded)
				problems = append(problems, job.Job+": stale run "+job.LastRunAt.UTC().Format(time.RFC3339))
			}
		}

		return monitoring.ProbeResult{
			Status:   status,
			Details:  strings.Join(problems, "; "),
			Duration: time.Since(start),
		}
	})
}

func worstStatus(current, candidate monitoring.ProbeStatus) monitoring.ProbeStatus {
	if current == monitoring.StatusDown || candidate == monitoring.StatusDown {
		return monitoring.StatusDown
	}
	if current == monitoring.StatusDegraded || candidate == monitoring.StatusDegraded {
		return monitoring.StatusDegraded
	}
	return monitoring.StatusUp
}
