package monitoring

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ProbeStatus encodes the outcome of a health probe.
type ProbeStatus string

const (
	StatusUp       ProbeStatus = "up"
	StatusDegraded ProbeStatus = "degraded"
	StatusDown     ProbeStatus = "down"
)

// severity orders statuses so a report takes its worst probe.
func (s ProbeStatus) severity() int {
	switch s {
	case StatusUp:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// ProbeResult is one component's outcome.
type ProbeResult struct {
	Component string        `json:"component"`
	Status    ProbeStatus   `json:"status"`
	Details   string        `json:"details,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// HealthReport is the body of the /health endpoints.
type HealthReport struct {
	Success   bool          `json:"success"`
	Status    ProbeStatus   `json:"status"`
	Checks    []ProbeResult `json:"checks"`
	CheckedAt time.Time     `json:"checked_at"`
}

// Check is a named probe.
type Check struct {
	Name string
	Run  func(ctx context.Context) ProbeResult
}

// NewCheck wraps fn as a Check. A nil fn always reports down.
func NewCheck(name string, fn func(ctx context.Context) ProbeResult) Check {
	if fn == nil {
		fn = func(context.Context) ProbeResult {
			return ProbeResult{Status: StatusDown, Details: "probe not implemented"}
		}
	}
	return Check{Name: name, Run: fn}
}

// Static returns a check that always reports up, used for liveness.
func Static(name string) Check {
	return NewCheck(name, func(context.Context) ProbeResult {
		return ProbeResult{Status: StatusUp}
	})
}

// HealthManager holds the probes registered during bootstrap. Registration
// is not synchronised; evaluation is safe once the server is serving.
type HealthManager struct {
	liveness  []Check
	readiness []Check
	now       func() time.Time
}

func NewHealthManager() *HealthManager {
	return &HealthManager{now: time.Now}
}

func (m *HealthManager) RegisterLiveness(check Check) {
	if check.Name != "" {
		m.liveness = append(m.liveness, check)
	}
}

func (m *HealthManager) RegisterReadiness(check Check) {
	if check.Name != "" {
		m.readiness = append(m.readiness, check)
	}
}

func (m *HealthManager) EvaluateLiveness(ctx context.Context) HealthReport {
	return m.evaluate(ctx, m.liveness)
}

func (m *HealthManager) EvaluateReadiness(ctx context.Context) HealthReport {
	return m.evaluate(ctx, m.readiness)
}

func (m *HealthManager) evaluate(ctx context.Context, checks []Check) HealthReport {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]ProbeResult, 0, len(checks))
	for _, check := range checks {
		results = append(results, runCheck(ctx, check))
	}
	report := summarize(results)
	report.CheckedAt = m.now().UTC()
	return report
}

func runCheck(ctx context.Context, check Check) (result ProbeResult) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			result = ProbeResult{Status: StatusDown, Details: fmt.Sprint(rec)}
		}
		result.Component = check.Name
		if result.Status == "" {
			result.Status = StatusDown
		}
		if result.Duration == 0 {
			result.Duration = time.Since(start)
		}
	}()
	return check.Run(ctx)
}

func summarize(results []ProbeResult) HealthReport {
	status := StatusUp
	for _, r := range results {
		if r.Status.severity() > status.severity() {
			status = r.Status
		}
	}
	return HealthReport{Success: status == StatusUp, Status: status, Checks: results}
}

// MergeReports combines liveness and readiness into the /health payload.
func MergeReports(live, ready HealthReport) HealthReport {
	checks := append(append([]ProbeResult(nil), live.Checks...), ready.Checks...)
	merged := summarize(checks)
	merged.CheckedAt = ready.CheckedAt
	if live.CheckedAt.After(merged.CheckedAt) {
		merged.CheckedAt = live.CheckedAt
	}
	return merged
}

// ResultFromError maps a probe error to a result. Timeouts and cancellations
// count as degraded rather than down.
func ResultFromError(component string, err error, duration time.Duration) ProbeResult {
	result := ProbeResult{Component: component, Status: StatusUp, Duration: max(duration, 0)}
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		result.Status, result.Details = StatusDegraded, err.Error()
	default:
		result.Status, result.Details = StatusDown, err.Error()
	}
	return result
}
