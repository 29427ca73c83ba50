package services

import (
	"context"
	"strings"

	"github.com/charlesng35/dairyadmin/internal/invalidation"
	"github.com/charlesng35/dairyadmin/pkg/metrics"
)

// recordAudit logs the supplied entry while tolerating audit failures.
func recordAudit(audit *AuditService, ctx context.Context, entry AuditEntry) {
	if audit == nil {
		return
	}
	_ = audit.Log(ctx, entry)
}

// recordMutation audits a successful mutation, counts it and notifies
// listeners about the list queries it invalidates.
func recordMutation(audit *AuditService, notifier Notifier, ctx context.Context, entry AuditEntry) {
	if entry.Result == "" {
		entry.Result = "success"
	}
	recordAudit(audit, ctx, entry)

	resource, action, ok := strings.Cut(entry.Action, ".")
	if ok {
		metrics.Mutations.WithLabelValues(resource, action).Inc()
	}

	if notifier == nil {
		return
	}
	if keys := invalidation.For(entry.Action); len(keys) > 0 {
		notifier.Invalidate(ctx, entry.Action, keys)
	}
}
