package services

import (
	"context"

	"github.com/charlesng35/dairyadmin/internal/invalidation"
)

// Notifier receives the query keys made stale by a successful mutation.
type Notifier interface {
	Invalidate(ctx context.Context, action string, keys []invalidation.Key)
}

// Option customises optional service collaborators.
type Option func(*serviceOptions)

type serviceOptions struct {
	notifier Notifier
}

// WithNotifier publishes invalidations after every successful mutation.
func WithNotifier(n Notifier) Option {
	return func(o *serviceOptions) {
		o.notifier = n
	}
}

func applyOptions(opts []Option) serviceOptions {
	var cfg serviceOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
