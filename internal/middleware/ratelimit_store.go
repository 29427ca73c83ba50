package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/charlesng35/dairyadmin/internal/cache"
)

// RateStore counts requests per key inside a fixed window.
type RateStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int, ttl time.Duration, err error)
}

type localWindow struct {
	hits int
	ends time.Time
}

// localRateStore counts in process memory. Stale windows are swept lazily
// on increments, at most once per sweepEvery.
type localRateStore struct {
	mu         sync.Mutex
	windows    map[string]*localWindow
	now        func() time.Time
	sweepEvery time.Duration
	nextSweep  time.Time
}

// NewMemoryRateStore builds a process-local RateStore for single-instance deployments and tests.
func NewMemoryRateStore() RateStore {
	return &localRateStore{
		windows:    make(map[string]*localWindow),
		now:        time.Now,
		sweepEvery: time.Minute,
	}
}

func (s *localRateStore) Increment(_ context.Context, key string, window time.Duration) (int, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.After(s.nextSweep) {
		for k, w := range s.windows {
			if now.After(w.ends) {
				delete(s.windows, k)
			}
		}
		s.nextSweep = now.Add(s.sweepEvery)
	}

	w, ok := s.windows[key]
	if !ok || now.After(w.ends) {
		w = &localWindow{ends: now.Add(window)}
		s.windows[key] = w
	}
	w.hits++
	return w.hits, w.ends.Sub(now), nil
}

// cacheRateStore keeps counters in the shared cache so every server
// instance enforces the same window.
type cacheRateStore struct {
	store cache.Store
}

// NewCacheRateStore adapts a Redis or database cache.Store. It returns nil
// for a nil store, which RateLimit replaces with the in-memory store.
func NewCacheRateStore(store cache.Store) RateStore {
	if store == nil {
		return nil
	}
	return cacheRateStore{store: store}
}

func (s cacheRateStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}
	count, ttl, err := s.store.IncrementWithTTL(ctx, key, window)
	return int(count), ttl, err
}
