package console

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/charlesng35/dairyadmin/internal/invalidation"
	"github.com/charlesng35/dairyadmin/pkg/client"
	"github.com/charlesng35/dairyadmin/pkg/logger"
)

// Fetcher loads one page of a feature's list.
type Fetcher func(ctx context.Context, q client.ListQuery) (client.Page[json.RawMessage], error)

// ResourceFetcher fetches any list endpoint by resource path.
type ResourceFetcher interface {
	Resource(ctx context.Context, resource string, q client.ListQuery) (client.Page[json.RawMessage], error)
}

type feature struct {
	state   FeatureState
	cancel  context.CancelFunc
	fetched bool
}

// Store owns the list state of every feature, keyed by query key.
type Store struct {
	mu       sync.Mutex
	features map[invalidation.Key]*feature
	fetchers map[invalidation.Key]Fetcher
	fallback ResourceFetcher
	log      *zap.Logger
}

// NewStore builds a store. Keys without a registered Fetcher are loaded
// through fallback by resource path.
func NewStore(fallback ResourceFetcher) *Store {
	return &Store{
		features: make(map[invalidation.Key]*feature),
		fetchers: make(map[invalidation.Key]Fetcher),
		fallback: fallback,
		log:      logger.WithModule("console"),
	}
}

// Register overrides how key is fetched.
func (s *Store) Register(key invalidation.Key, fetch Fetcher) {
	s.mu.Lock()
	s.fetchers[key] = fetch
	s.mu.Unlock()
}

// State returns a snapshot of key's state.
func (s *Store) State(key invalidation.Key) FeatureState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.featureLocked(key).state
}

// Dispatch applies action to key's state.
func (s *Store) Dispatch(key invalidation.Key, action Action) FeatureState {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.featureLocked(key)
	f.state = Reduce(f.state, action)
	return f.state
}

func (s *Store) featureLocked(key invalidation.Key) *feature {
	f, ok := s.features[key]
	if !ok {
		f = &feature{state: FeatureState{Query: client.ListQuery{Page: 1}}}
		s.features[key] = f
	}
	return f
}

func (s *Store) fetcherFor(key invalidation.Key) (Fetcher, error) {
	s.mu.Lock()
	fetch, ok := s.fetchers[key]
	s.mu.Unlock()
	if ok {
		return fetch, nil
	}
	if s.fallback == nil {
		return nil, fmt.Errorf("console: no fetcher for %q", key)
	}
	return func(ctx context.Context, q client.ListQuery) (client.Page[json.RawMessage], error) {
		return s.fallback.Resource(ctx, string(key), q)
	}, nil
}

// Fetch loads key with its current query. Any request still in flight for
// key is cancelled and its response discarded.
func (s *Store) Fetch(ctx context.Context, key invalidation.Key) error {
	fetch, err := s.fetcherFor(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	f := s.featureLocked(key)
	if f.cancel != nil {
		f.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.fetched = true
	seq := f.state.RequestSeq + 1
	query := f.state.Query
	f.state = Reduce(f.state, FetchStarted{Seq: seq, Query: query})
	s.mu.Unlock()

	page, err := fetch(reqCtx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	cancel()
	if f.state.RequestSeq != seq {
		// Superseded by a newer request.
		return nil
	}
	f.cancel = nil
	if err != nil {
		f.state = Reduce(f.state, FetchFailed{Seq: seq, Err: err.Error()})
		s.log.Debug("fetch failed", zap.String("feature", string(key)), zap.Error(err))
		return err
	}
	f.state = Reduce(f.state, FetchSucceeded{Seq: seq, Rows: page.Items, Pagination: page.Pagination})
	return nil
}

// SetQuery replaces key's query and re-fetches.
func (s *Store) SetQuery(ctx context.Context, key invalidation.Key, q client.ListQuery) error {
	s.Dispatch(key, QueryChanged{Query: q})
	return s.Fetch(ctx, key)
}

// Search sets the search term, returning to page 1, and re-fetches.
func (s *Store) Search(ctx context.Context, key invalidation.Key, term string) error {
	q := s.State(key).Query
	q.Search = term
	q.Page = 1
	return s.SetQuery(ctx, key, q)
}

// SetPage moves key to page and re-fetches.
func (s *Store) SetPage(ctx context.Context, key invalidation.Key, page int) error {
	q := s.State(key).Query
	q.Page = page
	return s.SetQuery(ctx, key, q)
}

// DismissError clears key's error banner.
func (s *Store) DismissError(key invalidation.Key) {
	s.Dispatch(key, ErrorDismissed{})
}

// Invalidate re-fetches every listed key that has been loaded before.
// Keys never shown are skipped; they load fresh when first fetched.
func (s *Store) Invalidate(ctx context.Context, keys ...invalidation.Key) error {
	var errs error
	for _, key := range uniqueKeys(keys) {
		s.mu.Lock()
		f, ok := s.features[key]
		loaded := ok && f.fetched
		s.mu.Unlock()
		if !loaded {
			continue
		}
		errs = multierr.Append(errs, s.Fetch(ctx, key))
	}
	return errs
}

// Invalidates lists the queries made stale by a mutation action.
func Invalidates(action string) []invalidation.Key {
	return invalidation.For(action)
}

// Mutate runs a mutation and, when it succeeds, invalidates the queries its
// action declares. Re-fetch failures are logged, not returned, since the
// mutation itself went through.
func (s *Store) Mutate(ctx context.Context, action string, run func(ctx context.Context) error) error {
	if err := run(ctx); err != nil {
		return err
	}
	if err := s.Invalidate(ctx, Invalidates(action)...); err != nil {
		s.log.Warn("refresh after mutation failed", zap.String("action", action), zap.Error(err))
	}
	return nil
}

// Apply re-fetches the keys named by a server invalidation event.
func (s *Store) Apply(ctx context.Context, inv client.Invalidation) error {
	keys := make([]invalidation.Key, len(inv.Keys))
	for i, key := range inv.Keys {
		keys[i] = invalidation.Key(key)
	}
	return s.Invalidate(ctx, keys...)
}

func uniqueKeys(keys []invalidation.Key) []invalidation.Key {
	seen := make(map[invalidation.Key]struct{}, len(keys))
	out := make([]invalidation.Key, 0, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// Rows decodes key's current rows into T.
func Rows[T any](s *Store, key invalidation.Key) ([]T, error) {
	state := s.State(key)
	out := make([]T, 0, len(state.Rows))
	for _, raw := range state.Rows {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("console: decode %s row: %w", key, err)
		}
		out = append(out, item)
	}
	return out, nil
}
