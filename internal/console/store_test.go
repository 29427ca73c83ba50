package console

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/dairyadmin/internal/invalidation"
	"github.com/charlesng35/dairyadmin/pkg/client"
)

type countingFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]error
}

func (f *countingFetcher) Resource(_ context.Context, resource string, q client.ListQuery) (client.Page[json.RawMessage], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[resource]++
	if err := f.fail[resource]; err != nil {
		return client.Page[json.RawMessage]{}, err
	}
	return client.Page[json.RawMessage]{
		Items:      rows(`{"id":1}`),
		Pagination: client.Pagination{CurrentPage: q.Page, TotalItems: 1, ItemsPerPage: 10, TotalPages: 1},
	}, nil
}

func (f *countingFetcher) count(resource string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[resource]
}

func TestStoreFetchUsesFallbackResource(t *testing.T) {
	fetcher := &countingFetcher{}
	store := NewStore(fetcher)

	require.NoError(t, store.Fetch(context.Background(), invalidation.Banks))
	state := store.State(invalidation.Banks)
	require.Equal(t, StatusSuccess, state.Status)
	require.Len(t, state.Rows, 1)
	require.EqualValues(t, 1, state.RequestSeq)
	require.Equal(t, 1, state.Pagination.CurrentPage)
}

func TestStoreLastIssuedRequestWins(t *testing.T) {
	store := NewStore(nil)

	firstStarted := make(chan struct{})
	var firstCtx context.Context
	release := make(chan struct{})
	calls := 0
	var mu sync.Mutex

	store.Register(invalidation.Roles, func(ctx context.Context, q client.ListQuery) (client.Page[json.RawMessage], error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			firstCtx = ctx
			close(firstStarted)
			<-release
			return client.Page[json.RawMessage]{Items: rows(`{"name":"stale"}`)}, nil
		}
		return client.Page[json.RawMessage]{Items: rows(`{"name":"fresh"}`)}, nil
	})

	done := make(chan error, 1)
	go func() { done <- store.Search(context.Background(), invalidation.Roles, "g") }()
	<-firstStarted

	require.NoError(t, store.Search(context.Background(), invalidation.Roles, "gm"))
	require.ErrorIs(t, firstCtx.Err(), context.Canceled)

	close(release)
	require.NoError(t, <-done)

	state := store.State(invalidation.Roles)
	require.Equal(t, StatusSuccess, state.Status)
	require.Equal(t, rows(`{"name":"fresh"}`), state.Rows)
	require.Equal(t, "gm", state.Query.Search)
	require.Equal(t, 1, state.Query.Page)
}

func TestStoreSearchTwiceStaysOnFirstPage(t *testing.T) {
	store := NewStore(&countingFetcher{})
	ctx := context.Background()

	require.NoError(t, store.SetPage(ctx, invalidation.Roles, 3))
	require.Equal(t, 3, store.State(invalidation.Roles).Query.Page)

	require.NoError(t, store.Search(ctx, invalidation.Roles, "manager"))
	require.NoError(t, store.Search(ctx, invalidation.Roles, "manager"))
	require.Equal(t, 1, store.State(invalidation.Roles).Query.Page)
}

func TestStoreFailureIsIsolatedPerFeature(t *testing.T) {
	fetcher := &countingFetcher{fail: map[string]error{"villages": errors.New("Network Error")}}
	store := NewStore(fetcher)
	ctx := context.Background()

	require.NoError(t, store.Fetch(ctx, invalidation.Banks))
	require.EqualError(t, store.Fetch(ctx, invalidation.Villages), "Network Error")

	require.Equal(t, StatusSuccess, store.State(invalidation.Banks).Status)
	require.Equal(t, StatusError, store.State(invalidation.Villages).Status)
	require.Equal(t, "Network Error", store.State(invalidation.Villages).Error)

	store.DismissError(invalidation.Villages)
	require.Empty(t, store.State(invalidation.Villages).Error)
}

func TestStoreInvalidateRefetchesOnlyLoadedKeys(t *testing.T) {
	fetcher := &countingFetcher{}
	store := NewStore(fetcher)
	ctx := context.Background()

	require.NoError(t, store.Fetch(ctx, invalidation.Banks))
	require.NoError(t, store.Invalidate(ctx, invalidation.Banks, invalidation.Summary, invalidation.Banks))

	require.Equal(t, 2, fetcher.count("banks"))
	require.Zero(t, fetcher.count("reports/summary"))
}

func TestStoreInvalidateCombinesErrors(t *testing.T) {
	fetcher := &countingFetcher{}
	store := NewStore(fetcher)
	ctx := context.Background()
	require.NoError(t, store.Fetch(ctx, invalidation.Banks))
	require.NoError(t, store.Fetch(ctx, invalidation.Villages))

	fetcher.mu.Lock()
	fetcher.fail = map[string]error{"banks": errors.New("a"), "villages": errors.New("b")}
	fetcher.mu.Unlock()

	err := store.Invalidate(ctx, invalidation.Banks, invalidation.Villages)
	require.ErrorContains(t, err, "a")
	require.ErrorContains(t, err, "b")
}

func TestStoreMutateInvalidatesDeclaredKeys(t *testing.T) {
	fetcher := &countingFetcher{}
	store := NewStore(fetcher)
	ctx := context.Background()

	require.NoError(t, store.Fetch(ctx, invalidation.Roles))
	require.NoError(t, store.Fetch(ctx, invalidation.Banks))

	require.NoError(t, store.Mutate(ctx, invalidation.RoleCreate, func(context.Context) error { return nil }))
	require.Equal(t, 2, fetcher.count("roles"))
	require.Equal(t, 1, fetcher.count("banks"))

	failed := errors.New("409")
	require.ErrorIs(t, store.Mutate(ctx, invalidation.RoleCreate, func(context.Context) error { return failed }), failed)
	require.Equal(t, 2, fetcher.count("roles"))
}

func TestStoreApplyServerInvalidation(t *testing.T) {
	fetcher := &countingFetcher{}
	store := NewStore(fetcher)
	ctx := context.Background()
	require.NoError(t, store.Fetch(ctx, invalidation.Hierarchies))

	require.NoError(t, store.Apply(ctx, client.Invalidation{Action: invalidation.HierarchyCreate, Keys: []string{"hierarchy", "reports/summary"}}))
	require.Equal(t, 2, fetcher.count("hierarchy"))
}

func TestStoreWithoutFetcher(t *testing.T) {
	store := NewStore(nil)
	require.Error(t, store.Fetch(context.Background(), invalidation.Banks))
}

func TestRowsDecodesState(t *testing.T) {
	store := NewStore(&countingFetcher{})
	require.NoError(t, store.Fetch(context.Background(), invalidation.Banks))

	type bank struct {
		ID uint `json:"id"`
	}
	out, err := Rows[bank](store, invalidation.Banks)
	require.NoError(t, err)
	require.Equal(t, []bank{{ID: 1}}, out)
}

func TestInvalidatesFollowsContract(t *testing.T) {
	require.Contains(t, Invalidates(invalidation.HierarchyCreate), invalidation.Hierarchies)
	require.Nil(t, Invalidates("unknown.action"))
}
