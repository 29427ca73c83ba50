package console

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/dairyadmin/internal/hierarchy"
	"github.com/charlesng35/dairyadmin/internal/invalidation"
	"github.com/charlesng35/dairyadmin/pkg/client"
)

type fakeHierarchyAPI struct {
	roles   []client.Role
	stored  map[uint]*client.Hierarchy
	creates []client.HierarchyPayload
	updates []client.HierarchyPayload
}

func newFakeHierarchyAPI() *fakeHierarchyAPI {
	return &fakeHierarchyAPI{
		roles: []client.Role{
			{ID: 4, Name: "MCC Supervisor", CategoryID: 1},
			{ID: 5, Name: "Area Officer", CategoryID: 1},
			{ID: 6, Name: "Zonal Manager", CategoryID: 1},
			{ID: 7, Name: "General Manager", CategoryID: 1},
		},
		stored: map[uint]*client.Hierarchy{},
	}
}

func (f *fakeHierarchyAPI) ApprovalRoles(context.Context) ([]client.Role, error) {
	return f.roles, nil
}

func (f *fakeHierarchyAPI) GetHierarchy(_ context.Context, id uint) (*client.Hierarchy, error) {
	h, ok := f.stored[id]
	if !ok {
		return nil, &client.APIError{StatusCode: http.StatusNotFound, Code: "HIERARCHY_NOT_FOUND", Message: "Approval hierarchy not found"}
	}
	return h, nil
}

func (f *fakeHierarchyAPI) CreateHierarchy(_ context.Context, p client.HierarchyPayload) (*client.Hierarchy, error) {
	f.creates = append(f.creates, p)
	id := uint(len(f.stored) + 1)
	h := &client.Hierarchy{ID: id, Level: p.Level, Levels: p.Levels, Status: true}
	f.stored[id] = h
	return h, nil
}

func (f *fakeHierarchyAPI) UpdateHierarchy(_ context.Context, id uint, p client.HierarchyPayload) (*client.Hierarchy, error) {
	f.updates = append(f.updates, p)
	h := &client.Hierarchy{ID: id, Level: p.Level, Levels: p.Levels, Status: *p.Status}
	f.stored[id] = h
	return h, nil
}

func TestHierarchyEditorAddAcceptsOneToFourDistinctRoles(t *testing.T) {
	api := newFakeHierarchyAPI()
	editor := NewHierarchyEditor(api, nil, nil)

	all := []uint{4, 5, 6, 7}
	for n := 1; n <= 4; n++ {
		created, err := editor.Add(context.Background(), n, all[:n])
		require.NoError(t, err, "levels=%d", n)
		require.Equal(t, n, created.Level)
	}
	require.Len(t, api.creates, 4)
	require.Equal(t, []client.HierarchyLevel{{Level: 1, RoleID: 4}, {Level: 2, RoleID: 5}}, api.creates[1].Levels)
}

func TestHierarchyEditorRejectsBeforeNetwork(t *testing.T) {
	api := newFakeHierarchyAPI()
	editor := NewHierarchyEditor(api, nil, nil)
	ctx := context.Background()

	cases := map[string]struct {
		count int
		roles []uint
	}{
		"duplicate role": {count: 3, roles: []uint{4, 5, 4}},
		"zero levels":    {count: 0, roles: nil},
		"above add max":  {count: 5, roles: []uint{1, 2, 3, 4, 5}},
		"missing role":   {count: 2, roles: []uint{4, 0}},
		"count mismatch": {count: 3, roles: []uint{4, 5}},
	}
	for name, tc := range cases {
		_, err := editor.Add(ctx, tc.count, tc.roles)
		var verr *hierarchy.ValidationError
		require.ErrorAs(t, err, &verr, name)
	}
	require.Empty(t, api.creates)

	_, err := editor.Add(ctx, 3, []uint{4, 5, 4})
	var verr *hierarchy.ValidationError
	require.ErrorAs(t, err, &verr)
	require.True(t, verr.DuplicateRole)
	require.Contains(t, verr.Fields, hierarchy.RoleField(3))
}

func TestHierarchyEditorEditPrefetchesAndKeepsStatus(t *testing.T) {
	api := newFakeHierarchyAPI()
	api.stored[9] = &client.Hierarchy{ID: 9, Level: 2, Status: false, Levels: []client.HierarchyLevel{{Level: 1, RoleID: 5}, {Level: 2, RoleID: 7}}}
	editor := NewHierarchyEditor(api, nil, nil)
	ctx := context.Background()

	levels := LevelsFrom(api.stored[9])
	levels = append(levels, hierarchy.Level{Level: 3, RoleID: 6})
	updated, err := editor.Edit(ctx, 9, levels)
	require.NoError(t, err)
	require.Equal(t, 3, updated.Level)
	require.False(t, updated.Status)
	require.False(t, *api.updates[0].Status)

	_, err = editor.Edit(ctx, 9, []hierarchy.Level{{Level: 1, RoleID: 5}, {Level: 2, RoleID: 5}})
	var verr *hierarchy.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, api.updates, 1)

	_, err = editor.Edit(ctx, 404, levels)
	require.True(t, client.IsStatus(err, http.StatusNotFound))
}

func TestHierarchyEditorInvalidatesList(t *testing.T) {
	api := newFakeHierarchyAPI()
	fetcher := &countingFetcher{}
	store := NewStore(fetcher)
	ctx := context.Background()
	require.NoError(t, store.Fetch(ctx, invalidation.Hierarchies))

	editor := NewHierarchyEditor(api, store, nil)
	_, err := editor.Add(ctx, 2, []uint{5, 7})
	require.NoError(t, err)
	require.Equal(t, 2, fetcher.count("hierarchy"))

	_, err = editor.Add(ctx, 2, []uint{5, 5})
	require.Error(t, err)
	require.Equal(t, 2, fetcher.count("hierarchy"))
}

func TestHierarchyEditorRoleOptionsHideTakenRoles(t *testing.T) {
	editor := NewHierarchyEditor(newFakeHierarchyAPI(), nil, nil)

	options, err := editor.RoleOptions(context.Background(), []hierarchy.Level{{Level: 1, RoleID: 4}, {Level: 2, RoleID: 5}}, 2)
	require.NoError(t, err)

	var ids []uint
	for _, option := range options {
		ids = append(ids, option.ID)
	}
	require.Equal(t, []uint{5, 6, 7}, ids)
}

func TestHierarchyTableRoundTrip(t *testing.T) {
	rows := []client.Hierarchy{{
		ID:     1,
		Status: true,
		Levels: []client.HierarchyLevel{
			{Level: 1, RoleID: 5, Role: &client.Role{ID: 5, Name: "Area Officer"}},
			{Level: 2, RoleID: 7},
		},
	}}
	view := HierarchyTable(rows, []client.Role{{ID: 7, Name: "General Manager"}})

	require.Len(t, view.Columns, 2)
	require.Equal(t, "Level 1", view.Columns[0].Title)
	require.Equal(t, "Level 2", view.Columns[1].Title)
	require.Equal(t, []string{"Area Officer", "General Manager"}, view.Rows[0].Cells)
	require.Equal(t, "Active", view.Rows[0].Status.Label)
}

func TestHierarchyEditorSharesGuard(t *testing.T) {
	guard := &SubmitGuard{}
	editor := NewHierarchyEditor(newFakeHierarchyAPI(), nil, guard)

	blocked := make(chan error, 1)
	_ = guard.Run("hierarchy.add", func() error {
		_, err := editor.Add(context.Background(), 1, []uint{4})
		blocked <- err
		return nil
	})
	require.ErrorIs(t, <-blocked, ErrSubmitInFlight)
}
