package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	testutil "github.com/charlesng35/dairyadmin/internal/database/testutil"
	"github.com/charlesng35/dairyadmin/internal/invalidation"
	"github.com/charlesng35/dairyadmin/internal/models"
)

type recordingNotifier struct {
	mu      sync.Mutex
	actions []string
	keys    [][]invalidation.Key
}

func (r *recordingNotifier) Invalidate(_ context.Context, action string, keys []invalidation.Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
	r.keys = append(r.keys, keys)
}

func (r *recordingNotifier) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.actions...)
}

// openSeededDB returns a database with default categories, roles, modules and masters.
func openSeededDB(t *testing.T) (*gorm.DB, *AuditService) {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	audit, err := NewAuditService(db)
	require.NoError(t, err)
	return db, audit
}

func mustRoleByName(t *testing.T, db *gorm.DB, name string) models.Role {
	t.Helper()
	var role models.Role
	require.NoError(t, db.Take(&role, "name = ?", name).Error)
	return role
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var total int64
	require.NoError(t, db.Model(model).Count(&total).Error)
	return total
}
