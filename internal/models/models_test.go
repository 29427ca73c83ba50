package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStatusLabel(t *testing.T) {
	require.Equal(t, "Active", StatusLabel(true))
	require.Equal(t, "Inactive", StatusLabel(false))
}

func TestModuleIsRoot(t *testing.T) {
	zero := uint(0)
	parent := uint(4)

	require.True(t, Module{}.IsRoot())
	require.True(t, Module{ParentID: &zero}.IsRoot())
	require.False(t, Module{ParentID: &parent}.IsRoot())
}

func TestPermissionTableName(t *testing.T) {
	require.Equal(t, "role_permissions", Permission{}.TableName())
}

func TestCacheEntryExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	require.False(t, CacheEntry{}.Expired(now))
	require.False(t, CacheEntry{ExpiresAt: now.Add(time.Minute)}.Expired(now))
	require.True(t, CacheEntry{ExpiresAt: now.Add(-time.Minute)}.Expired(now))
}
