package invalidation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEveryActionInvalidatesItsOwnList(t *testing.T) {
	for _, action := range Actions() {
		require.NotEmpty(t, For(action), action)
	}

	require.Contains(t, For(HierarchyCreate), Hierarchies)
	require.Contains(t, For(ModuleUpdate), ModuleTree)
	require.Contains(t, For(AssignmentCreate), AssignedPermissions)
}

func TestForReturnsCopy(t *testing.T) {
	keys := For(RoleCreate)
	keys[0] = "mutated"
	require.Equal(t, Roles, For(RoleCreate)[0])
}

func TestUnknownActionInvalidatesNothing(t *testing.T) {
	require.Nil(t, For("nope"))
	require.Equal(t, []string{"roles", "reports/summary"}, Strings(For(RoleCreate)))
}
