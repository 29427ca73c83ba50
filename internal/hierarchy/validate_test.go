package hierarchy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	return verr.Fields
}

func TestValidateAcceptsDistinctRolesWithinAddBounds(t *testing.T) {
	roles := []uint{11, 12, 13, 14}
	for n := 1; n <= 4; n++ {
		require.NoError(t, Validate(n, Build(roles[:n]), AddBounds), "n=%d", n)
	}
}

func TestValidateRejectsDuplicateRoles(t *testing.T) {
	err := Validate(3, Build([]uint{5, 7, 5}), AddBounds)
	fields := fieldsOf(t, err)
	require.Equal(t, "Role already selected at level 1", fields[RoleField(3)])
	require.Len(t, fields, 1)
}

func TestValidateLevelCountBounds(t *testing.T) {
	require.Equal(t, "Level is required", fieldsOf(t, Validate(0, nil, AddBounds))[FieldLevel])
	require.Equal(t, "Level must be at least 1", fieldsOf(t, Validate(-2, nil, AddBounds))[FieldLevel])
	require.Equal(t, "Level must be at most 4", fieldsOf(t, Validate(5, Build([]uint{1, 2, 3, 4, 5}), AddBounds))[FieldLevel])

	require.NoError(t, Validate(5, Build([]uint{1, 2, 3, 4, 5}), EditBounds))
	require.NoError(t, ValidateLevelCount(20, EditBounds))
	require.Error(t, ValidateLevelCount(21, EditBounds))
}

func TestValidateRequiresRolePerLevel(t *testing.T) {
	fields := fieldsOf(t, Validate(3, []Level{{Level: 1, RoleID: 4}, {Level: 2}}, AddBounds))
	require.Contains(t, fields, FieldLevels)
	require.Equal(t, "Select a role for level 2", fields[RoleField(2)])
	require.Equal(t, "Select a role for level 3", fields[RoleField(3)])
}

func TestValidateRejectsOutOfRangeAndRepeatedLevels(t *testing.T) {
	fields := fieldsOf(t, Validate(2, []Level{{Level: 1, RoleID: 1}, {Level: 3, RoleID: 2}}, AddBounds))
	require.Contains(t, fields, "levels[3].level")
	require.Contains(t, fields, RoleField(2))

	fields = fieldsOf(t, Validate(2, []Level{{Level: 1, RoleID: 1}, {Level: 1, RoleID: 2}}, AddBounds))
	require.Equal(t, "Level 1 is listed more than once", fields["levels[1].level"])
}

func TestValidateAcceptsUnorderedLevels(t *testing.T) {
	levels := []Level{{Level: 2, RoleID: 7}, {Level: 1, RoleID: 5}}
	require.NoError(t, Validate(2, levels, AddBounds))
	require.Equal(t, []uint{5, 7}, RoleIDs(levels))
	require.Equal(t, 2, levels[0].Level, "input must not be reordered")
}

func TestParseLevelCount(t *testing.T) {
	n, err := ParseLevelCount(" 4 ")
	require.NoError(t, err)
	require.Equal(t, 4, n)

	_, err = ParseLevelCount("two")
	require.Equal(t, "Level must be a whole number", fieldsOf(t, err)[FieldLevel])

	_, err = ParseLevelCount("")
	require.Equal(t, "Level is required", fieldsOf(t, err)[FieldLevel])

	n, err = ParseLevelCount("0")
	require.NoError(t, err)
	require.Error(t, ValidateLevelCount(n, AddBounds))
}

func TestValidationErrorMessageIsStable(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"levels[2].role_id": "b", "level": "a"}}
	require.Equal(t, "hierarchy: level: a; levels[2].role_id: b", err.Error())
}
