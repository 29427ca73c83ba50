// Package hierarchy holds the approval hierarchy rules shared by the API
// server and the console client: level-count bounds, per-level role
// validation, role option filtering and the dynamic table layout.
package hierarchy

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Bounds limits how many levels a hierarchy may have.
type Bounds struct {
	Min int
	Max int
}

var (
	// AddBounds applies to the create screen.
	AddBounds = Bounds{Min: 1, Max: 4}
	// EditBounds applies to the alternate edit screen.
	EditBounds = Bounds{Min: 1, Max: 20}
)

// Field keys used in ValidationError.
const (
	FieldLevel  = "level"
	FieldLevels = "levels"
)

// Level binds a 1-based level number to a role.
type Level struct {
	Level  int  `json:"level"`
	RoleID uint `json:"role_id"`
}

// ValidationError reports every rule a hierarchy payload breaks, keyed by field path.
type ValidationError struct {
	Fields map[string]string
	// DuplicateRole is set when the same role was chosen for two levels.
	DuplicateRole bool
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "hierarchy: invalid"
	}
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e.Fields[key])
	}
	return "hierarchy: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// RoleField returns the field key for the role select at the given level.
func RoleField(level int) string {
	return fmt.Sprintf("levels[%d].role_id", level)
}

func levelField(level int) string {
	return fmt.Sprintf("levels[%d].level", level)
}

// ParseLevelCount converts raw user input into a level count. Blank or
// non-numeric input is rejected; range checks happen in Validate.
func ParseLevelCount(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, &ValidationError{Fields: map[string]string{FieldLevel: "Level is required"}}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{Fields: map[string]string{FieldLevel: "Level must be a whole number"}}
	}
	return n, nil
}

// ValidateLevelCount checks the level count alone against bounds.
func ValidateLevelCount(levelCount int, bounds Bounds) error {
	lower := bounds.Min
	if lower < 1 {
		lower = 1
	}
	switch {
	case levelCount == 0:
		return &ValidationError{Fields: map[string]string{FieldLevel: "Level is required"}}
	case levelCount < lower:
		return &ValidationError{Fields: map[string]string{FieldLevel: fmt.Sprintf("Level must be at least %d", lower)}}
	case bounds.Max > 0 && levelCount > bounds.Max:
		return &ValidationError{Fields: map[string]string{FieldLevel: fmt.Sprintf("Level must be at most %d", bounds.Max)}}
	}
	return nil
}

// Validate checks a complete hierarchy: the level count is within bounds,
// exactly levelCount entries cover levels 1..levelCount once each, every level
// has a role and no role appears twice.
func Validate(levelCount int, levels []Level, bounds Bounds) error {
	if err := ValidateLevelCount(levelCount, bounds); err != nil {
		return err
	}

	verr := &ValidationError{}
	if len(levels) != levelCount {
		verr.add(FieldLevels, fmt.Sprintf("Expected %d levels, got %d", levelCount, len(levels)))
	}

	seenLevel := make(map[int]bool, len(levels))
	roleAt := make(map[uint]int, len(levels))
	for _, entry := range Normalize(levels) {
		if entry.Level < 1 || entry.Level > levelCount {
			verr.add(levelField(entry.Level), fmt.Sprintf("Level %d is outside 1..%d", entry.Level, levelCount))
			continue
		}
		if seenLevel[entry.Level] {
			verr.add(levelField(entry.Level), fmt.Sprintf("Level %d is listed more than once", entry.Level))
			continue
		}
		seenLevel[entry.Level] = true

		if entry.RoleID == 0 {
			verr.add(RoleField(entry.Level), fmt.Sprintf("Select a role for level %d", entry.Level))
			continue
		}
		if first, dup := roleAt[entry.RoleID]; dup {
			verr.add(RoleField(entry.Level), fmt.Sprintf("Role already selected at level %d", first))
			verr.DuplicateRole = true
			continue
		}
		roleAt[entry.RoleID] = entry.Level
	}

	for level := 1; level <= levelCount; level++ {
		if !seenLevel[level] {
			verr.add(RoleField(level), fmt.Sprintf("Select a role for level %d", level))
		}
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// Build numbers roleIDs as levels 1..len(roleIDs).
func Build(roleIDs []uint) []Level {
	levels := make([]Level, len(roleIDs))
	for i, id := range roleIDs {
		levels[i] = Level{Level: i + 1, RoleID: id}
	}
	return levels
}

// Normalize returns a copy of levels ordered by level number.
func Normalize(levels []Level) []Level {
	out := append([]Level(nil), levels...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Level < out[j].Level
	})
	return out
}

// RoleIDs returns the role ids of levels ordered by level number.
func RoleIDs(levels []Level) []uint {
	normalized := Normalize(levels)
	ids := make([]uint, len(normalized))
	for i, entry := range normalized {
		ids[i] = entry.RoleID
	}
	return ids
}
