package permissions

import (
	"fmt"
)

var (
	// ErrUnknownModule indicates a module lookup failed because it has not been registered.
	ErrUnknownModule = fmt.Errorf("module: unknown module")
	// ErrCircularDependency signals that a dependency graph contains a cycle.
	ErrCircularDependency = fmt.Errorf("module: circular dependency detected")
)

// ResolveDependencies returns every route that must also be granted for the
// supplied route to be usable: its parent plus the transitive DependsOn chain.
func ResolveDependencies(route string) ([]string, error) {
	mods := GetAll()

	if _, ok := mods[route]; !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownModule, route)
	}

	visited := make(map[string]bool, len(mods))
	recStack := make(map[string]bool, len(mods))
	var resolved []string

	var walk func(string) error
	walk = func(current string) error {
		mod, ok := mods[current]
		if !ok {
			return fmt.Errorf("%w %q", ErrUnknownModule, current)
		}
		if recStack[current] {
			return fmt.Errorf("%w at %s", ErrCircularDependency, current)
		}
		if visited[current] {
			return nil
		}

		recStack[current] = true
		next := mod.DependsOn
		if mod.Parent != "" {
			next = append([]string{mod.Parent}, next...)
		}
		for _, dep := range next {
			if err := walk(dep); err != nil {
				return err
			}
		}
		recStack[current] = false
		visited[current] = true

		if current != route {
			resolved = append(resolved, current)
		}
		return nil
	}

	if err := walk(route); err != nil {
		return nil, err
	}
	return resolved, nil
}
