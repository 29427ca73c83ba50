package permissions

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Module describes a console section that can be granted to a role.
type Module struct {
	Route     string
	Name      string
	Parent    string
	SortOrder int
	DependsOn []string
}

type moduleRegistry struct {
	mu      sync.RWMutex
	modules map[string]*Module
}

var globalRegistry = &moduleRegistry{
	modules: make(map[string]*Module),
}

var (
	errNilModule      = errors.New("module: nil definition")
	errEmptyRoute     = errors.New("module: route is required")
	errDuplicateRoute = errors.New("module: already registered")
	errSelfDependency = errors.New("module: cannot depend on itself")
	errSelfParent     = errors.New("module: cannot be its own parent")
)

// Register adds a module definition to the global registry.
func Register(mod *Module) error {
	if mod == nil {
		return errNilModule
	}

	route := strings.TrimSpace(mod.Route)
	if route == "" {
		return errEmptyRoute
	}

	def := cloneModule(mod)
	def.Route = route
	def.Name = strings.TrimSpace(def.Name)
	def.Parent = strings.TrimSpace(def.Parent)
	if def.Parent == route {
		return errSelfParent
	}

	depends, err := normaliseRoutes(def.DependsOn, route)
	if err != nil {
		return err
	}
	def.DependsOn = depends

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if _, exists := globalRegistry.modules[route]; exists {
		return fmt.Errorf("%w: %s", errDuplicateRoute, route)
	}

	globalRegistry.modules[route] = def
	return nil
}

// Get returns a copy of the module definition when registered.
func Get(route string) (*Module, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	mod, ok := globalRegistry.modules[route]
	if !ok {
		return nil, false
	}
	return cloneModule(mod), true
}

// GetAll returns a copy of all registered modules keyed by route.
func GetAll() map[string]*Module {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	out := make(map[string]*Module, len(globalRegistry.modules))
	for route, mod := range globalRegistry.modules {
		out[route] = cloneModule(mod)
	}
	return out
}

// Ordered returns registered modules with parents ahead of their children,
// each group ordered by sort order then route.
func Ordered() []*Module {
	all := GetAll()
	list := make([]*Module, 0, len(all))
	for _, mod := range all {
		list = append(list, mod)
	}

	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if (a.Parent == "") != (b.Parent == "") {
			return a.Parent == ""
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.Route < b.Route
	})
	return list
}

// ValidateDependencies ensures parents and dependencies reference known modules
// and that the tree is at most two levels deep.
func ValidateDependencies() error {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	for _, mod := range globalRegistry.modules {
		if mod.Parent != "" {
			parent, ok := globalRegistry.modules[mod.Parent]
			if !ok {
				return fmt.Errorf("module: %s has unknown parent %s", mod.Route, mod.Parent)
			}
			if parent.Parent != "" {
				return fmt.Errorf("module: %s is nested deeper than two levels", mod.Route)
			}
		}
		for _, dep := range mod.DependsOn {
			if _, ok := globalRegistry.modules[dep]; !ok {
				return fmt.Errorf("module: %s depends on unknown module %s", mod.Route, dep)
			}
		}
	}
	return nil
}

func cloneModule(mod *Module) *Module {
	if mod == nil {
		return nil
	}

	cp := *mod
	if len(mod.DependsOn) > 0 {
		cp.DependsOn = append([]string(nil), mod.DependsOn...)
	}
	return &cp
}

func normaliseRoutes(values []string, self string) ([]string, error) {
	if len(values) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(values))
	var result []string

	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if value == self {
			return nil, errSelfDependency
		}
		if _, exists := seen[value]; exists {
			continue
		}

		seen[value] = struct{}{}
		result = append(result, value)
	}

	return result, nil
}

// removeModule drops a registry entry. Used by tests.
func removeModule(route string) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	delete(globalRegistry.modules, route)
}
