// Package invalidation declares which cached list queries each mutation
// makes stale. The API server broadcasts these keys after a successful
// mutation and the console store re-fetches exactly the listed queries.
package invalidation

import "sort"

// Key identifies a list query by its API resource path.
type Key string

// Query keys.
const (
	Roles               Key = "roles"
	Categories          Key = "categories"
	Modules             Key = "modules"
	ModuleTree          Key = "modules/tree"
	Permissions         Key = "permissions"
	Hierarchies         Key = "hierarchy"
	Users               Key = "users"
	AssignedPermissions Key = "assigned-permissions"
	Banks               Key = "banks"
	Villages            Key = "villages"
	MCCs                Key = "mccs"
	MPPs                Key = "mpps"
	FormSteps           Key = "form-steps"
	Summary             Key = "reports/summary"
)

// Mutation actions. The same strings are written to the audit log.
const (
	CategoryCreate = "category.create"
	CategoryUpdate = "category.update"
	CategoryDelete = "category.delete"

	RoleCreate = "role.create"
	RoleUpdate = "role.update"
	RoleDelete = "role.delete"

	ModuleCreate = "module.create"
	ModuleUpdate = "module.update"
	ModuleDelete = "module.delete"

	PermissionUpdate = "permission.update"

	HierarchyCreate = "hierarchy.create"
	HierarchyUpdate = "hierarchy.update"
	HierarchyDelete = "hierarchy.delete"

	UserCreate = "user.create"
	UserUpdate = "user.update"
	UserDelete = "user.delete"

	AssignmentCreate = "assignment.create"
	AssignmentUpdate = "assignment.update"
	AssignmentDelete = "assignment.delete"

	BankCreate = "bank.create"
	BankUpdate = "bank.update"
	BankDelete = "bank.delete"

	VillageCreate = "village.create"
	VillageUpdate = "village.update"
	VillageDelete = "village.delete"

	MCCCreate = "mcc.create"
	MCCUpdate = "mcc.update"
	MCCDelete = "mcc.delete"

	MPPCreate = "mpp.create"
	MPPUpdate = "mpp.update"
	MPPDelete = "mpp.delete"

	FormStepCreate = "formstep.create"
	FormStepUpdate = "formstep.update"
	FormStepDelete = "formstep.delete"

	ImportBanks    = "import.banks"
	ImportVillages = "import.villages"
	ImportMCCs     = "import.mccs"
	ImportMPPs     = "import.mpps"
)

var contract = map[string][]Key{
	CategoryCreate: {Categories, Summary},
	CategoryUpdate: {Categories, Roles},
	CategoryDelete: {Categories, Summary},

	RoleCreate: {Roles, Summary},
	RoleUpdate: {Roles, Hierarchies, Users, AssignedPermissions},
	RoleDelete: {Roles, Permissions, Summary},

	ModuleCreate: {Modules, ModuleTree},
	ModuleUpdate: {Modules, ModuleTree},
	ModuleDelete: {Modules, ModuleTree, Permissions},

	PermissionUpdate: {Permissions},

	HierarchyCreate: {Hierarchies, Summary},
	HierarchyUpdate: {Hierarchies, Summary},
	HierarchyDelete: {Hierarchies, Summary},

	UserCreate: {Users, Summary},
	UserUpdate: {Users, AssignedPermissions},
	UserDelete: {Users, AssignedPermissions, Summary},

	AssignmentCreate: {AssignedPermissions, Summary},
	AssignmentUpdate: {AssignedPermissions},
	AssignmentDelete: {AssignedPermissions, Summary},

	BankCreate: {Banks, Summary},
	BankUpdate: {Banks},
	BankDelete: {Banks, Summary},

	VillageCreate: {Villages, Summary},
	VillageUpdate: {Villages},
	VillageDelete: {Villages, Summary},

	MCCCreate: {MCCs, Summary},
	MCCUpdate: {MCCs},
	MCCDelete: {MCCs, Summary},

	MPPCreate: {MPPs, Summary},
	MPPUpdate: {MPPs},
	MPPDelete: {MPPs, Summary},

	FormStepCreate: {FormSteps},
	FormStepUpdate: {FormSteps},
	FormStepDelete: {FormSteps},

	ImportBanks:    {Banks, Summary},
	ImportVillages: {Villages, Summary},
	ImportMCCs:     {MCCs, Summary},
	ImportMPPs:     {MPPs, Summary},
}

// For returns the keys invalidated by action. Unknown actions invalidate nothing.
func For(action string) []Key {
	keys := contract[action]
	if len(keys) == 0 {
		return nil
	}
	return append([]Key(nil), keys...)
}

// Actions lists every mutation action with a declared contract, sorted.
func Actions() []string {
	out := make([]string, 0, len(contract))
	for action := range contract {
		out = append(out, action)
	}
	sort.Strings(out)
	return out
}

// Strings converts keys to plain strings for transport.
func Strings(keys []Key) []string {
	out := make([]string, len(keys))
	for i, key := range keys {
		out[i] = string(key)
	}
	return out
}
