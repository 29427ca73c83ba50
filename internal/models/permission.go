package models

// Permission grants (or explicitly denies) a module to a role. At most one
// record exists per (role, module) pair; absence means not granted.
type Permission struct {
	BaseModel

	RoleID   uint    `gorm:"uniqueIndex:idx_role_module;not null" json:"role_id"`
	ModuleID uint    `gorm:"uniqueIndex:idx_role_module;not null" json:"module_id"`
	Module   *Module `json:"module,omitempty"`
	Status   bool    `gorm:"not null" json:"status"`
}

// TableName keeps the role/module join table name explicit.
func (Permission) TableName() string {
	return "role_permissions"
}
