package models

// ApprovalHierarchy is an ordered chain of approving roles.
type ApprovalHierarchy struct {
	BaseModel

	Level  int              `gorm:"not null" json:"level"`
	Status bool             `gorm:"not null" json:"status"`
	Levels []HierarchyLevel `gorm:"foreignKey:HierarchyID;constraint:OnDelete:CASCADE" json:"levels"`
}

// HierarchyLevel binds one level of a hierarchy to a role.
type HierarchyLevel struct {
	BaseModel

	HierarchyID uint  `gorm:"uniqueIndex:idx_hierarchy_level;not null" json:"hierarchy_id"`
	Level       int   `gorm:"uniqueIndex:idx_hierarchy_level;not null" json:"level"`
	RoleID      uint  `gorm:"index;not null" json:"role_id"`
	Role        *Role `json:"role,omitempty"`
}
