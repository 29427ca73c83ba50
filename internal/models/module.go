package models

// Module is a navigable console section. Modules form a two-level tree and are
// the unit of permission grants.
type Module struct {
	BaseModel

	Name      string `gorm:"size:128;not null" json:"name"`
	Route     string `gorm:"uniqueIndex;size:128;not null" json:"route"`
	ParentID  *uint  `gorm:"index" json:"parent_id"`
	SortOrder int    `gorm:"default:0" json:"sort_order"`
	Status    bool   `gorm:"not null" json:"status"`

	Children []Module `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}

// IsRoot reports whether the module sits at the top of the tree.
func (m Module) IsRoot() bool {
	return m.ParentID == nil || *m.ParentID == 0
}
