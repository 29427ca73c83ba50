package models

// Category groups roles, e.g. "Approval Users" or "Web Users".
type Category struct {
	BaseModel

	Name   string `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Status bool   `gorm:"not null" json:"status"`

	Roles []Role `gorm:"foreignKey:CategoryID" json:"roles,omitempty"`
}

// ApprovalCategoryName is the seeded category whose roles may appear in approval hierarchies.
const ApprovalCategoryName = "Approval Users"
