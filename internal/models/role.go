package models

// Role belongs to exactly one category and is the unit permissions and
// hierarchy levels attach to.
type Role struct {
	BaseModel

	Name       string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	CategoryID uint      `gorm:"index;not null" json:"category_id"`
	Category   *Category `json:"category,omitempty"`
	Status     bool      `gorm:"not null" json:"status"`

	Permissions []Permission `gorm:"foreignKey:RoleID" json:"permissions,omitempty"`
}
