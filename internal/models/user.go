package models

import "time"

// User is a console or field user. Authentication is password based against
// the seeded accounts; everything else about sessions is mocked.
type User struct {
	BaseModel

	Name     string `gorm:"size:128;not null" json:"name"`
	Email    string `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Mobile   string `gorm:"size:32" json:"mobile"`
	Password string `gorm:"not null" json:"-"`

	RoleID *uint `gorm:"index" json:"role_id"`
	Role   *Role `json:"role,omitempty"`

	IsSuperAdmin bool       `gorm:"default:false" json:"is_super_admin"`
	Status       bool       `gorm:"not null" json:"status"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}
