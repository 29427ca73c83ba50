package models

import "time"

// BaseModel provides shared fields for all persistent models.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusLabel renders the boolean status the way list screens show it.
func StatusLabel(active bool) string {
	if active {
		return "Active"
	}
	return "Inactive"
}
