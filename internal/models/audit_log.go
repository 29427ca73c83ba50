package models

import "time"

// AuditLog captures a single mutation performed through the admin API.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	Action    string    `gorm:"size:64;index;not null" json:"action"`
	Resource  string    `gorm:"size:128;index" json:"resource"`
	Result    string    `gorm:"size:16;not null" json:"result"`
	IPAddress string    `gorm:"size:64" json:"ip_address"`
	Metadata  string    `gorm:"type:text" json:"metadata"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
