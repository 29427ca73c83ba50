package models

import (
	"time"
)

// CacheEntry is a row of the database-backed cache used when Redis is off.
// It holds module trees, rate-limit counters and similar short-lived values.
type CacheEntry struct {
	Key       string    `gorm:"primaryKey;size:256"`
	Value     []byte    `gorm:"type:blob"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the entry's TTL elapsed before now. Entries
// without an expiry never expire.
func (e CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}
