package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/dairyadmin/internal/models"
)

var errDatabaseStoreUnset = errors.New("cache: database store not initialised")

// DatabaseStore keeps cache entries in the cache_entries table. The server
// uses it when Redis is disabled or unreachable.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore returns nil for a nil handle so callers can treat the cache as absent.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	if db == nil {
		return nil
	}
	return &DatabaseStore{db: db}
}

func (s *DatabaseStore) session(ctx context.Context) (*gorm.DB, error) {
	if s == nil || s.db == nil {
		return nil, errDatabaseStoreUnset
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return s.db.WithContext(ctx), nil
}

func upsertEntry(db *gorm.DB, entry *models.CacheEntry) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(entry).Error
}

// IncrementWithTTL bumps the counter under key and restarts its window.
// An expired counter starts again from one.
func (s *DatabaseStore) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	db, err := s.session(ctx)
	if err != nil {
		return 0, 0, err
	}
	if window <= 0 {
		window = time.Minute
	}

	now := time.Now()
	count := int64(1)
	err = db.Transaction(func(tx *gorm.DB) error {
		var current models.CacheEntry
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Take(&current, "key = ?", key).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return err
		case !current.Expired(now):
			previous, _ := strconv.ParseInt(string(current.Value), 10, 64)
			count = previous + 1
		}
		return upsertEntry(tx, &models.CacheEntry{
			Key:       key,
			Value:     []byte(strconv.FormatInt(count, 10)),
			ExpiresAt: now.Add(window),
		})
	})
	if err != nil {
		return 0, 0, err
	}
	return count, window, nil
}

// Set stores value under key. A non-positive ttl keeps the entry until deleted.
func (s *DatabaseStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	db, err := s.session(ctx)
	if err != nil {
		return err
	}
	entry := models.CacheEntry{Key: key, Value: value}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}
	return upsertEntry(db, &entry)
}

// Get returns the live value under key. Expired entries are dropped on read.
func (s *DatabaseStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	db, err := s.session(ctx)
	if err != nil {
		return nil, false, err
	}

	var entry models.CacheEntry
	err = db.Take(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if entry.Expired(time.Now()) {
		_ = s.Delete(ctx, key)
		return nil, false, nil
	}
	return entry.Value, true, nil
}

// PurgeExpired removes entries whose TTL has elapsed and reports how many were deleted.
func (s *DatabaseStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	db, err := s.session(ctx)
	if err != nil {
		return 0, err
	}
	result := db.Where("expires_at > ? AND expires_at < ?", time.Time{}, now).Delete(&models.CacheEntry{})
	return result.RowsAffected, result.Error
}

// Delete removes keys from the store.
func (s *DatabaseStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	db, err := s.session(ctx)
	if err != nil {
		return err
	}
	return db.Where("key IN ?", keys).Delete(&models.CacheEntry{}).Error
}
