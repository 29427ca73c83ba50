package permissions

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/dairyadmin/internal/models"
)

// Sync persists registered modules to the modules table, upserting by route.
// Modules created through the API are left untouched.
func Sync(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("module sync: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ordered := Ordered()
	if len(ordered) == 0 {
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make(map[string]uint, len(ordered))
		for _, mod := range ordered {
			record := models.Module{
				Name:      mod.Name,
				Route:     mod.Route,
				SortOrder: mod.SortOrder,
				Status:    true,
			}
			if mod.Parent != "" {
				parentID, ok := ids[mod.Parent]
				if !ok {
					return fmt.Errorf("module sync: parent %s of %s not synced", mod.Parent, mod.Route)
				}
				record.ParentID = &parentID
			}

			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "route"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "parent_id", "sort_order", "updated_at"}),
			}).Create(&record).Error; err != nil {
				return fmt.Errorf("module sync: %s: %w", mod.Route, err)
			}

			// ID is not populated on the conflict path for every dialect.
			var stored models.Module
			if err := tx.Select("id").Take(&stored, "route = ?", mod.Route).Error; err != nil {
				return fmt.Errorf("module sync: reload %s: %w", mod.Route, err)
			}
			ids[mod.Route] = stored.ID
		}
		return nil
	})
}
