package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/dairyadmin/internal/models"
)

// EntityCount tallies one entity by status.
type EntityCount struct {
	Entity   string `json:"entity"`
	Total    int64  `json:"total"`
	Active   int64  `json:"active"`
	Inactive int64  `json:"inactive"`
}

// Summary is the dashboard report.
type Summary struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Entities    []EntityCount `json:"entities"`
}

// Count returns the tally for entity, or a zero value when it is not part of the summary.
func (s Summary) Count(entity string) EntityCount {
	for _, count := range s.Entities {
		if count.Entity == entity {
			return count
		}
	}
	return EntityCount{Entity: entity}
}

var summaryEntities = []struct {
	name  string
	model any
}{
	{"categories", &models.Category{}},
	{"roles", &models.Role{}},
	{"users", &models.User{}},
	{"hierarchies", &models.ApprovalHierarchy{}},
	{"assignments", &models.AssignedPermission{}},
	{"banks", &models.Bank{}},
	{"villages", &models.Village{}},
	{"mccs", &models.MCC{}},
	{"mpps", &models.MPP{}},
}

// ReportService produces read-only aggregate reports.
type ReportService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewReportService constructs a ReportService.
func NewReportService(db *gorm.DB) (*ReportService, error) {
	if db == nil {
		return nil, errors.New("report service: db is required")
	}
	return &ReportService{db: db, now: time.Now}, nil
}

// Summary counts every master entity per status.
func (s *ReportService) Summary(ctx context.Context) (*Summary, error) {
	ctx = ensureContext(ctx)

	out := &Summary{GeneratedAt: s.now().UTC(), Entities: make([]EntityCount, 0, len(summaryEntities))}
	for _, entity := range summaryEntities {
		var rows []struct {
			Status bool
			Total  int64
		}
		err := s.db.WithContext(ctx).
			Model(entity.model).
			Select("status, COUNT(*) AS total").
			Group("status").
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("report service: count %s: %w", entity.name, err)
		}

		count := EntityCount{Entity: entity.name}
		for _, row := range rows {
			count.Total += row.Total
			if row.Status {
				count.Active += row.Total
			} else {
				count.Inactive += row.Total
			}
		}
		out.Entities = append(out.Entities, count)
	}
	return out, nil
}
