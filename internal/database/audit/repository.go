// Package audit stores the audit trail of changes made through the API.
package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LogEvent saves an audit event to the database.
func (r *Repository) LogEvent(event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.Create(event).Error
}

// GetEvents retrieves paginated audit events, most recent first. An empty
// entityType returns events for every kind of resource.
func (r *Repository) GetEvents(entityType string, limit, offset int) ([]entities.AuditEvent, int64, error) {
	var events []entities.AuditEvent
	var total int64

	query := r.db.Model(&entities.AuditEvent{})
	if entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&events).Error
	return events, total, err
}

// GetEntityHistory returns every event recorded for one resource, oldest first.
func (r *Repository) GetEntityHistory(entityType, key string) ([]entities.AuditEvent, error) {
	var events []entities.AuditEvent
	err := r.db.Where("entity_type = ? AND entity_key = ?", entityType, key).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	return events, err
}

// MaintenanceEntity labels events that describe no single resource, such as
// purge runs.
const MaintenanceEntity = "maintenance"

// PruneCounts holds the number of pruned events per entity type.
type PruneCounts map[string]int64

func (c PruneCounts) Total() int64 {
	var total int64
	for _, n := range c {
		total += n
	}
	return total
}

// PruneEvents removes events recorded before olderThan. The counts are taken
// in the same transaction as the delete so they match what was removed.
func (r *Repository) PruneEvents(olderThan time.Time) (PruneCounts, error) {
	counts := PruneCounts{}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var rows []struct {
			EntityType string
			Removed    int64
		}
		err := tx.Model(&entities.AuditEvent{}).
			Select("entity_type, COUNT(*) AS removed").
			Where("created_at < ?", olderThan).
			Group("entity_type").
			Scan(&rows).Error
		if err != nil {
			return err
		}
		for _, row := range rows {
			kind := row.EntityType
			if kind == "" {
				kind = MaintenanceEntity
			}
			counts[kind] += row.Removed
		}
		return tx.Where("created_at < ?", olderThan).Delete(&entities.AuditEvent{}).Error
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
