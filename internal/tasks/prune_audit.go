package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookclub/internal/database/audit"
)

// DefaultAuditRetentionDays applies when a task carries no retention.
const DefaultAuditRetentionDays = 30

// AuditTrailPruner removes audit events older than a retention window.
type AuditTrailPruner interface {
	PruneEvents(retention time.Duration) (audit.PruneCounts, error)
}

// PruneAuditTrailTask drops audit history for users, books, clubs, reviews
// and comments once it is older than RetentionDays. Purge run records go too.
type PruneAuditTrailTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for audit trail pruning.
func (t PruneAuditTrailTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "prune_audit_trail",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PruneAuditTrailProcessor creates a processor function for PruneAuditTrailTask.
// It logs one line per entity type that lost history, then the total.
func PruneAuditTrailProcessor(pruner AuditTrailPruner, log *slog.Logger) backlite.QueueProcessor[PruneAuditTrailTask] {
	return func(ctx context.Context, task PruneAuditTrailTask) error {
		if pruner == nil {
			return fmt.Errorf("audit trail pruner not configured")
		}

		days := task.RetentionDays
		if days <= 0 {
			days = DefaultAuditRetentionDays
		}

		counts, err := pruner.PruneEvents(time.Duration(days) * 24 * time.Hour)
		if err != nil {
			return fmt.Errorf("prune audit trail: %w", err)
		}

		kinds := make([]string, 0, len(counts))
		for kind := range counts {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			log.Debug("pruned audit history", "entity_type", kind, "removed", counts[kind])
		}

		log.Info("pruned audit trail", "removed", counts.Total(), "entity_types", len(kinds), "retention_days", days)
		return nil
	}
}

// NewPruneAuditTrailQueue creates a backlite queue for audit trail pruning.
func NewPruneAuditTrailQueue(pruner AuditTrailPruner, log *slog.Logger) backlite.Queue {
	return backlite.NewQueue(PruneAuditTrailProcessor(pruner, log))
}
