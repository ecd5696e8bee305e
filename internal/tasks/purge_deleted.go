package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookclub/internal/database/maintenance"
)

// HuskPurger hard-deletes soft-deleted rows last updated before a cutoff.
type HuskPurger interface {
	PurgeDeleted(olderThan time.Time) (maintenance.PurgeResult, error)
}

// PurgeRecorder receives the outcome of a purge run.
type PurgeRecorder interface {
	LogPurge(removed int64, olderThan time.Time, err error)
}

// PurgeDeletedTask removes husks older than RetentionHours.
type PurgeDeletedTask struct {
	RetentionHours int `json:"retention_hours"`
}

// Config returns the queue configuration for husk purge tasks.
func (t PurgeDeletedTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "purge_deleted",
		MaxAttempts: 3,
		Backoff:     10 * time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PurgeDeletedProcessor creates a processor function for PurgeDeletedTask.
// recorder may be nil.
func PurgeDeletedProcessor(purger HuskPurger, recorder PurgeRecorder, log *slog.Logger) backlite.QueueProcessor[PurgeDeletedTask] {
	return func(ctx context.Context, task PurgeDeletedTask) error {
		if purger == nil {
			return fmt.Errorf("husk purger not configured")
		}

		hours := task.RetentionHours
		if hours <= 0 {
			hours = 24 * 30
		}
		cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)

		result, err := purger.PurgeDeleted(cutoff)
		if recorder != nil {
			recorder.LogPurge(result.Total(), cutoff, err)
		}
		if err != nil {
			return fmt.Errorf("purge deleted records: %w", err)
		}

		log.Info("purged deleted records",
			"comments", result.Comments,
			"reviews", result.Reviews,
			"clubs", result.Clubs,
			"books", result.Books,
			"users", result.Users,
			"older_than", cutoff.Format(time.RFC3339),
		)
		return nil
	}
}

// NewPurgeDeletedQueue creates a backlite queue for husk purge tasks.
func NewPurgeDeletedQueue(purger HuskPurger, recorder PurgeRecorder, log *slog.Logger) backlite.Queue {
	return backlite.NewQueue(PurgeDeletedProcessor(purger, recorder, log))
}
