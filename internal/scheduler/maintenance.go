// Package scheduler runs periodic maintenance: audit trail pruning and the
// purge of long soft-deleted records. Jobs only enqueue tasks; the task queue
// does the work and handles retries.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/bookclub/internal/tasks"
)

// Enqueuer accepts background tasks.
type Enqueuer interface {
	Enqueue(tasks ...backlite.Task) error
}

// MaintenanceConfig controls what runs and when.
type MaintenanceConfig struct {
	// Schedule is a five-field cron expression.
	Schedule            string
	AuditRetentionDays  int
	PurgeRetentionHours int
	PurgeEnabled        bool
}

// ValidateCronSchedule reports whether schedule is a valid five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := parser().Parse(schedule)
	return err
}

func parser() cron.Parser {
	return cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
}

// MaintenanceScheduler enqueues maintenance tasks on a cron schedule.
type MaintenanceScheduler struct {
	queue  Enqueuer
	config MaintenanceConfig
	log    *slog.Logger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewMaintenanceScheduler(queue Enqueuer, cfg MaintenanceConfig, log *slog.Logger) *MaintenanceScheduler {
	if log == nil {
		log = slog.Default()
	}
	return &MaintenanceScheduler{
		queue:  queue,
		config: cfg,
		log:    log.With("component", "scheduler"),
	}
}

// Start schedules the maintenance job. It stops when ctx is cancelled.
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.Schedule, err)
	}

	s.cron = cron.New(cron.WithParser(parser()))
	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		if err := s.RunNow(); err != nil {
			s.log.Error("maintenance run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule maintenance job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	s.log.Info("maintenance scheduler started",
		"schedule", s.config.Schedule,
		"next_run", s.cron.Entry(entryID).Next,
		"purge_enabled", s.config.PurgeEnabled,
	)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job to finish and stops the scheduler.
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	s.log.Info("maintenance scheduler stopped")
}

// RunNow enqueues the maintenance tasks immediately.
func (s *MaintenanceScheduler) RunNow() error {
	jobs := []backlite.Task{
		tasks.PruneAuditTrailTask{RetentionDays: s.config.AuditRetentionDays},
	}
	if s.config.PurgeEnabled {
		jobs = append(jobs, tasks.PurgeDeletedTask{RetentionHours: s.config.PurgeRetentionHours})
	}

	if err := s.queue.Enqueue(jobs...); err != nil {
		return err
	}
	s.log.Debug("maintenance tasks enqueued", "count", len(jobs))
	return nil
}

// IsRunning returns whether the scheduler is active.
func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the job fires next, or nil when stopped.
func (s *MaintenanceScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	return &next
}
