package audit

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mrlokans/bookclub/internal/database/audit"
	"github.com/mrlokans/bookclub/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
	log  *slog.Logger
	wg   sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, log: log}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(event); err != nil {
			s.log.Error("failed to log audit event", "action", event.Action, "error", err)
		}
	}()
}

// Wait blocks until every pending LogAsync write has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// LogChange records a change to one resource. A non-nil err marks the event
// as failed.
func (s *Service) LogChange(eventType entities.AuditEventType, entityType, key, requestID string, err error) {
	event := &entities.AuditEvent{
		EventType:   eventType,
		Action:      entityType + "_" + string(eventType),
		Description: describe(eventType, entityType, key),
		EntityType:  entityType,
		EntityKey:   truncate(key, 128),
		RequestID:   requestID,
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogPurge records a maintenance purge of soft-deleted rows.
func (s *Service) LogPurge(removed int64, olderThan time.Time, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventPurge,
		Action:      "purge_deleted",
		Description: fmt.Sprintf("Purged %d soft-deleted rows older than %s", removed, olderThan.Format(time.RFC3339)),
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(entityType string, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(entityType, limit, offset)
}

// GetEntityHistory retrieves the events recorded for one resource.
func (s *Service) GetEntityHistory(entityType, key string) ([]entities.AuditEvent, error) {
	return s.repo.GetEntityHistory(entityType, key)
}

// PruneEvents removes events older than retention, counted per entity type.
func (s *Service) PruneEvents(retention time.Duration) (audit.PruneCounts, error) {
	return s.repo.PruneEvents(time.Now().Add(-retention))
}

func describe(eventType entities.AuditEventType, entityType, key string) string {
	verb := map[entities.AuditEventType]string{
		entities.AuditEventCreate:  "Created",
		entities.AuditEventUpdate:  "Updated",
		entities.AuditEventDelete:  "Deleted",
		entities.AuditEventRestore: "Restored",
	}[eventType]
	if verb == "" {
		verb = string(eventType)
	}
	return truncate(verb+" "+entityType+" "+key, 500)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
