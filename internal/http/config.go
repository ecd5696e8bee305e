package http

import (
	"log/slog"

	"github.com/mrlokans/bookclub/internal/database"
	"github.com/mrlokans/bookclub/internal/entities"
)

// Auditor records changes made through the API.
type Auditor interface {
	LogChange(eventType entities.AuditEventType, entityType, key, requestID string, err error)
}

// AuditReader serves the audit trail.
type AuditReader interface {
	GetEvents(entityType string, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEntityHistory(entityType, key string) ([]entities.AuditEvent, error)
}

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	Database *database.Database
	Logger   *slog.Logger

	// Audit trail (optional). When AuditReader is nil the /audit routes are
	// not registered.
	Auditor     Auditor
	AuditReader AuditReader

	// BcryptCost is the cost used to hash user passwords. Zero keeps the
	// bcrypt default.
	BcryptCost int

	// Application info
	Version string
}
