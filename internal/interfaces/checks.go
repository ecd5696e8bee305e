package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookclub/internal/audit"
	"github.com/mrlokans/bookclub/internal/database"
	"github.com/mrlokans/bookclub/internal/database/maintenance"
	"github.com/mrlokans/bookclub/internal/http"
	"github.com/mrlokans/bookclub/internal/models"
	"github.com/mrlokans/bookclub/internal/scheduler"
	"github.com/mrlokans/bookclub/internal/tasks"
)

// =============================================================================
// Resource Layer
// =============================================================================

// Auditor and AuditReader implementations
var _ http.Auditor = (*audit.Service)(nil)
var _ http.AuditReader = (*audit.Service)(nil)

// Pinger implementations
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Models
// =============================================================================

// Keyed implementations, required by the create-or-replace flow
var _ models.Keyed = models.NewUser{}
var _ models.Keyed = models.NewBook{}
var _ models.Keyed = models.NewClub{}
var _ models.Keyed = models.NewReview{}
var _ models.Keyed = models.NewUserBook{}

// =============================================================================
// Background Work
// =============================================================================

// Task processors
var _ tasks.AuditTrailPruner = (*audit.Service)(nil)
var _ tasks.HuskPurger = (*maintenance.Repository)(nil)
var _ tasks.PurgeRecorder = (*audit.Service)(nil)

// Enqueuer implementations
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
