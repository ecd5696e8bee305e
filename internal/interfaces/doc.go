// Package interfaces documents the seams between the layers of the
// application and holds their compile-time checks.
//
// # Interface Categories
//
// ## Resource Layer Interfaces
//
//   - Auditor: records the outcome of each mutation (internal/http/config.go)
//   - AuditReader: serves the audit trail (internal/http/config.go)
//   - Pinger: database reachability for /health (internal/http/health.go)
//
// ## Model Interfaces
//
//   - Keyed: a client document that names its own business key
//     (internal/models/doc.go). PUT compares it with the path.
//
// ## Background Work Interfaces
//
//   - AuditTrailPruner: drops aged audit history (internal/tasks/prune_audit.go)
//   - HuskPurger: removes aged soft-deleted rows (internal/tasks/purge_deleted.go)
//   - PurgeRecorder: audits a purge run (internal/tasks/purge_deleted.go)
//   - Enqueuer: accepts tasks from the scheduler (internal/scheduler/maintenance.go)
//
// # Adding a New Resource
//
// To add a resource (e.g., reading goals):
//
//  1. Add the entity in internal/entities/ and list it in Database.Migrate.
//
//  2. Add the client and read models in internal/models/. The client model
//     implements Keyed when the resource supports PUT.
//
//  3. Create a repository sub-package in internal/database/ built on the
//     request transaction:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  4. Add a controller in internal/http/ using inTx and editFlow, and
//     register its routes in router.go.
//
//  5. Add compile-time checks to checks.go.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for examples.
package interfaces
