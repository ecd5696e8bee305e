// Package database provides the data access layer for the book club.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection pool, migrations, the statistics view
//	├── lookup.go        # Key lookups that honour soft deletion
//	├── changes.go       # Field diffs for create-or-replace updates
//	├── users/           # Users and password hashes
//	├── books/           # Books, with reading records and statistics
//	├── clubs/           # Clubs, members and reading lists
//	├── reviews/         # One review per user and book
//	├── comments/        # Comments and review discussions
//	├── userbooks/       # Reading records
//	├── audit/           # Audit events
//	└── maintenance/     # Purging aged soft-deleted rows
//
// # Transactions
//
// Every request runs inside Database.Tx. Repositories are built on the
// transaction handle and nest their own writes as savepoints, so a failed
// step never leaves partial state behind:
//
//	err := db.Tx(ctx, func(tx *gorm.DB) error {
//		_, err := books.NewRepository(tx).Create(models.NewBook{Handle: "dune", FullName: "Dune"})
//		return err
//	})
//
// # Soft Deletion
//
// Users, books, clubs, reviews and comments carry a deleted flag. The Find*
// helpers treat a flagged row as NotFound; only hard deletion and
// administrative paths pass IncludeDeleted. A flagged row still holds its
// key, so the key cannot be reused until the row is purged.
package database
