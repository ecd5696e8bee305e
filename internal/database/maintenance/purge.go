// Package maintenance removes husks: rows that were soft-deleted long enough
// ago that nothing should need them. Purging a husk frees its business key.
package maintenance

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/entities"
)

// PurgeResult counts the rows removed per table.
type PurgeResult struct {
	Comments int64
	Reviews  int64
	Clubs    int64
	Books    int64
	Users    int64
}

// Total returns the number of rows removed across all tables.
func (r PurgeResult) Total() int64 {
	return r.Comments + r.Reviews + r.Clubs + r.Books + r.Users
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// PurgeDeleted hard-deletes every soft-deleted row last touched before
// olderThan. Dependents go first so that cascades do not skew the counts.
func (r *Repository) PurgeDeleted(olderThan time.Time) (PurgeResult, error) {
	var result PurgeResult
	steps := []struct {
		name  string
		model any
		count *int64
	}{
		{"comments", &entities.Comment{}, &result.Comments},
		{"reviews", &entities.Review{}, &result.Reviews},
		{"clubs", &entities.Club{}, &result.Clubs},
		{"books", &entities.Book{}, &result.Books},
		{"users", &entities.User{}, &result.Users},
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, step := range steps {
			res := tx.Where("deleted = ? AND updated_at < ?", true, olderThan).Delete(step.model)
			if res.Error != nil {
				return fmt.Errorf("purge %s: %w", step.name, res.Error)
			}
			*step.count = res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return PurgeResult{}, err
	}
	return result, nil
}
