// Package comments provides database operations for comments. Comments are
// addressed by a random 64-bit UUID and may belong to a review discussion.
package comments

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/database"
	"github.com/mrlokans/bookclub/internal/database/reviews"
	"github.com/mrlokans/bookclub/internal/entities"
	domainerrors "github.com/mrlokans/bookclub/internal/errors"
	"github.com/mrlokans/bookclub/internal/models"
)

// Repository handles all comment database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new comments repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the comment, attaching it to the referenced review when
// there is one, and returns its UUID.
func (r *Repository) Create(comment models.NewComment) (int64, error) {
	user, err := database.FindUser(r.db, comment.User)
	if err != nil {
		return 0, err
	}

	var review *entities.Review
	if comment.Review != nil {
		review, err = reviews.Find(r.db, comment.Review.User, comment.Review.Book)
		if err != nil {
			return 0, err
		}
	}

	record := entities.Comment{
		UUID:    newUUID(),
		UserID:  &user.ID,
		Content: comment.Content,
	}
	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		if review == nil {
			return nil
		}
		return tx.Create(&entities.ReviewComment{ReviewID: review.ID, CommentID: record.ID}).Error
	})
	if err != nil {
		return 0, database.TranslateError(err)
	}
	return record.UUID, nil
}

// Update diffs the content of a comment. Author and UUID never change.
func (r *Repository) Update(id int64, comment models.NewComment) (bool, error) {
	record, err := database.FindComment(r.db, id)
	if err != nil {
		return false, err
	}

	changes := database.Changes{}
	database.Set(changes, "content", record.Content, comment.Content)
	return changes.Apply(r.db, record)
}

func (r *Repository) Get(id int64) (*models.Comment, error) {
	record, err := database.FindComment(r.db, id)
	if err != nil {
		return nil, err
	}
	if record.UserID != nil {
		var author entities.User
		res := r.db.Limit(1).Find(&author, *record.UserID)
		if res.Error != nil {
			return nil, database.TranslateError(res.Error)
		}
		if res.RowsAffected > 0 {
			record.User = &author
		}
	}
	comment := commentModel(record)
	return &comment, nil
}

// ListForReview returns the visible comments in a review's discussion,
// oldest first.
func (r *Repository) ListForReview(username, handle string) ([]models.Comment, error) {
	review, err := reviews.Find(r.db, username, handle)
	if err != nil {
		return nil, err
	}

	var records []entities.Comment
	err = r.db.Preload("User").
		Joins("JOIN review_comment_link AS rc ON rc.comment_id = comments.id").
		Where("rc.review_id = ? AND comments.deleted = ?", review.ID, false).
		Order("comments.id").
		Find(&records).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}

	result := make([]models.Comment, 0, len(records))
	for i := range records {
		result = append(result, commentModel(&records[i]))
	}
	return result, nil
}

// Delete soft-deletes the comment, or removes it when hard is set.
func (r *Repository) Delete(id int64, hard bool) error {
	var opts []database.LookupOption
	if hard {
		opts = append(opts, database.IncludeDeleted())
	}

	record, err := database.FindComment(r.db, id, opts...)
	if err != nil {
		if hard && errors.Is(err, domainerrors.ErrNotFound) {
			return nil
		}
		return err
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		if hard {
			return tx.Delete(record).Error
		}
		return tx.Model(record).Update("deleted", true).Error
	})
	return database.TranslateError(err)
}

func commentModel(record *entities.Comment) models.Comment {
	return models.Comment{
		UUID:    record.UUID,
		User:    database.OwnerLabel(record.User, false),
		Content: record.Content,
	}
}

// newUUID takes 63 random bits from a v4 UUID so the value stays positive.
func newUUID() int64 {
	id := uuid.New()
	return int64(binary.BigEndian.Uint64(id[:8]) & math.MaxInt64)
}
