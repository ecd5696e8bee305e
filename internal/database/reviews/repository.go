// Package reviews provides database operations for book reviews. A review is
// addressed by its author and book; neither can change after creation.
package reviews

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/database"
	"github.com/mrlokans/bookclub/internal/entities"
	domainerrors "github.com/mrlokans/bookclub/internal/errors"
	"github.com/mrlokans/bookclub/internal/models"
)

// Repository handles all review database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reviews repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the review and marks the author's reading record, if any,
// as reviewed. A soft-deleted review still occupies its (user, book) slot.
func (r *Repository) Create(review models.NewReview) error {
	user, err := database.FindUser(r.db, review.User)
	if err != nil {
		return err
	}
	book, err := database.FindBook(r.db, review.Book)
	if err != nil {
		return err
	}

	var count int64
	err = r.db.Model(&entities.Review{}).Where("user_id = ? AND book_id = ?", user.ID, book.ID).Count(&count).Error
	if err != nil {
		return database.TranslateError(err)
	}
	if count != 0 {
		return domainerrors.AlreadyExistsf("Review by %s for %s already exists", review.User, review.Book)
	}

	record := entities.Review{
		UserID:  &user.ID,
		BookID:  book.ID,
		Stars:   review.Stars,
		Title:   review.Title,
		Content: review.Content,
	}
	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return tx.Model(&entities.UserBook{}).
			Where("user_id = ? AND book_id = ?", user.ID, book.ID).
			Update("reviewed", true).Error
	})
	return database.TranslateError(err)
}

// Update diffs the rating fields of the review written by review.User for
// review.Book.
func (r *Repository) Update(review models.NewReview) (bool, error) {
	record, err := r.find(review.User, review.Book, false)
	if err != nil {
		return false, err
	}

	changes := database.Changes{}
	database.Set(changes, "stars", record.Stars, review.Stars)
	database.Set(changes, "title", record.Title, review.Title)
	database.SetOptional(changes, "content", record.Content, review.Content)
	return changes.Apply(r.db, record)
}

func (r *Repository) Get(username, handle string) (*models.Review, error) {
	record, err := r.find(username, handle, false)
	if err != nil {
		return nil, err
	}
	review := reviewModel(record, username, handle)
	return &review, nil
}

// ListForBook returns the visible reviews of a book, oldest first. Reviews
// whose author was soft-deleted show the "deleted" label.
func (r *Repository) ListForBook(handle string) ([]models.Review, error) {
	book, err := database.FindBook(r.db, handle)
	if err != nil {
		return nil, err
	}

	var records []entities.Review
	err = r.db.Preload("User").Where("book_id = ? AND deleted = ?", book.ID, false).Order("id").Find(&records).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}

	result := make([]models.Review, 0, len(records))
	for i := range records {
		var author string
		if label := database.OwnerLabel(records[i].User, false); label != nil {
			author = *label
		}
		result = append(result, reviewModel(&records[i], author, handle))
	}
	return result, nil
}

// Delete soft-deletes the review, or removes it and its discussion links
// when hard is set.
func (r *Repository) Delete(username, handle string, hard bool) error {
	record, err := r.find(username, handle, hard)
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

// Find resolves a visible review to its record. Comments use it to attach
// to a discussion.
func Find(tx *gorm.DB, username, handle string) (*entities.Review, error) {
	return NewRepository(tx).find(username, handle, false)
}

func (r *Repository) find(username, handle string, includeDeleted bool) (*entities.Review, error) {
	var opts []database.LookupOption
	if includeDeleted {
		opts = append(opts, database.IncludeDeleted())
	}

	user, err := database.FindUser(r.db, username, opts...)
	if err != nil {
		return nil, err
	}
	book, err := database.FindBook(r.db, handle, opts...)
	if err != nil {
		return nil, err
	}

	var record entities.Review
	res := r.db.Where("user_id = ? AND book_id = ?", user.ID, book.ID).Limit(1).Find(&record)
	if res.Error != nil {
		return nil, database.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domainerrors.NotFoundf("Review not found: %s/%s", handle, username)
	}
	if record.Deleted && !includeDeleted {
		return nil, domainerrors.NotFoundf("Review deleted: %s/%s", handle, username)
	}
	return &record, nil
}

func reviewModel(record *entities.Review, username, handle string) models.Review {
	return models.Review{
		User:    username,
		Book:    handle,
		Stars:   record.Stars,
		Title:   record.Title,
		Content: record.Content,
	}
}
