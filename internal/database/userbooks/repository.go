// Package userbooks provides database operations for reading records, the
// per-user relation between a user and a book. There is at most one record
// per (user, book) pair.
//
// # Usage
//
//	repo := userbooks.NewRepository(tx)
//	view, err := repo.Store(models.NewUserBook{User: "alice", Handle: "dune"}, false)
package userbooks

import (
	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/database"
	"github.com/mrlokans/bookclub/internal/entities"
	domainerrors "github.com/mrlokans/bookclub/internal/errors"
	"github.com/mrlokans/bookclub/internal/models"
)

// Repository handles all reading record database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reading records repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Store creates the reading record for (user, book). An existing record is
// an error unless overwrite is set, in which case the provided fields are
// written over it. The result merges the record with its book and username.
func (r *Repository) Store(record models.NewUserBook, overwrite bool) (*models.BookView, error) {
	user, err := database.FindUser(r.db, record.User)
	if err != nil {
		return nil, err
	}
	book, err := database.FindBook(r.db, record.Handle)
	if err != nil {
		return nil, err
	}

	existing, found, err := r.find(user.ID, book.ID)
	if err != nil {
		return nil, err
	}
	if found && !overwrite {
		return nil, domainerrors.AlreadyExistsf("User %s already has a record for %s", record.User, record.Handle)
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		if found {
			updates := fields(record)
			if len(updates) == 0 {
				return nil
			}
			return tx.Model(existing).Updates(updates).Error
		}
		return tx.Create(newRecord(user.ID, book.ID, record)).Error
	})
	if err != nil {
		return nil, database.TranslateError(err)
	}

	stored, _, err := r.find(user.ID, book.ID)
	if err != nil {
		return nil, err
	}
	return &models.BookView{
		Book:           database.BookModel(book),
		UserBookFields: database.UserBookFields(stored, user.Username),
	}, nil
}

// Get returns the reading record of user for book merged with the book.
func (r *Repository) Get(username, handle string) (*models.BookView, error) {
	user, book, record, err := r.resolve(username, handle)
	if err != nil {
		return nil, err
	}
	return &models.BookView{
		Book:           database.BookModel(book),
		UserBookFields: database.UserBookFields(record, user.Username),
	}, nil
}

// SetIgnored flips the ignored flag of the reading record of user for book.
func (r *Repository) SetIgnored(username, handle string, ignored bool) error {
	_, _, record, err := r.resolve(username, handle)
	if err != nil {
		return err
	}
	err = r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(record).Update("ignored", ignored).Error
	})
	return database.TranslateError(err)
}

// SetIgnoredFor is SetIgnored for a record already returned by Store or Get.
func (r *Repository) SetIgnoredFor(view *models.BookView, ignored bool) error {
	if view == nil || view.UserBookFields == nil {
		return domainerrors.Validation("reading record has no user")
	}
	return r.SetIgnored(view.User, view.Handle, ignored)
}

// ListForUser returns the user's reading records that are not ignored and
// whose book is visible, ordered by book handle.
func (r *Repository) ListForUser(username string) ([]models.BookView, error) {
	user, err := database.FindUser(r.db, username)
	if err != nil {
		return nil, err
	}

	var records []entities.UserBook
	err = r.db.Preload("Book").
		Joins("JOIN books AS b ON b.id = user_books.book_id").
		Where("user_books.user_id = ? AND user_books.ignored = ? AND b.deleted = ?", user.ID, false, false).
		Order("b.handle").
		Find(&records).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}

	result := make([]models.BookView, 0, len(records))
	for i := range records {
		result = append(result, models.BookView{
			Book:           database.BookModel(records[i].Book),
			UserBookFields: database.UserBookFields(&records[i], user.Username),
		})
	}
	return result, nil
}

func (r *Repository) resolve(username, handle string) (*entities.User, *entities.Book, *entities.UserBook, error) {
	user, err := database.FindUser(r.db, username)
	if err != nil {
		return nil, nil, nil, err
	}
	book, err := database.FindBook(r.db, handle)
	if err != nil {
		return nil, nil, nil, err
	}
	record, found, err := r.find(user.ID, book.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	if !found {
		return nil, nil, nil, domainerrors.NotFoundf("User %s has no record for %s", username, handle)
	}
	return user, book, record, nil
}

func (r *Repository) find(userID, bookID uint) (*entities.UserBook, bool, error) {
	var record entities.UserBook
	res := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).Limit(1).Find(&record)
	if res.Error != nil {
		return nil, false, database.TranslateError(res.Error)
	}
	return &record, res.RowsAffected > 0, nil
}

func newRecord(userID, bookID uint, in models.NewUserBook) *entities.UserBook {
	record := &entities.UserBook{
		UserID:      userID,
		BookID:      bookID,
		Liked:       in.Liked,
		CurrentPage: in.CurrentPage,
	}
	if in.ReadingStatus != nil {
		status := entities.ReadingStatus(*in.ReadingStatus)
		record.ReadingStatus = &status
	}
	if in.Reviewed != nil {
		record.Reviewed = *in.Reviewed
	}
	if in.Ignored != nil {
		record.Ignored = *in.Ignored
	}
	return record
}

// fields returns the columns provided in the input.
func fields(in models.NewUserBook) map[string]any {
	updates := map[string]any{}
	if in.ReadingStatus != nil {
		updates["reading_status"] = *in.ReadingStatus
	}
	if in.Reviewed != nil {
		updates["reviewed"] = *in.Reviewed
	}
	if in.Ignored != nil {
		updates["ignored"] = *in.Ignored
	}
	if in.Liked != nil {
		updates["liked"] = *in.Liked
	}
	if in.CurrentPage != nil {
		updates["current_page"] = *in.CurrentPage
	}
	return updates
}
