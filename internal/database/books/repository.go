// Package books provides database operations for books, including the
// multi-shape getter that joins a user's reading record and the book's
// statistics.
//
// # Usage
//
//	repo := books.NewRepository(tx)
//	view, err := repo.Get("dune", books.Query{Stats: true, User: "alice"})
package books

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/database"
	"github.com/mrlokans/bookclub/internal/entities"
	domainerrors "github.com/mrlokans/bookclub/internal/errors"
	"github.com/mrlokans/bookclub/internal/models"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository. db is normally the request
// transaction.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Query selects the shape returned by Get. The zero value is the plain book.
type Query struct {
	Stats bool
	User  string
}

// Create inserts a book and returns its handle.
func (r *Repository) Create(book models.NewBook) (string, error) {
	if err := database.CheckKeyAvailable(r.db, &entities.Book{}, book.Handle); err != nil {
		return "", err
	}

	record := entities.Book{
		Handle:      book.Handle,
		FullName:    book.FullName,
		Description: book.Description,
		Pages:       book.Pages,
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&record).Error
	})
	if err != nil {
		return "", database.TranslateError(err)
	}
	return record.Handle, nil
}

// Update diffs book against the record stored under handle and writes only
// changed columns. A rename is checked against every existing handle first.
func (r *Repository) Update(handle string, book models.NewBook) (bool, error) {
	if book.Handle != handle {
		if err := database.CheckKeyAvailable(r.db, &entities.Book{}, book.Handle); err != nil {
			return false, err
		}
	}

	record, err := database.FindBook(r.db, handle)
	if err != nil {
		return false, err
	}

	changes := database.Changes{}
	database.Set(changes, "handle", record.Handle, book.Handle)
	database.Set(changes, "full_name", record.FullName, book.FullName)
	database.SetOptional(changes, "description", record.Description, book.Description)
	database.SetOptional(changes, "pages", record.Pages, book.Pages)
	return changes.Apply(r.db, record)
}

// Get returns the book in the shape selected by q. Soft-deleted books are
// invisible in every shape. With a user the book must have a reading record
// for that user.
func (r *Repository) Get(handle string, q Query) (*models.BookView, error) {
	if _, err := database.FindBook(r.db, handle); err != nil {
		return nil, err
	}
	if q.User != "" {
		if _, err := database.FindUser(r.db, q.User); err != nil {
			return nil, err
		}
	}

	var row bookRow
	res := r.query(q).Where("b.handle = ? AND b.deleted = ?", handle, false).Limit(1).Scan(&row)
	if res.Error != nil {
		return nil, database.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domainerrors.NotFoundf("Failed to find data for book %s", handle)
	}
	return row.view(q), nil
}

// List returns every visible book ordered by creation.
func (r *Repository) List() ([]models.Book, error) {
	var records []entities.Book
	err := r.db.Where("deleted = ?", false).Order("id").Find(&records).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}

	result := make([]models.Book, 0, len(records))
	for i := range records {
		result = append(result, database.BookModel(&records[i]))
	}
	return result, nil
}

// Delete soft-deletes the book, or removes the row when hard is set. Hard
// deletion cascades to reading records, reviews and club reading lists, and
// succeeds when the book is already gone.
func (r *Repository) Delete(handle string, hard bool) error {
	var opts []database.LookupOption
	if hard {
		opts = append(opts, database.IncludeDeleted())
	}

	record, err := database.FindBook(r.db, handle, opts...)
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
