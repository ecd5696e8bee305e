package clubs

import (
	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/database"
	"github.com/mrlokans/bookclub/internal/entities"
	domainerrors "github.com/mrlokans/bookclub/internal/errors"
	"github.com/mrlokans/bookclub/internal/models"
)

// AddMember makes user a member of club. It reports false when the user
// already was one.
func (r *Repository) AddMember(club, username string) (bool, error) {
	record, err := database.FindClub(r.db, club)
	if err != nil {
		return false, err
	}
	user, err := database.FindUser(r.db, username)
	if err != nil {
		return false, err
	}
	return r.link(&entities.ClubMember{ClubID: record.ID, UserID: user.ID})
}

func (r *Repository) RemoveMember(club, username string) error {
	record, err := database.FindClub(r.db, club)
	if err != nil {
		return err
	}
	user, err := database.FindUser(r.db, username, database.IncludeDeleted())
	if err != nil {
		return err
	}
	removed, err := r.unlink(&entities.ClubMember{}, "club_id = ? AND user_id = ?", record.ID, user.ID)
	if err != nil {
		return err
	}
	if !removed {
		return domainerrors.NotFoundf("User %s is not a member of %s", username, club)
	}
	return nil
}

// Members returns the visible members of club ordered by username.
func (r *Repository) Members(club string) ([]models.User, error) {
	record, err := database.FindClub(r.db, club)
	if err != nil {
		return nil, err
	}

	var users []entities.User
	err = r.db.
		Joins("JOIN club_user_link AS cu ON cu.user_id = users.id").
		Where("cu.club_id = ? AND users.deleted = ?", record.ID, false).
		Order("users.username").
		Find(&users).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}

	result := make([]models.User, 0, len(users))
	for i := range users {
		result = append(result, database.UserModel(&users[i]))
	}
	return result, nil
}

// AddBook puts book on the club's reading list. It reports false when the
// book already was on it.
func (r *Repository) AddBook(club, handle string) (bool, error) {
	record, err := database.FindClub(r.db, club)
	if err != nil {
		return false, err
	}
	book, err := database.FindBook(r.db, handle)
	if err != nil {
		return false, err
	}
	return r.link(&entities.ClubBook{ClubID: record.ID, BookID: book.ID})
}

func (r *Repository) RemoveBook(club, handle string) error {
	record, err := database.FindClub(r.db, club)
	if err != nil {
		return err
	}
	book, err := database.FindBook(r.db, handle, database.IncludeDeleted())
	if err != nil {
		return err
	}
	removed, err := r.unlink(&entities.ClubBook{}, "club_id = ? AND book_id = ?", record.ID, book.ID)
	if err != nil {
		return err
	}
	if !removed {
		return domainerrors.NotFoundf("Book %s is not on the reading list of %s", handle, club)
	}
	return nil
}

// Books returns the visible books on the club's reading list ordered by handle.
func (r *Repository) Books(club string) ([]models.Book, error) {
	record, err := database.FindClub(r.db, club)
	if err != nil {
		return nil, err
	}

	var books []entities.Book
	err = r.db.
		Joins("JOIN club_book_link AS cb ON cb.book_id = books.id").
		Where("cb.club_id = ? AND books.deleted = ?", record.ID, false).
		Order("books.handle").
		Find(&books).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}

	result := make([]models.Book, 0, len(books))
	for i := range books {
		result = append(result, database.BookModel(&books[i]))
	}
	return result, nil
}

func (r *Repository) link(record any) (bool, error) {
	var count int64
	if err := r.db.Model(record).Where(record).Count(&count).Error; err != nil {
		return false, database.TranslateError(err)
	}
	if count > 0 {
		return false, nil
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(record).Error
	})
	if database.IsUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, database.TranslateError(err)
	}
	return true, nil
}

func (r *Repository) unlink(model any, query string, args ...any) (bool, error) {
	var removed int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where(query, args...).Delete(model)
		removed = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return false, database.TranslateError(err)
	}
	return removed > 0, nil
}
