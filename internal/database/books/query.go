package books

import (
	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/models"
)

// bookRow is the flattened result of the book joins. Columns from a join
// that was not requested stay nil.
type bookRow struct {
	Handle      string
	FullName    string
	Description *string
	Pages       *int

	Username      *string
	ReadingStatus *string
	Reviewed      *bool
	Ignored       *bool
	Liked         *bool
	CurrentPage   *int

	Rating        *float64
	Readers       *int64
	Completed     *int64
	Pending       *int64
	LikedCount    *int64
	DislikedCount *int64
}

func (r *Repository) query(q Query) *gorm.DB {
	columns := []string{"b.handle", "b.full_name", "b.description", "b.pages"}
	query := r.db.Table("books AS b")

	if q.User != "" {
		columns = append(columns,
			"u.username", "ub.reading_status", "ub.reviewed", "ub.ignored", "ub.liked", "ub.current_page")
		query = query.
			Joins("JOIN user_books AS ub ON ub.book_id = b.id").
			Joins("JOIN users AS u ON u.id = ub.user_id AND u.username = ? AND u.deleted = ?", q.User, false)
	}
	if q.Stats {
		columns = append(columns,
			"bs.rating", "bs.readers", "bs.completed", "bs.pending",
			"bs.liked AS liked_count", "bs.disliked AS disliked_count")
		query = query.Joins("JOIN books_statistics AS bs ON bs.handle = b.handle")
	}
	return query.Select(columns)
}

func (row bookRow) view(q Query) *models.BookView {
	view := &models.BookView{
		Book: models.Book{
			Handle:      row.Handle,
			FullName:    row.FullName,
			Description: row.Description,
			Pages:       row.Pages,
		},
	}

	if q.User != "" {
		view.UserBookFields = &models.UserBookFields{
			User:          deref(row.Username),
			ReadingStatus: row.ReadingStatus,
			Reviewed:      deref(row.Reviewed),
			Ignored:       deref(row.Ignored),
			Liked:         row.Liked,
			CurrentPage:   row.CurrentPage,
		}
	}
	if q.Stats {
		view.Statistics = &models.BookStatistics{
			Rating:    deref(row.Rating),
			Readers:   deref(row.Readers),
			Completed: deref(row.Completed),
			Pending:   deref(row.Pending),
			Liked:     deref(row.LikedCount),
			Disliked:  deref(row.DislikedCount),
		}
	}
	return view
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
