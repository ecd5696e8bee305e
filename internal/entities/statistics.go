package entities

// BookStatistics is a row of the read-only books_statistics view.
// It is never migrated or written.
type BookStatistics struct {
	Handle    string
	Rating    float64
	Readers   int64
	Completed int64
	Pending   int64
	Liked     int64
	Disliked  int64
}

func (BookStatistics) TableName() string { return "books_statistics" }

// BookStatisticsView aggregates reading records and reviews per book.
// Ignored reading records do not count, soft-deleted reviews do not rate.
const BookStatisticsView = `CREATE VIEW books_statistics AS
SELECT
	b.handle AS handle,
	COALESCE((SELECT ROUND(AVG(r.stars), 2) FROM reviews r WHERE r.book_id = b.id AND r.deleted = 0), 0) AS rating,
	(SELECT COUNT(*) FROM user_books ub WHERE ub.book_id = b.id AND ub.ignored = 0) AS readers,
	(SELECT COUNT(*) FROM user_books ub WHERE ub.book_id = b.id AND ub.ignored = 0 AND ub.reading_status = 'completed') AS completed,
	(SELECT COUNT(*) FROM user_books ub WHERE ub.book_id = b.id AND ub.ignored = 0 AND ub.reading_status = 'pending') AS pending,
	(SELECT COUNT(*) FROM user_books ub WHERE ub.book_id = b.id AND ub.ignored = 0 AND ub.liked = 1) AS liked,
	(SELECT COUNT(*) FROM user_books ub WHERE ub.book_id = b.id AND ub.ignored = 0 AND ub.liked = 0) AS disliked
FROM books b`
