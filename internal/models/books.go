package models

import "github.com/mrlokans/bookclub/internal/mason"

const MaxPages = 2_000_000_000

type NewBook struct {
	Handle      string  `json:"handle" binding:"required,max=60,handle"`
	FullName    string  `json:"full_name" binding:"required,max=250"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=65000"`
	Pages       *int    `json:"pages,omitempty" binding:"omitempty,min=0,max=2000000000"`
}

func (b NewBook) Key() string { return b.Handle }

type Book struct {
	Handle      string  `json:"handle"`
	FullName    string  `json:"full_name"`
	Description *string `json:"description,omitempty"`
	Pages       *int    `json:"pages,omitempty"`
	mason.Hypermedia
}

func (b Book) Key() string { return b.Handle }

// BookStatistics is derived per book and never written by clients.
type BookStatistics struct {
	Rating    float64 `json:"rating"`
	Readers   int64   `json:"readers"`
	Completed int64   `json:"completed"`
	Pending   int64   `json:"pending"`
	Liked     int64   `json:"liked"`
	Disliked  int64   `json:"disliked"`
}

// UserBookFields are one user's reading record for a book.
type UserBookFields struct {
	User          string  `json:"user"`
	ReadingStatus *string `json:"reading_status,omitempty"`
	Reviewed      bool    `json:"reviewed"`
	Ignored       bool    `json:"ignored"`
	Liked         *bool   `json:"liked,omitempty"`
	CurrentPage   *int    `json:"current_page,omitempty"`
}

// BookView is a book enriched with a user's reading record, the book's
// statistics, both, or neither. The reading record is flattened into the
// book document; statistics are nested because their "liked" counter would
// collide with the user's "liked" flag.
type BookView struct {
	Book
	*UserBookFields
	Statistics *BookStatistics `json:"statistics,omitempty"`
}

// NewUserBook creates or overwrites a reading record.
type NewUserBook struct {
	User          string  `json:"user" binding:"required,max=60"`
	Handle        string  `json:"handle" binding:"required,max=60"`
	ReadingStatus *string `json:"reading_status,omitempty" binding:"omitempty,oneof=pending reading completed"`
	Reviewed      *bool   `json:"reviewed,omitempty"`
	Ignored       *bool   `json:"ignored,omitempty"`
	Liked         *bool   `json:"liked,omitempty"`
	CurrentPage   *int    `json:"current_page,omitempty" binding:"omitempty,min=0,max=2000000000"`
}

func (ub NewUserBook) Key() string { return ub.Handle }
