package models

import "github.com/mrlokans/bookclub/internal/mason"

type NewReview struct {
	User    string  `json:"user" binding:"required,max=60"`
	Book    string  `json:"book" binding:"required,max=60"`
	Stars   int     `json:"stars" binding:"required,min=1,max=5"`
	Title   string  `json:"title" binding:"required,max=120"`
	Content *string `json:"content,omitempty" binding:"omitempty,max=65000"`
}

// Key identifies a review within its book: one review per user.
func (r NewReview) Key() string { return r.User }

type Review struct {
	// User is empty once the author row is gone.
	User    string  `json:"user,omitempty"`
	Book    string  `json:"book"`
	Stars   int     `json:"stars"`
	Title   string  `json:"title"`
	Content *string `json:"content,omitempty"`
	mason.Hypermedia
}

// ReviewRef addresses a review by its author and book.
type ReviewRef struct {
	User string `json:"user" binding:"required,max=60"`
	Book string `json:"book" binding:"required,max=60"`
}

type NewComment struct {
	User    string     `json:"user" binding:"required,max=60"`
	Content string     `json:"content" binding:"required,max=65000"`
	Review  *ReviewRef `json:"review,omitempty"`
}

type Comment struct {
	UUID    int64   `json:"uuid"`
	User    *string `json:"user,omitempty"`
	Content string  `json:"content"`
	mason.Hypermedia
}
