package http

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/mrlokans/bookclub/internal/mason"
	"github.com/mrlokans/bookclub/internal/models"
)

// Paths are built from business keys, percent-escaped so any handle is a
// single path segment.
const (
	entryPath    = "/"
	usersPath    = "/users"
	booksPath    = "/books"
	clubsPath    = "/clubs"
	commentsPath = "/comments"
	auditPath    = "/audit"
)

func userPath(username string) string { return usersPath + "/" + url.PathEscape(username) }
func bookPath(handle string) string { return booksPath + "/" + url.PathEscape(handle) }
func clubPath(handle string) string { return clubsPath + "/" + url.PathEscape(handle) }
func commentPath(id int64) string { return commentsPath + "/" + strconv.FormatInt(id, 10) }

func reviewsPath(book string) string { return bookPath(book) + "/reviews" }
func reviewPath(book, user string) string { return reviewsPath(book) + "/" + url.PathEscape(user) }
func discussionPath(book, user string) string { return reviewPath(book, user) + "/comments" }
func userBooksPath(user string) string { return userPath(user) + "/books" }
func userBookPath(user, book string) string { return userBooksPath(user) + "/" + url.PathEscape(book) }
func membersPath(club string) string { return clubPath(club) + "/members" }
func memberPath(club, user string) string { return membersPath(club) + "/" + url.PathEscape(user) }
func readingListPath(club string) string { return clubPath(club) + "/books" }
func readingListBookPath(club, book string) string {
	return readingListPath(club) + "/" + url.PathEscape(book)
}

// addItemControls attaches the controls every single resource carries.
func addItemControls(hm *mason.Hypermedia, href string) {
	hm.AddControl("self", mason.Control{Href: href, Method: http.MethodGet})
	hm.AddControl("edit", mason.Control{Href: href, Method: http.MethodPut, Encoding: "json"})
	hm.AddControl("delete", mason.Control{Href: href, Method: http.MethodDelete})
}

// addDocumentControls marks hm as a top-level document.
func addDocumentControls(hm *mason.Hypermedia) {
	hm.AddNamespace(mason.NamespacePrefix, mason.NamespaceURI)
	hm.AddControl("bc:home", mason.Control{Href: entryPath, Method: http.MethodGet})
}

// collection wraps items into a list document. addHref is empty when the
// list cannot be added to.
func collection[T any](items []T, href, addHref string) models.Collection[T] {
	if items == nil {
		items = []T{}
	}
	out := models.Collection[T]{Items: items}
	addDocumentControls(&out.Hypermedia)
	out.AddControl("self", mason.Control{Href: href, Method: http.MethodGet})
	if addHref != "" {
		out.AddControl("add", mason.Control{Href: addHref, Method: http.MethodPost, Encoding: "json"})
	}
	return out
}

// usable reports whether a key taken from stored data can address a
// resource: the author of an orphaned review or comment has no path.
func usable(key string) bool {
	return key != "" && key != models.ReservedKey
}
