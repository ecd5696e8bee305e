package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/database"
	"github.com/mrlokans/bookclub/internal/database/userbooks"
	"github.com/mrlokans/bookclub/internal/entities"
	domainerrors "github.com/mrlokans/bookclub/internal/errors"
	"github.com/mrlokans/bookclub/internal/mason"
	"github.com/mrlokans/bookclub/internal/models"
)

const entityReadingRecord = "user_book"

// UserBooksController serves reading records, a user's relation to a book.
type UserBooksController struct {
	handler
}

func NewUserBooksController(db *database.Database, auditor Auditor) *UserBooksController {
	return &UserBooksController{handler: handler{db: db, auditor: auditor}}
}

// List returns the user's reading records that are not ignored.
// GET /users/:user/books
func (uc *UserBooksController) List(c *gin.Context) {
	user := c.Param("user")
	items, err := inReadTx(c, uc.db, func(tx *gorm.DB) ([]models.BookView, error) {
		return userbooks.NewRepository(tx).ListForUser(user)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	for i := range items {
		decorateReadingRecord(&items[i])
	}
	out := collection(items, userBooksPath(user), userBooksPath(user))
	out.AddControl("up", mason.Control{Href: userPath(user), Method: http.MethodGet})
	respondMason(c, http.StatusOK, out)
}

// Create adds a reading record for the user named in the path.
// POST /users/:user/books
func (uc *UserBooksController) Create(c *gin.Context) {
	var in models.NewUserBook
	if err := bindModel(c, &in); err != nil {
		respondError(c, err)
		return
	}
	user := c.Param("user")
	if in.User != user {
		respondError(c, domainerrors.Conflictf("Reading record belongs to %s, not %s", in.User, user))
		return
	}

	_, err := inTx(c, uc.db, func(tx *gorm.DB) (*models.BookView, error) {
		return userbooks.NewRepository(tx).Store(in, false)
	})
	uc.record(c, entities.AuditEventCreate, entityReadingRecord, recordKey(user, in.Handle), err)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, userBookPath(user, in.Handle))
}

// Get returns the user's reading record for a book, ignored or not.
// GET /users/:user/books/:book
func (uc *UserBooksController) Get(c *gin.Context) {
	user, book := c.Param("user"), c.Param("book")
	view, err := inReadTx(c, uc.db, func(tx *gorm.DB) (*models.BookView, error) {
		return userbooks.NewRepository(tx).Get(user, book)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	decorateReadingRecord(view)
	addDocumentControls(&view.Hypermedia)
	respondMason(c, http.StatusOK, view)
}

// Edit creates the reading record or overwrites the fields the body sets.
// The stored record is returned with 201 when created and 200 otherwise.
// PUT /users/:user/books/:book
func (uc *UserBooksController) Edit(c *gin.Context) {
	var in models.NewUserBook
	if err := bindModel(c, &in); err != nil {
		respondError(c, err)
		return
	}
	user, book := c.Param("user"), c.Param("book")
	if in.User != user || in.Key() != book {
		respondError(c, domainerrors.Conflictf("Entity identity doesn't match resource, expected: %s got: %s",
			recordKey(user, book), recordKey(in.User, in.Key())))
		return
	}

	type outcome struct {
		view    *models.BookView
		created bool
	}
	result, err := inTx(c, uc.db, func(tx *gorm.DB) (outcome, error) {
		repo := userbooks.NewRepository(tx)
		_, err := repo.Get(user, book)
		created := domainerrors.Is(err, domainerrors.ErrNotFound)
		if err != nil && !created {
			return outcome{}, err
		}
		view, err := repo.Store(in, true)
		return outcome{view: view, created: created}, err
	})

	status := http.StatusOK
	if result.created {
		status = http.StatusCreated
	}
	uc.recordEdit(c, entityReadingRecord, recordKey(user, book), status, err)
	if err != nil {
		respondError(c, err)
		return
	}

	decorateReadingRecord(result.view)
	addDocumentControls(&result.view.Hypermedia)
	if result.created {
		c.Header("Location", userBookPath(user, book))
	}
	respondMason(c, status, result.view)
}

// Ignore hides the reading record from the user's list and the book's
// statistics. The record itself is kept.
// DELETE /users/:user/books/:book
func (uc *UserBooksController) Ignore(c *gin.Context) {
	uc.setIgnored(c, true, entities.AuditEventDelete)
}

// Restore undoes Ignore.
// POST /users/:user/books/:book/restore
func (uc *UserBooksController) Restore(c *gin.Context) {
	uc.setIgnored(c, false, entities.AuditEventRestore)
}

func (uc *UserBooksController) setIgnored(c *gin.Context, ignored bool, event entities.AuditEventType) {
	user, book := c.Param("user"), c.Param("book")
	err := exec(c, uc.db, func(tx *gorm.DB) error {
		return userbooks.NewRepository(tx).SetIgnored(user, book, ignored)
	})
	uc.record(c, event, entityReadingRecord, recordKey(user, book), err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func decorateReadingRecord(v *models.BookView) {
	if v.UserBookFields == nil {
		return
	}
	href := userBookPath(v.User, v.Handle)
	addItemControls(&v.Hypermedia, href)
	v.AddControl("bc:restore", mason.Control{Href: href + "/restore", Method: http.MethodPost})
	v.AddControl("bc:book", mason.Control{Href: bookPath(v.Handle), Method: http.MethodGet})
}

func recordKey(user, book string) string {
	return user + "/" + book
}
