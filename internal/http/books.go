package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/database"
	"github.com/mrlokans/bookclub/internal/database/books"
	"github.com/mrlokans/bookclub/internal/entities"
	"github.com/mrlokans/bookclub/internal/mason"
	"github.com/mrlokans/bookclub/internal/models"
)

const entityBook = "book"

type BooksController struct {
	handler
}

func NewBooksController(db *database.Database, auditor Auditor) *BooksController {
	return &BooksController{handler: handler{db: db, auditor: auditor}}
}

// List returns all visible books.
// GET /books
func (bc *BooksController) List(c *gin.Context) {
	items, err := inReadTx(c, bc.db, func(tx *gorm.DB) ([]models.Book, error) {
		return books.NewRepository(tx).List()
	})
	if err != nil {
		respondError(c, err)
		return
	}

	for i := range items {
		decorateBook(&items[i])
	}
	respondMason(c, http.StatusOK, collection(items, booksPath, booksPath))
}

// Create adds a book.
// POST /books
func (bc *BooksController) Create(c *gin.Context) {
	var in models.NewBook
	if err := bindModel(c, &in); err != nil {
		respondError(c, err)
		return
	}

	handle, err := inTx(c, bc.db, func(tx *gorm.DB) (string, error) {
		return books.NewRepository(tx).Create(in)
	})
	bc.record(c, entities.AuditEventCreate, entityBook, in.Handle, err)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, bookPath(handle))
}

// Get returns one book. ?stats=true adds the book's statistics and
// ?user=name merges that user's reading record.
// GET /books/:book
func (bc *BooksController) Get(c *gin.Context) {
	stats, err := boolQuery(c, "stats")
	if err != nil {
		respondError(c, err)
		return
	}
	q := books.Query{Stats: stats, User: c.Query("user")}

	view, err := inReadTx(c, bc.db, func(tx *gorm.DB) (*models.BookView, error) {
		return books.NewRepository(tx).Get(c.Param("book"), q)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	decorateBook(&view.Book)
	if view.UserBookFields != nil {
		view.AddControl("bc:reading-record", mason.Control{
			Href:   userBookPath(view.User, view.Handle),
			Method: http.MethodGet,
		})
	}
	addDocumentControls(&view.Hypermedia)
	respondMason(c, http.StatusOK, view)
}

// Edit creates or replaces a book.
// PUT /books/:book
func (bc *BooksController) Edit(c *gin.Context) {
	var in models.NewBook
	if err := bindModel(c, &in); err != nil {
		respondError(c, err)
		return
	}

	key := c.Param("book")
	flow := editFlow[models.NewBook]{
		find: func(tx *gorm.DB, key string) error {
			_, err := database.FindBook(tx, key)
			return err
		},
		update: func(tx *gorm.DB, key string, m models.NewBook) (bool, error) {
			return books.NewRepository(tx).Update(key, m)
		},
		purge: func(tx *gorm.DB, key string) error {
			return books.NewRepository(tx).Delete(key, true)
		},
		create: func(tx *gorm.DB, m models.NewBook) error {
			_, err := books.NewRepository(tx).Create(m)
			return err
		},
	}

	status, err := flow.run(c, bc.db, key, in)
	bc.recordEdit(c, entityBook, key, status, err)
	if err != nil {
		respondError(c, err)
		return
	}
	respondEdit(c, status, bookPath(key))
}

// Delete soft-deletes a book, or removes it with ?hard=true.
// DELETE /books/:book
func (bc *BooksController) Delete(c *gin.Context) {
	hard, err := boolQuery(c, "hard")
	if err != nil {
		respondError(c, err)
		return
	}

	key := c.Param("book")
	err = exec(c, bc.db, func(tx *gorm.DB) error {
		return books.NewRepository(tx).Delete(key, hard)
	})
	bc.record(c, deleteEvent(hard), entityBook, key, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func decorateBook(b *models.Book) {
	addItemControls(&b.Hypermedia, bookPath(b.Handle))
	b.AddControl("bc:reviews", mason.Control{Href: reviewsPath(b.Handle), Method: http.MethodGet})
}
