package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/database"
	"github.com/mrlokans/bookclub/internal/database/comments"
	"github.com/mrlokans/bookclub/internal/database/reviews"
	"github.com/mrlokans/bookclub/internal/entities"
	domainerrors "github.com/mrlokans/bookclub/internal/errors"
	"github.com/mrlokans/bookclub/internal/mason"
	"github.com/mrlokans/bookclub/internal/models"
)

const entityReview = "review"

type ReviewsController struct {
	handler
}

func NewReviewsController(db *database.Database, auditor Auditor) *ReviewsController {
	return &ReviewsController{handler: handler{db: db, auditor: auditor}}
}

// List returns the visible reviews of a book.
// GET /books/:book/reviews
func (rc *ReviewsController) List(c *gin.Context) {
	book := c.Param("book")
	items, err := inReadTx(c, rc.db, func(tx *gorm.DB) ([]models.Review, error) {
		return reviews.NewRepository(tx).ListForBook(book)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	for i := range items {
		decorateReview(&items[i])
	}
	out := collection(items, reviewsPath(book), reviewsPath(book))
	out.AddControl("up", mason.Control{Href: bookPath(book), Method: http.MethodGet})
	respondMason(c, http.StatusOK, out)
}

// Create adds a review to the book named in the path.
// POST /books/:book/reviews
func (rc *ReviewsController) Create(c *gin.Context) {
	var in models.NewReview
	if err := bindModel(c, &in); err != nil {
		respondError(c, err)
		return
	}
	book := c.Param("book")
	if in.Book != book {
		respondError(c, domainerrors.Conflictf("Review is for %s, not %s", in.Book, book))
		return
	}

	err := exec(c, rc.db, func(tx *gorm.DB) error {
		return reviews.NewRepository(tx).Create(in)
	})
	rc.record(c, entities.AuditEventCreate, entityReview, reviewKey(book, in.User), err)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, reviewPath(book, in.User))
}

// Get returns the review a user wrote for a book.
// GET /books/:book/reviews/:user
func (rc *ReviewsController) Get(c *gin.Context) {
	book, user := c.Param("book"), c.Param("user")
	review, err := inReadTx(c, rc.db, func(tx *gorm.DB) (*models.Review, error) {
		return reviews.NewRepository(tx).Get(user, book)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	decorateReview(review)
	addDocumentControls(&review.Hypermedia)
	respondMason(c, http.StatusOK, review)
}

// Edit creates or replaces a review. The author and the book are the
// review's identity and must match the path.
// PUT /books/:book/reviews/:user
func (rc *ReviewsController) Edit(c *gin.Context) {
	var in models.NewReview
	if err := bindModel(c, &in); err != nil {
		respondError(c, err)
		return
	}
	book, user := c.Param("book"), c.Param("user")
	if in.Book != book {
		respondError(c, domainerrors.Conflictf("Entity identity doesn't match resource, expected: %s got: %s", book, in.Book))
		return
	}

	flow := editFlow[models.NewReview]{
		find: func(tx *gorm.DB, key string) error {
			_, err := reviews.NewRepository(tx).Get(key, book)
			return err
		},
		update: func(tx *gorm.DB, _ string, m models.NewReview) (bool, error) {
			return reviews.NewRepository(tx).Update(m)
		},
		purge: func(tx *gorm.DB, key string) error {
			return reviews.NewRepository(tx).Delete(key, book, true)
		},
		create: func(tx *gorm.DB, m models.NewReview) error {
			return reviews.NewRepository(tx).Create(m)
		},
	}

	status, err := flow.run(c, rc.db, user, in)
	rc.recordEdit(c, entityReview, reviewKey(book, user), status, err)
	if err != nil {
		respondError(c, err)
		return
	}
	respondEdit(c, status, reviewPath(book, user))
}

// Delete soft-deletes a review, or removes it with ?hard=true.
// DELETE /books/:book/reviews/:user
func (rc *ReviewsController) Delete(c *gin.Context) {
	hard, err := boolQuery(c, "hard")
	if err != nil {
		respondError(c, err)
		return
	}

	book, user := c.Param("book"), c.Param("user")
	err = exec(c, rc.db, func(tx *gorm.DB) error {
		return reviews.NewRepository(tx).Delete(user, book, hard)
	})
	rc.record(c, deleteEvent(hard), entityReview, reviewKey(book, user), err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Discussion lists the comments attached to a review.
// GET /books/:book/reviews/:user/comments
func (rc *ReviewsController) Discussion(c *gin.Context) {
	book, user := c.Param("book"), c.Param("user")
	items, err := inReadTx(c, rc.db, func(tx *gorm.DB) ([]models.Comment, error) {
		return comments.NewRepository(tx).ListForReview(user, book)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	for i := range items {
		decorateComment(&items[i])
	}
	out := collection(items, discussionPath(book, user), commentsPath)
	out.AddControl("up", mason.Control{Href: reviewPath(book, user), Method: http.MethodGet})
	respondMason(c, http.StatusOK, out)
}

func decorateReview(r *models.Review) {
	if usable(r.User) {
		addItemControls(&r.Hypermedia, reviewPath(r.Book, r.User))
		r.AddControl("bc:discussion", mason.Control{Href: discussionPath(r.Book, r.User), Method: http.MethodGet})
		r.AddControl("author", mason.Control{Href: userPath(r.User), Method: http.MethodGet})
	}
	r.AddControl("bc:book", mason.Control{Href: bookPath(r.Book), Method: http.MethodGet})
}

func reviewKey(book, user string) string {
	return book + "/" + user
}
