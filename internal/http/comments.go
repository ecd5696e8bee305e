package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/database"
	"github.com/mrlokans/bookclub/internal/database/comments"
	"github.com/mrlokans/bookclub/internal/entities"
	domainerrors "github.com/mrlokans/bookclub/internal/errors"
	"github.com/mrlokans/bookclub/internal/mason"
	"github.com/mrlokans/bookclub/internal/models"
)

const entityComment = "comment"

type CommentsController struct {
	handler
}

func NewCommentsController(db *database.Database, auditor Auditor) *CommentsController {
	return &CommentsController{handler: handler{db: db, auditor: auditor}}
}

// Create adds a comment, attached to a review when the body names one.
// POST /comments
func (cc *CommentsController) Create(c *gin.Context) {
	var in models.NewComment
	if err := bindModel(c, &in); err != nil {
		respondError(c, err)
		return
	}

	id, err := inTx(c, cc.db, func(tx *gorm.DB) (int64, error) {
		return comments.NewRepository(tx).Create(in)
	})
	cc.record(c, entities.AuditEventCreate, entityComment, strconv.FormatInt(id, 10), err)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, commentPath(id))
}

// Get returns one comment.
// GET /comments/:uuid
func (cc *CommentsController) Get(c *gin.Context) {
	id, err := commentID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	comment, err := inReadTx(c, cc.db, func(tx *gorm.DB) (*models.Comment, error) {
		return comments.NewRepository(tx).Get(id)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	decorateComment(comment)
	addDocumentControls(&comment.Hypermedia)
	respondMason(c, http.StatusOK, comment)
}

// Edit replaces the content of a comment: 200 when it changed, 304 when it
// did not. Comments are only created through POST; the author and the
// discussion a comment belongs to never change.
// PUT /comments/:uuid
func (cc *CommentsController) Edit(c *gin.Context) {
	id, err := commentID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var in models.NewComment
	if err := bindModel(c, &in); err != nil {
		respondError(c, err)
		return
	}

	changed, err := inTx(c, cc.db, func(tx *gorm.DB) (bool, error) {
		repo := comments.NewRepository(tx)
		current, err := repo.Get(id)
		if err != nil {
			return false, err
		}
		if current.User != nil && usable(*current.User) && *current.User != in.User {
			return false, domainerrors.Conflictf("Entity identity doesn't match resource, expected: %s got: %s", *current.User, in.User)
		}
		return repo.Update(id, in)
	})
	key := strconv.FormatInt(id, 10)
	if err != nil || changed {
		cc.record(c, entities.AuditEventUpdate, entityComment, key, err)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if changed {
		c.Status(http.StatusOK)
		return
	}
	c.Status(http.StatusNotModified)
}

// Delete soft-deletes a comment, or removes it with ?hard=true.
// DELETE /comments/:uuid
func (cc *CommentsController) Delete(c *gin.Context) {
	id, err := commentID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	hard, err := boolQuery(c, "hard")
	if err != nil {
		respondError(c, err)
		return
	}

	err = exec(c, cc.db, func(tx *gorm.DB) error {
		return comments.NewRepository(tx).Delete(id, hard)
	})
	cc.record(c, deleteEvent(hard), entityComment, strconv.FormatInt(id, 10), err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func commentID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("uuid"), 10, 64)
	if err != nil {
		return 0, domainerrors.Validation("Comment UUID must be an integer")
	}
	return id, nil
}

func decorateComment(cm *models.Comment) {
	addItemControls(&cm.Hypermedia, commentPath(cm.UUID))
	if cm.User != nil && usable(*cm.User) {
		cm.AddControl("author", mason.Control{Href: userPath(*cm.User), Method: http.MethodGet})
	}
}
