package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/database"
	"github.com/mrlokans/bookclub/internal/entities"
	domainerrors "github.com/mrlokans/bookclub/internal/errors"
	"github.com/mrlokans/bookclub/internal/models"
)

// editFlow is the create-or-replace behaviour of PUT on a keyed resource.
type editFlow[M models.Keyed] struct {
	// find succeeds only when the resource is visible.
	find func(tx *gorm.DB, key string) error
	// update writes the changed fields and reports whether any changed.
	update func(tx *gorm.DB, key string, model M) (bool, error)
	// purge hard-deletes a husk left under key and ignores an absent row.
	purge  func(tx *gorm.DB, key string) error
	create func(tx *gorm.DB, model M) error
}

// run applies model to the resource at key in one transaction and returns
// the response status: 200 when fields changed, 304 when nothing did, and
// 201 when the resource was absent or only a soft-deleted husk and has been
// created afresh. A body naming another resource is a 409.
func (f editFlow[M]) run(c *gin.Context, db *database.Database, key string, model M) (int, error) {
	if identity := model.Key(); identity != key {
		return 0, domainerrors.Conflictf("Entity identity doesn't match resource, expected: %s got: %s", key, identity)
	}

	return inTx(c, db, func(tx *gorm.DB) (int, error) {
		err := f.find(tx, key)
		switch {
		case err == nil:
			changed, err := f.update(tx, key, model)
			if err != nil {
				return 0, err
			}
			if changed {
				return http.StatusOK, nil
			}
			return http.StatusNotModified, nil
		case domainerrors.Is(err, domainerrors.ErrNotFound):
			if err := f.purge(tx, key); err != nil {
				return 0, err
			}
			if err := f.create(tx, model); err != nil {
				return 0, err
			}
			return http.StatusCreated, nil
		default:
			return 0, err
		}
	})
}

// editEvent maps the outcome of an edit to the audit event it represents.
// An unchanged resource is not recorded.
func editEvent(status int, err error) (entities.AuditEventType, bool) {
	switch {
	case err != nil:
		return entities.AuditEventUpdate, true
	case status == http.StatusCreated:
		return entities.AuditEventCreate, true
	case status == http.StatusOK:
		return entities.AuditEventUpdate, true
	default:
		return "", false
	}
}
