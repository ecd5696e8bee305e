package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/database"
	"github.com/mrlokans/bookclub/internal/entities"
	domainerrors "github.com/mrlokans/bookclub/internal/errors"
	"github.com/mrlokans/bookclub/internal/mason"
	"github.com/mrlokans/bookclub/internal/validation"
)

// handler carries what every resource controller needs.
type handler struct {
	db      *database.Database
	auditor Auditor
}

// inTx runs fn in the request transaction and returns its result. The
// transaction commits only when fn succeeds.
func inTx[T any](c *gin.Context, db *database.Database, fn func(tx *gorm.DB) (T, error)) (T, error) {
	var result T
	err := db.Tx(c.Request.Context(), func(tx *gorm.DB) error {
		var err error
		result, err = fn(tx)
		return err
	})
	return result, err
}

// exec is inTx for operations without a result.
func exec(c *gin.Context, db *database.Database, fn func(tx *gorm.DB) error) error {
	return db.Tx(c.Request.Context(), fn)
}

// inReadTx is inTx on the read pool, for GET handlers. The snapshot it
// reads does not block on, or hold up, concurrent writes.
func inReadTx[T any](c *gin.Context, db *database.Database, fn func(tx *gorm.DB) (T, error)) (T, error) {
	var result T
	err := db.ReadTx(c.Request.Context(), func(tx *gorm.DB) error {
		var err error
		result, err = fn(tx)
		return err
	})
	return result, err
}

// record hands a finished mutation to the auditor, if there is one.
func (h *handler) record(c *gin.Context, eventType entities.AuditEventType, entityType, key string, err error) {
	if h.auditor == nil {
		return
	}
	h.auditor.LogChange(eventType, entityType, key, requestID(c), err)
}

// bindModel decodes and validates the JSON body into model.
func bindModel(c *gin.Context, model any) error {
	if err := c.ShouldBindJSON(model); err != nil {
		if domainerrors.Is(err, domainerrors.ErrValidation) {
			return err
		}
		return domainerrors.Validation("Request body is not a valid JSON document").WithCause(err)
	}
	return nil
}

// boolQuery reads an optional boolean query parameter.
func boolQuery(c *gin.Context, name string) (bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domainerrors.Validation("Query parameter " + name + " must be a boolean")
	}
	return value, nil
}

// --- Response Helpers ---

// respondMason writes body as a Mason document.
func respondMason(c *gin.Context, status int, body any) {
	c.Header("Content-Type", mason.MediaType)
	c.JSON(status, body)
}

// respondCreated sends 201 with the location of the new resource.
func respondCreated(c *gin.Context, location string) {
	c.Header("Location", location)
	c.Status(http.StatusCreated)
}

// respondEdit reports the outcome of a create-or-replace.
func respondEdit(c *gin.Context, status int, location string) {
	if status == http.StatusCreated {
		respondCreated(c, location)
		return
	}
	c.Status(status)
}

// respondError renders err as a Mason error document. Domain errors keep
// their message; anything else is logged and reported as an internal error.
// Storage details never reach the client.
func respondError(c *gin.Context, err error) {
	var domainErr *domainerrors.Error
	if !domainerrors.As(err, &domainErr) {
		domainErr = domainerrors.Internal("Internal server error").WithCause(err)
	}

	status := domainErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		requestLogger(c).Error("request failed", "error", err)
	}

	doc := mason.NewError(status, string(domainErr.Code), domainErr.Message, validation.Messages(domainErr)...)
	doc.AddNamespace(mason.NamespacePrefix, mason.NamespaceURI)
	doc = doc.WithControl("bc:home", mason.Control{Href: entryPath, Method: http.MethodGet})
	respondMason(c, status, doc)
}

// requestLogger returns the logger carrying the request ID.
func requestLogger(c *gin.Context) *slog.Logger {
	if l, ok := c.Get(contextKeyLogger); ok {
		if logger, ok := l.(*slog.Logger); ok {
			return logger
		}
	}
	return slog.Default()
}

// recordEdit audits the outcome of an editFlow run.
func (h *handler) recordEdit(c *gin.Context, entityType, key string, status int, err error) {
	if event, ok := editEvent(status, err); ok {
		h.record(c, event, entityType, key, err)
	}
}

// deleteEvent picks the audit event for a delete.
func deleteEvent(hard bool) entities.AuditEventType {
	if hard {
		return entities.AuditEventPurge
	}
	return entities.AuditEventDelete
}
