package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookclub/internal/entities"
	domainerrors "github.com/mrlokans/bookclub/internal/errors"
	"github.com/mrlokans/bookclub/internal/mason"
)

type AuditController struct {
	reader AuditReader
}

func NewAuditController(reader AuditReader) *AuditController {
	return &AuditController{reader: reader}
}

// AuditPage is one page of audit events.
type AuditPage struct {
	Events     []entities.AuditEvent `json:"events"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"total_pages"`
	Total      int64                 `json:"total_events"`
	mason.Hypermedia
}

// GetAuditEvents returns paginated audit events, optionally for one entity
// type.
// GET /audit?entity_type=book&page=1&limit=25
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 25
	}
	offset := (page - 1) * limit

	events, total, err := ac.reader.GetEvents(c.Query("entity_type"), limit, offset)
	if err != nil {
		respondError(c, domainerrors.Internal("Failed to load audit events").WithCause(err))
		return
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	out := AuditPage{
		Events:     events,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		Total:      total,
	}
	addDocumentControls(&out.Hypermedia)
	out.AddControl("self", mason.Control{Href: c.Request.URL.RequestURI(), Method: http.MethodGet})
	if page < totalPages {
		next := c.Request.URL.Query()
		next.Set("page", strconv.Itoa(page+1))
		out.AddControl("next", mason.Control{Href: auditPath + "?" + next.Encode(), Method: http.MethodGet})
	}
	if page > 1 {
		prev := c.Request.URL.Query()
		prev.Set("page", strconv.Itoa(page-1))
		out.AddControl("prev", mason.Control{Href: auditPath + "?" + prev.Encode(), Method: http.MethodGet})
	}
	respondMason(c, http.StatusOK, out)
}

// GetEntityHistory returns every event recorded for one resource. Keys that
// contain a slash, like reading records, are matched as a whole.
// GET /audit/:type/*key
func (ac *AuditController) GetEntityHistory(c *gin.Context) {
	entityType := c.Param("type")
	key := strings.TrimPrefix(c.Param("key"), "/")

	events, err := ac.reader.GetEntityHistory(entityType, key)
	if err != nil {
		respondError(c, domainerrors.Internal("Failed to load audit events").WithCause(err))
		return
	}

	out := AuditPage{Events: events, Page: 1, Limit: len(events), TotalPages: 1, Total: int64(len(events))}
	addDocumentControls(&out.Hypermedia)
	out.AddControl("up", mason.Control{Href: auditPath, Method: http.MethodGet})
	respondMason(c, http.StatusOK, out)
}
