package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookclub/internal/mason"
)

// EntryPoint is the API root document.
type EntryPoint struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	mason.Hypermedia
}

// entryPoint serves the links to the top-level collections.
// GET /
func entryPoint(version string, withAudit bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc := EntryPoint{Name: "bookclub", Version: version}
		addDocumentControls(&doc.Hypermedia)
		doc.AddControl("self", mason.Control{Href: entryPath, Method: http.MethodGet})
		doc.AddControl("bc:books-all", mason.Control{Href: booksPath, Title: "Books Collection", Method: http.MethodGet})
		doc.AddControl("bc:users-all", mason.Control{Href: usersPath, Title: "Users Collection", Method: http.MethodGet})
		doc.AddControl("bc:clubs-all", mason.Control{Href: clubsPath, Title: "Clubs Collection", Method: http.MethodGet})
		if withAudit {
			doc.AddControl("bc:audit", mason.Control{Href: auditPath, Title: "Audit Trail", Method: http.MethodGet})
		}
		respondMason(c, http.StatusOK, doc)
	}
}
