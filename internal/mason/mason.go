// Package mason defines the Mason hypermedia envelope used by every response
// body: controls, namespaces, and the @error object.
//
// Usage:
//
//	var hm mason.Hypermedia
//	hm.AddNamespace(mason.NamespacePrefix, mason.NamespaceURI)
//	hm.AddControl("self", mason.Control{Href: "/books/dune"})
package mason

import "time"

// MediaType is the content type of Mason documents.
const MediaType = "application/vnd.mason+json"

const (
	NamespacePrefix = "bc"
	NamespaceURI    = "https://bookclub4.docs.apiary.io/#"
)

// Control is a hypermedia link or action.
type Control struct {
	Href           string `json:"href"`
	Title          string `json:"title,omitempty"`
	Method         string `json:"method,omitempty"`
	Encoding       string `json:"encoding,omitempty"`
	Schema         any    `json:"schema,omitempty"`
	IsHrefTemplate bool   `json:"isHrefTemplate,omitempty"`
}

type Namespace struct {
	Name string `json:"name"`
}

// Hypermedia is embedded into resource models so the controls render next to
// the resource fields.
type Hypermedia struct {
	Namespaces map[string]Namespace `json:"@namespaces,omitempty"`
	Controls   map[string]Control   `json:"@controls,omitempty"`
}

func (h *Hypermedia) AddControl(name string, control Control) {
	if h.Controls == nil {
		h.Controls = make(map[string]Control)
	}
	h.Controls[name] = control
}

func (h *Hypermedia) AddNamespace(prefix, uri string) {
	if h.Namespaces == nil {
		h.Namespaces = make(map[string]Namespace)
	}
	h.Namespaces[prefix] = Namespace{Name: uri}
}

// Error is the body of the @error object.
type Error struct {
	Message        string             `json:"@message"`
	Messages       []string           `json:"@messages,omitempty"`
	HTTPStatusCode int                `json:"@httpStatusCode"`
	Code           string             `json:"@code,omitempty"`
	Time           string             `json:"@time,omitempty"`
	Controls       map[string]Control `json:"@controls,omitempty"`
}

// ErrorDocument is a complete Mason error response.
type ErrorDocument struct {
	Error Error `json:"@error"`
	Hypermedia
}

// NewError builds an error document stamped with the current time.
func NewError(status int, code, message string, messages ...string) ErrorDocument {
	return ErrorDocument{
		Error: Error{
			Message:        message,
			Messages:       messages,
			HTTPStatusCode: status,
			Code:           code,
			Time:           time.Now().UTC().Format(time.RFC3339),
		},
	}
}

// WithControl attaches a control to the @error object.
func (d ErrorDocument) WithControl(name string, control Control) ErrorDocument {
	if d.Error.Controls == nil {
		d.Error.Controls = make(map[string]Control)
	}
	d.Error.Controls[name] = control
	return d
}
