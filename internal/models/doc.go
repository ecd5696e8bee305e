// Package models holds the external representations of the book club
// resources. "New" variants are what clients send and carry the validation
// bounds; read variants are what the API returns and embed Mason hypermedia.
//
// Optional fields are pointers tagged omitempty, so an unset field is absent
// from the JSON document rather than null.
package models

import "github.com/mrlokans/bookclub/internal/mason"

// Keyed is a model addressable by its business key (handle or username).
type Keyed interface {
	Key() string
}

// ReservedKey can never be chosen as a handle or username. It is the label
// shown in place of a soft-deleted club owner.
const ReservedKey = "deleted"

// Collection is a list resource.
type Collection[T any] struct {
	Items []T `json:"items"`
	mason.Hypermedia
}
