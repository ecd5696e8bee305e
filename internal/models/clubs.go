package models

import "github.com/mrlokans/bookclub/internal/mason"

type NewClub struct {
	Handle      string  `json:"handle" binding:"required,max=60,handle"`
	Owner       *string `json:"owner,omitempty" binding:"omitempty,max=60"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=2040"`
}

func (c NewClub) Key() string { return c.Handle }

type Club struct {
	Handle string `json:"handle"`
	// Owner is ReservedKey when the owning user was soft-deleted.
	Owner       *string `json:"owner,omitempty"`
	Description *string `json:"description,omitempty"`
	mason.Hypermedia
}

func (c Club) Key() string { return c.Handle }
