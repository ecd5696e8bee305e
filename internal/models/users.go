package models

import "github.com/mrlokans/bookclub/internal/mason"

type NewUser struct {
	Username    string  `json:"username" binding:"required,max=60,handle"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=250"`
	// Password is write-only. It is hashed on the way in and never returned.
	Password *string `json:"password,omitempty" binding:"omitempty,min=8,max=72,maxbytes=72"`
}

func (u NewUser) Key() string { return u.Username }

type User struct {
	Username    string  `json:"username"`
	Description *string `json:"description,omitempty"`
	mason.Hypermedia
}

func (u User) Key() string { return u.Username }
