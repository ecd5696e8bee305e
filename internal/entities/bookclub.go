package entities

import "time"

// Keyed is a persisted record addressable by its business key.
type Keyed interface {
	Kind() string
	KeyColumn() string
	IsDeleted() bool
}

type Book struct {
	ID          uint    `gorm:"primaryKey"`
	Handle      string  `gorm:"uniqueIndex;size:64;not null"`
	FullName    string  `gorm:"size:256;not null"`
	Description *string `gorm:"type:text"`
	Pages       *int    `gorm:"index"`
	Deleted     bool    `gorm:"index;not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Book) Kind() string      { return "Book" }
func (Book) KeyColumn() string { return "handle" }
func (b Book) IsDeleted() bool { return b.Deleted }

type User struct {
	ID           uint    `gorm:"primaryKey"`
	Username     string  `gorm:"uniqueIndex;size:64;not null"`
	PasswordHash *string `gorm:"size:128"`
	Description  *string `gorm:"size:256"`
	Deleted      bool    `gorm:"index;not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) Kind() string      { return "User" }
func (User) KeyColumn() string { return "username" }
func (u User) IsDeleted() bool { return u.Deleted }

type Club struct {
	ID          uint    `gorm:"primaryKey"`
	OwnerID     *uint   `gorm:"index"`
	Owner       *User   `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Handle      string  `gorm:"uniqueIndex;size:64;not null"`
	Description *string `gorm:"size:2048"`
	Deleted     bool    `gorm:"index;not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Club) Kind() string      { return "Club" }
func (Club) KeyColumn() string { return "handle" }
func (c Club) IsDeleted() bool { return c.Deleted }
