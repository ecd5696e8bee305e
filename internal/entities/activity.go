package entities

import "time"

type ReadingStatus string

const (
	ReadingStatusPending   ReadingStatus = "pending"
	ReadingStatusReading   ReadingStatus = "reading"
	ReadingStatusCompleted ReadingStatus = "completed"
)

// Review is unique per (user, book). The author reference is nulled when the
// user row goes away, the review itself goes with its book.
type Review struct {
	ID        uint    `gorm:"primaryKey"`
	UserID    *uint   `gorm:"index:idx_reviews_user_book,unique,priority:1"`
	User      *User   `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	BookID    uint    `gorm:"not null;index;index:idx_reviews_user_book,unique,priority:2"`
	Book      *Book   `gorm:"foreignKey:BookID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Stars     int     `gorm:"not null;default:3"`
	Title     string  `gorm:"size:128;not null"`
	Content   *string `gorm:"type:text"`
	Deleted   bool    `gorm:"index;not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Comment is addressed externally by UUID, a random 64-bit identifier that is
// never the surrogate ID.
type Comment struct {
	ID        uint   `gorm:"primaryKey"`
	UUID      int64  `gorm:"column:uuid;uniqueIndex;not null"`
	UserID    *uint  `gorm:"index"`
	User      *User  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Content   string `gorm:"type:text;not null"`
	Deleted   bool   `gorm:"index;not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Comment) Kind() string      { return "Comment" }
func (Comment) KeyColumn() string { return "uuid" }
func (c Comment) IsDeleted() bool { return c.Deleted }

// UserBook is a user's reading record for a book. It is a relation, so it
// is removed with either side.
type UserBook struct {
	UserID        uint           `gorm:"primaryKey;autoIncrement:false;index:idx_user_books_reviewed,priority:1"`
	User          *User          `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	BookID        uint           `gorm:"primaryKey;autoIncrement:false;index:idx_user_books_book_user,priority:1"`
	Book          *Book          `gorm:"foreignKey:BookID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	ReadingStatus *ReadingStatus `gorm:"size:16;index"`
	Reviewed      bool           `gorm:"not null;default:false;index:idx_user_books_reviewed,priority:2"`
	Ignored       bool           `gorm:"not null;default:false"`
	Liked         *bool
	CurrentPage   *int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
