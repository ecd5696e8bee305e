package entities

// ClubBook puts a book on a club's reading list.
type ClubBook struct {
	ClubID uint  `gorm:"primaryKey;autoIncrement:false"`
	Club   *Club `gorm:"foreignKey:ClubID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	BookID uint  `gorm:"primaryKey;autoIncrement:false;index"`
	Book   *Book `gorm:"foreignKey:BookID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (ClubBook) TableName() string { return "club_book_link" }

// ClubMember makes a user a member of a club.
type ClubMember struct {
	ClubID uint  `gorm:"primaryKey;autoIncrement:false"`
	Club   *Club `gorm:"foreignKey:ClubID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	UserID uint  `gorm:"primaryKey;autoIncrement:false;index"`
	User   *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (ClubMember) TableName() string { return "club_user_link" }

// ReviewComment attaches a comment to the discussion of a review.
type ReviewComment struct {
	ReviewID  uint     `gorm:"primaryKey;autoIncrement:false"`
	Review    *Review  `gorm:"foreignKey:ReviewID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	CommentID uint     `gorm:"primaryKey;autoIncrement:false;index"`
	Comment   *Comment `gorm:"foreignKey:CommentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (ReviewComment) TableName() string { return "review_comment_link" }
