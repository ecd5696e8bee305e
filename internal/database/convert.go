package database

import (
	"github.com/mrlokans/bookclub/internal/entities"
	"github.com/mrlokans/bookclub/internal/models"
)

func BookModel(b *entities.Book) models.Book {
	return models.Book{
		Handle:      b.Handle,
		FullName:    b.FullName,
		Description: b.Description,
		Pages:       b.Pages,
	}
}

func UserModel(u *entities.User) models.User {
	return models.User{
		Username:    u.Username,
		Description: u.Description,
	}
}

func UserBookFields(ub *entities.UserBook, username string) *models.UserBookFields {
	fields := &models.UserBookFields{
		User:        username,
		Reviewed:    ub.Reviewed,
		Ignored:     ub.Ignored,
		Liked:       ub.Liked,
		CurrentPage: ub.CurrentPage,
	}
	if ub.ReadingStatus != nil {
		status := string(*ub.ReadingStatus)
		fields.ReadingStatus = &status
	}
	return fields
}

// OwnerLabel is what a club shows as its owner: the username, or the
// reserved label once the owner is soft-deleted unless reveal is set.
func OwnerLabel(owner *entities.User, reveal bool) *string {
	if owner == nil {
		return nil
	}
	label := owner.Username
	if owner.Deleted && !reveal {
		label = models.ReservedKey
	}
	return &label
}
