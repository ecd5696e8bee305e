package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/entities"
	domainerrors "github.com/mrlokans/bookclub/internal/errors"
)

// deletedMarker appears in the NotFound message of a soft-deleted record and
// nowhere else.
const deletedMarker = " deleted: "

type lookupOptions struct {
	includeDeleted bool
}

// LookupOption adjusts a Find* call.
type LookupOption func(*lookupOptions)

// IncludeDeleted makes soft-deleted records visible. Only hard delete and
// administrative paths use it.
func IncludeDeleted() LookupOption {
	return func(o *lookupOptions) { o.includeDeleted = true }
}

// IsDeletedNotFound reports whether err is the NotFound returned for a record
// that exists but is soft-deleted.
func IsDeletedNotFound(err error) bool {
	var domainErr *domainerrors.Error
	if !errors.As(err, &domainErr) || domainErr.Code != domainerrors.CodeNotFound {
		return false
	}
	return strings.Contains(domainErr.Message, deletedMarker)
}

func FindBook(tx *gorm.DB, handle string, opts ...LookupOption) (*entities.Book, error) {
	var book entities.Book
	if err := findByKey(tx, &book, handle, opts); err != nil {
		return nil, err
	}
	return &book, nil
}

func FindUser(tx *gorm.DB, username string, opts ...LookupOption) (*entities.User, error) {
	var user entities.User
	if err := findByKey(tx, &user, username, opts); err != nil {
		return nil, err
	}
	return &user, nil
}

func FindClub(tx *gorm.DB, handle string, opts ...LookupOption) (*entities.Club, error) {
	var club entities.Club
	if err := findByKey(tx, &club, handle, opts); err != nil {
		return nil, err
	}
	return &club, nil
}

func FindComment(tx *gorm.DB, uuid int64, opts ...LookupOption) (*entities.Comment, error) {
	var comment entities.Comment
	if err := findByKey(tx, &comment, uuid, opts); err != nil {
		return nil, err
	}
	return &comment, nil
}

func findByKey(tx *gorm.DB, record entities.Keyed, key any, opts []LookupOption) error {
	var o lookupOptions
	for _, opt := range opts {
		opt(&o)
	}

	res := tx.Where(record.KeyColumn()+" = ?", key).Limit(1).Find(record)
	if res.Error != nil {
		return TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return domainerrors.NotFoundf("%s not found: %v", record.Kind(), key)
	}
	if record.IsDeleted() && !o.includeDeleted {
		return domainerrors.NotFound(fmt.Sprintf("%s%s%v", record.Kind(), deletedMarker, key))
	}
	return nil
}

// CheckKeyAvailable fails with AlreadyExists when any row holds key,
// soft-deleted or not. The unique index remains the final authority; this
// only produces a clean error in the common case.
func CheckKeyAvailable(tx *gorm.DB, record entities.Keyed, key string) error {
	var count int64
	err := tx.Model(record).Where(record.KeyColumn()+" = ?", key).Count(&count).Error
	if err != nil {
		return TranslateError(err)
	}
	if count != 0 {
		return domainerrors.AlreadyExistsf("%s with %s %s already exists", record.Kind(), record.KeyColumn(), key)
	}
	return nil
}
