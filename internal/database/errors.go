package database

import (
	"errors"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	domainerrors "github.com/mrlokans/bookclub/internal/errors"
)

// IsUniqueViolation reports whether err is a unique or primary key
// constraint failure, either translated by gorm or raw from the driver.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// TranslateError maps storage failures onto domain errors. Domain errors pass
// through untouched. A unique violation that slipped past the availability
// pre-check becomes AlreadyExists; everything else becomes Internal with the
// storage error kept only as the cause.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return err
	}

	switch {
	case IsUniqueViolation(err):
		return domainerrors.AlreadyExists("resource already exists").WithCause(err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainerrors.NotFound("resource not found").WithCause(err)
	default:
		return domainerrors.Internal("internal storage error").WithCause(err)
	}
}
