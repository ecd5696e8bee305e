package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/entities"
	domainerrors "github.com/mrlokans/bookclub/internal/errors"
	"github.com/mrlokans/bookclub/internal/logger"
)

// setupTestDB creates a fresh file-backed test database
func setupTestDB(t *testing.T) *Database {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := NewDatabase(dbPath, WithLogger(logger.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDatabase_MigratesSchema(t *testing.T) {
	db := setupTestDB(t)

	for _, table := range []string{"books", "users", "clubs", "reviews", "comments", "user_books",
		"club_book_link", "club_user_link", "review_comment_link", "audit_events"} {
		assert.True(t, db.DB.Migrator().HasTable(table), table)
	}

	var stats []entities.BookStatistics
	require.NoError(t, db.DB.Find(&stats).Error)
	assert.Empty(t, stats)
}

func TestNewDatabase_ForeignKeysEnabled(t *testing.T) {
	db := setupTestDB(t)

	var enabled int
	require.NoError(t, db.DB.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)

	err := db.DB.Create(&entities.UserBook{UserID: 41, BookID: 42}).Error
	assert.Error(t, err)
}

func TestNewDatabase_MigrateIsRepeatable(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Migrate())
}

func TestDatabase_TxRollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	boom := errors.New("boom")

	err := db.Tx(context.Background(), func(tx *gorm.DB) error {
		require.NoError(t, tx.Create(&entities.Book{Handle: "dune", FullName: "Dune"}).Error)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	db.DB.Model(&entities.Book{}).Count(&count)
	assert.Zero(t, count)
}

func TestDatabase_NestedScopeRollsBackAlone(t *testing.T) {
	db := setupTestDB(t)

	err := db.Tx(context.Background(), func(tx *gorm.DB) error {
		require.NoError(t, tx.Create(&entities.Book{Handle: "dune", FullName: "Dune"}).Error)
		nested := tx.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&entities.Book{Handle: "dune", FullName: "Duplicate"}).Error
		})
		assert.True(t, IsUniqueViolation(nested))
		return nil
	})
	require.NoError(t, err)

	var books []entities.Book
	db.DB.Find(&books)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].FullName)
}

func TestDatabase_ReadTxDoesNotWaitForWriter(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.DB.Create(&entities.Book{Handle: "dune", FullName: "Dune"}).Error)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := db.Tx(context.Background(), func(tx *gorm.DB) error {
		require.NoError(t, tx.Create(&entities.Book{Handle: "emma", FullName: "Emma"}).Error)

		var handles []string
		err := db.ReadTx(ctx, func(read *gorm.DB) error {
			return read.Model(&entities.Book{}).Order("handle").Pluck("handle", &handles).Error
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"dune"}, handles)
		return nil
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.ReadTx(context.Background(), func(read *gorm.DB) error {
		return read.Model(&entities.Book{}).Count(&count).Error
	}))
	assert.Equal(t, int64(2), count)
}

func TestDatabase_ReadTxRejectsWrites(t *testing.T) {
	db := setupTestDB(t)

	err := db.ReadTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&entities.Book{Handle: "dune", FullName: "Dune"}).Error
	})
	assert.Error(t, err)

	var count int64
	db.DB.Model(&entities.Book{}).Count(&count)
	assert.Zero(t, count)
}

func TestFindBook(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.DB.Create(&entities.Book{Handle: "dune", FullName: "Dune"}).Error)
	require.NoError(t, db.DB.Create(&entities.Book{Handle: "gone", FullName: "Gone", Deleted: true}).Error)

	t.Run("visible book", func(t *testing.T) {
		book, err := FindBook(db.DB, "dune")
		require.NoError(t, err)
		assert.Equal(t, "Dune", book.FullName)
	})

	t.Run("absent book", func(t *testing.T) {
		_, err := FindBook(db.DB, "missing")
		assert.ErrorIs(t, err, domainerrors.ErrNotFound)
		assert.False(t, IsDeletedNotFound(err))
		assert.Equal(t, "Book not found: missing", err.Error())
	})

	t.Run("soft-deleted book", func(t *testing.T) {
		_, err := FindBook(db.DB, "gone")
		assert.ErrorIs(t, err, domainerrors.ErrNotFound)
		assert.True(t, IsDeletedNotFound(err))
		assert.Equal(t, "Book deleted: gone", err.Error())
	})

	t.Run("soft-deleted book with bypass", func(t *testing.T) {
		book, err := FindBook(db.DB, "gone", IncludeDeleted())
		require.NoError(t, err)
		assert.True(t, book.Deleted)
	})
}

func TestCheckKeyAvailable(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.DB.Create(&entities.User{Username: "alice"}).Error)
	require.NoError(t, db.DB.Create(&entities.User{Username: "bob", Deleted: true}).Error)

	assert.NoError(t, CheckKeyAvailable(db.DB, &entities.User{}, "carol"))

	err := CheckKeyAvailable(db.DB, &entities.User{}, "alice")
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)

	err = CheckKeyAvailable(db.DB, &entities.User{}, "bob")
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestTranslateError(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.DB.Create(&entities.Book{Handle: "dune", FullName: "Dune"}).Error)

	raw := db.DB.Create(&entities.Book{Handle: "dune", FullName: "Again"}).Error
	require.Error(t, raw)

	assert.ErrorIs(t, TranslateError(raw), domainerrors.ErrAlreadyExists)
	assert.ErrorIs(t, TranslateError(gorm.ErrRecordNotFound), domainerrors.ErrNotFound)
	assert.ErrorIs(t, TranslateError(errors.New("disk full")), domainerrors.ErrInternal)
	assert.Nil(t, TranslateError(nil))

	passthrough := domainerrors.NotFound("Book not found: x")
	assert.Same(t, passthrough, TranslateError(passthrough))
}

func TestChanges_Apply(t *testing.T) {
	db := setupTestDB(t)
	pages := 412
	book := entities.Book{Handle: "dune", FullName: "Dune", Pages: &pages}
	require.NoError(t, db.DB.Create(&book).Error)

	same := 412
	changes := Changes{}
	Set(changes, "full_name", book.FullName, "Dune")
	SetOptional(changes, "pages", book.Pages, &same)
	SetOptional[string](changes, "description", book.Description, nil)

	changed, err := changes.Apply(db.DB, &book)
	require.NoError(t, err)
	assert.False(t, changed)

	more := 500
	changes = Changes{}
	SetOptional(changes, "pages", book.Pages, &more)
	changed, err = changes.Apply(db.DB, &book)
	require.NoError(t, err)
	assert.True(t, changed)

	reloaded, err := FindBook(db.DB, "dune")
	require.NoError(t, err)
	assert.Equal(t, 500, *reloaded.Pages)
}
