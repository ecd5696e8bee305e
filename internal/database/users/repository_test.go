package users

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/database"
	"github.com/mrlokans/bookclub/internal/entities"
	domainerrors "github.com/mrlokans/bookclub/internal/errors"
	"github.com/mrlokans/bookclub/internal/logger"
	"github.com/mrlokans/bookclub/internal/models"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "users.db"), database.WithLogger(logger.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.DB).WithBcryptCost(bcrypt.MinCost), db.DB
}

func ptr[T any](v T) *T { return &v }

func TestRepository_CreateUser(t *testing.T) {
	repo, db := setupTestDB(t)

	username, err := repo.Create(models.NewUser{
		Username:    "alice",
		Description: ptr("reads a lot"),
		Password:    ptr("correct horse"),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	user, err := repo.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, "reads a lot", *user.Description)

	var record entities.User
	require.NoError(t, db.Where("username = ?", "alice").First(&record).Error)
	require.NotNil(t, record.PasswordHash)
	assert.NotEqual(t, "correct horse", *record.PasswordHash)

	ok, err := repo.CheckPassword("alice", "correct horse")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRepository_CreateUserTaken(t *testing.T) {
	repo, _ := setupTestDB(t)

	_, err := repo.Create(models.NewUser{Username: "alice"})
	require.NoError(t, err)

	_, err = repo.Create(models.NewUser{Username: "alice"})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
	assert.Equal(t, "Username alice is taken", err.Error())
}

func TestRepository_PasswordOverBcryptLimit(t *testing.T) {
	repo, db := setupTestDB(t)
	// 72 characters, 144 bytes.
	password := strings.Repeat("é", 72)

	_, err := repo.Create(models.NewUser{Username: "alice", Password: &password})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	var count int64
	require.NoError(t, db.Model(&entities.User{}).Count(&count).Error)
	assert.Zero(t, count)

	_, err = repo.Create(models.NewUser{Username: "alice"})
	require.NoError(t, err)
	_, err = repo.Update("alice", models.NewUser{Username: "alice", Password: &password})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestRepository_UpdateUser(t *testing.T) {
	repo, _ := setupTestDB(t)
	_, err := repo.Create(models.NewUser{Username: "alice", Password: ptr("first password")})
	require.NoError(t, err)

	changed, err := repo.Update("alice", models.NewUser{Username: "alice", Password: ptr("first password")})
	require.NoError(t, err)
	assert.False(t, changed, "same password is not a change")

	changed, err = repo.Update("alice", models.NewUser{Username: "alice", Password: ptr("second password")})
	require.NoError(t, err)
	assert.True(t, changed)

	ok, err := repo.CheckPassword("alice", "second password")
	require.NoError(t, err)
	assert.True(t, ok)

	changed, err = repo.Update("alice", models.NewUser{Username: "alice", Description: ptr("hello")})
	require.NoError(t, err)
	assert.True(t, changed)

	user, err := repo.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, "hello", *user.Description)
}

func TestRepository_DeleteUser(t *testing.T) {
	repo, _ := setupTestDB(t)
	_, err := repo.Create(models.NewUser{Username: "alice"})
	require.NoError(t, err)
	_, err = repo.Create(models.NewUser{Username: "bob"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete("alice", false))

	_, err = repo.Get("alice")
	assert.True(t, database.IsDeletedNotFound(err))

	users, err := repo.List()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Username)

	_, err = repo.Create(models.NewUser{Username: "alice"})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists, "a soft-deleted user still holds the username")

	require.NoError(t, repo.Delete("alice", true))
	_, err = repo.Create(models.NewUser{Username: "alice"})
	assert.NoError(t, err)
}

func TestRepository_HardDeleteDetachesAuthorship(t *testing.T) {
	repo, db := setupTestDB(t)
	_, err := repo.Create(models.NewUser{Username: "alice"})
	require.NoError(t, err)
	alice, err := database.FindUser(db, "alice")
	require.NoError(t, err)

	book := entities.Book{Handle: "dune", FullName: "Dune"}
	require.NoError(t, db.Create(&book).Error)
	require.NoError(t, db.Create(&entities.UserBook{UserID: alice.ID, BookID: book.ID}).Error)
	review := entities.Review{UserID: &alice.ID, BookID: book.ID, Stars: 5, Title: "Great"}
	require.NoError(t, db.Create(&review).Error)

	require.NoError(t, repo.Delete("alice", true))

	var count int64
	db.Model(&entities.UserBook{}).Count(&count)
	assert.Zero(t, count)

	var reloaded entities.Review
	require.NoError(t, db.First(&reloaded, review.ID).Error)
	assert.Nil(t, reloaded.UserID)
}
