package clubs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/database"
	"github.com/mrlokans/bookclub/internal/entities"
	domainerrors "github.com/mrlokans/bookclub/internal/errors"
	"github.com/mrlokans/bookclub/internal/logger"
	"github.com/mrlokans/bookclub/internal/models"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "clubs.db"), database.WithLogger(logger.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, name := range []string{"alice", "bob"} {
		require.NoError(t, db.DB.Create(&entities.User{Username: name}).Error)
	}
	for _, handle := range []string{"dune", "emma"} {
		require.NoError(t, db.DB.Create(&entities.Book{Handle: handle, FullName: handle}).Error)
	}
	return NewRepository(db.DB), db.DB
}

func ptr[T any](v T) *T { return &v }

func TestRepository_CreateClub(t *testing.T) {
	repo, _ := setupTestDB(t)

	handle, err := repo.Create(models.NewClub{Handle: "sci-fi", Owner: ptr("alice"), Description: ptr("Spaceships")})
	require.NoError(t, err)
	assert.Equal(t, "sci-fi", handle)

	club, err := repo.Get("sci-fi", false)
	require.NoError(t, err)
	assert.Equal(t, "alice", *club.Owner)
	assert.Equal(t, "Spaceships", *club.Description)

	_, err = repo.Create(models.NewClub{Handle: "sci-fi"})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)

	_, err = repo.Create(models.NewClub{Handle: "orphans", Owner: ptr("nobody")})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestRepository_ClubWithoutOwner(t *testing.T) {
	repo, _ := setupTestDB(t)

	_, err := repo.Create(models.NewClub{Handle: "open"})
	require.NoError(t, err)

	club, err := repo.Get("open", false)
	require.NoError(t, err)
	assert.Nil(t, club.Owner)
}

func TestRepository_OwnerSentinel(t *testing.T) {
	repo, db := setupTestDB(t)
	_, err := repo.Create(models.NewClub{Handle: "sci-fi", Owner: ptr("alice")})
	require.NoError(t, err)

	require.NoError(t, db.Model(&entities.User{}).Where("username = ?", "alice").Update("deleted", true).Error)

	club, err := repo.Get("sci-fi", false)
	require.NoError(t, err)
	assert.Equal(t, models.ReservedKey, *club.Owner)

	club, err = repo.Get("sci-fi", true)
	require.NoError(t, err)
	assert.Equal(t, "alice", *club.Owner)

	clubs, err := repo.List()
	require.NoError(t, err)
	require.Len(t, clubs, 1)
	assert.Equal(t, models.ReservedKey, *clubs[0].Owner)
}

func TestRepository_OwnerRemovedSetsNull(t *testing.T) {
	repo, db := setupTestDB(t)
	_, err := repo.Create(models.NewClub{Handle: "sci-fi", Owner: ptr("alice")})
	require.NoError(t, err)

	require.NoError(t, db.Where("username = ?", "alice").Delete(&entities.User{}).Error)

	club, err := repo.Get("sci-fi", true)
	require.NoError(t, err)
	assert.Nil(t, club.Owner)
}

func TestRepository_UpdateClub(t *testing.T) {
	repo, _ := setupTestDB(t)
	_, err := repo.Create(models.NewClub{Handle: "sci-fi", Owner: ptr("alice")})
	require.NoError(t, err)

	changed, err := repo.Update("sci-fi", models.NewClub{Handle: "sci-fi", Owner: ptr("alice")})
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = repo.Update("sci-fi", models.NewClub{Handle: "sci-fi", Owner: ptr("bob")})
	require.NoError(t, err)
	assert.True(t, changed)

	club, err := repo.Get("sci-fi", false)
	require.NoError(t, err)
	assert.Equal(t, "bob", *club.Owner)

	_, err = repo.Update("sci-fi", models.NewClub{Handle: "sci-fi", Owner: ptr("nobody")})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestRepository_UpdateKeepsDeletedOwner(t *testing.T) {
	repo, db := setupTestDB(t)
	_, err := repo.Create(models.NewClub{Handle: "sci-fi", Owner: ptr("alice")})
	require.NoError(t, err)
	require.NoError(t, db.Model(&entities.User{}).Where("username = ?", "alice").Update("deleted", true).Error)

	club, err := repo.Get("sci-fi", false)
	require.NoError(t, err)

	changed, err := repo.Update("sci-fi", models.NewClub{Handle: "sci-fi", Owner: club.Owner})
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = repo.Update("sci-fi", models.NewClub{Handle: "sci-fi", Owner: club.Owner, Description: ptr("Rockets")})
	require.NoError(t, err)
	assert.True(t, changed)

	club, err = repo.Get("sci-fi", true)
	require.NoError(t, err)
	assert.Equal(t, "alice", *club.Owner)
	assert.Equal(t, "Rockets", *club.Description)

	changed, err = repo.Update("sci-fi", models.NewClub{Handle: "sci-fi", Owner: ptr("bob")})
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestRepository_UpdateDeletedLabelWithLiveOwner(t *testing.T) {
	repo, _ := setupTestDB(t)
	_, err := repo.Create(models.NewClub{Handle: "sci-fi", Owner: ptr("alice")})
	require.NoError(t, err)

	_, err = repo.Update("sci-fi", models.NewClub{Handle: "sci-fi", Owner: ptr(models.ReservedKey)})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestRepository_DeleteClub(t *testing.T) {
	repo, _ := setupTestDB(t)
	_, err := repo.Create(models.NewClub{Handle: "sci-fi"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete("sci-fi", false))
	_, err = repo.Get("sci-fi", true)
	assert.True(t, database.IsDeletedNotFound(err))

	clubs, err := repo.List()
	require.NoError(t, err)
	assert.Empty(t, clubs)

	require.NoError(t, repo.Delete("sci-fi", true))
	require.NoError(t, repo.Delete("sci-fi", true))
}

func TestRepository_Members(t *testing.T) {
	repo, db := setupTestDB(t)
	_, err := repo.Create(models.NewClub{Handle: "sci-fi"})
	require.NoError(t, err)

	added, err := repo.AddMember("sci-fi", "bob")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.AddMember("sci-fi", "bob")
	require.NoError(t, err)
	assert.False(t, added)

	_, err = repo.AddMember("sci-fi", "alice")
	require.NoError(t, err)

	members, err := repo.Members("sci-fi")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "alice", members[0].Username)

	require.NoError(t, db.Model(&entities.User{}).Where("username = ?", "alice").Update("deleted", true).Error)
	members, err = repo.Members("sci-fi")
	require.NoError(t, err)
	assert.Len(t, members, 1)

	require.NoError(t, repo.RemoveMember("sci-fi", "bob"))
	assert.ErrorIs(t, repo.RemoveMember("sci-fi", "bob"), domainerrors.ErrNotFound)
}

func TestRepository_ReadingList(t *testing.T) {
	repo, db := setupTestDB(t)
	_, err := repo.Create(models.NewClub{Handle: "sci-fi"})
	require.NoError(t, err)

	for _, handle := range []string{"emma", "dune"} {
		added, err := repo.AddBook("sci-fi", handle)
		require.NoError(t, err)
		assert.True(t, added)
	}

	books, err := repo.Books("sci-fi")
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "dune", books[0].Handle)

	require.NoError(t, repo.RemoveBook("sci-fi", "dune"))
	books, err = repo.Books("sci-fi")
	require.NoError(t, err)
	assert.Len(t, books, 1)

	require.NoError(t, repo.Delete("sci-fi", true))
	var links int64
	db.Model(&entities.ClubBook{}).Count(&links)
	assert.Zero(t, links)
}
