package comments

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
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "comments.db"), database.WithLogger(logger.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	alice := entities.User{Username: "alice"}
	require.NoError(t, db.DB.Create(&alice).Error)
	require.NoError(t, db.DB.Create(&entities.User{Username: "bob"}).Error)
	book := entities.Book{Handle: "dune", FullName: "Dune"}
	require.NoError(t, db.DB.Create(&book).Error)
	require.NoError(t, db.DB.Create(&entities.Review{UserID: &alice.ID, BookID: book.ID, Stars: 5, Title: "Spice"}).Error)
	return NewRepository(db.DB), db.DB
}

func TestRepository_CreateComment(t *testing.T) {
	repo, _ := setupTestDB(t)

	id, err := repo.Create(models.NewComment{User: "bob", Content: "Agreed"})
	require.NoError(t, err)
	assert.Positive(t, id)

	comment, err := repo.Get(id)
	require.NoError(t, err)
	assert.Equal(t, id, comment.UUID)
	assert.Equal(t, "bob", *comment.User)
	assert.Equal(t, "Agreed", comment.Content)

	_, err = repo.Create(models.NewComment{User: "nobody", Content: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestRepository_ReviewDiscussion(t *testing.T) {
	repo, _ := setupTestDB(t)
	ref := &models.ReviewRef{User: "alice", Book: "dune"}

	first, err := repo.Create(models.NewComment{User: "bob", Content: "First", Review: ref})
	require.NoError(t, err)
	_, err = repo.Create(models.NewComment{User: "alice", Content: "Second", Review: ref})
	require.NoError(t, err)
	_, err = repo.Create(models.NewComment{User: "alice", Content: "Elsewhere"})
	require.NoError(t, err)

	comments, err := repo.ListForReview("alice", "dune")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "First", comments[0].Content)
	assert.Equal(t, "Second", comments[1].Content)

	require.NoError(t, repo.Delete(first, false))
	comments, err = repo.ListForReview("alice", "dune")
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	_, err = repo.Create(models.NewComment{User: "bob", Content: "x", Review: &models.ReviewRef{User: "bob", Book: "dune"}})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestRepository_UpdateComment(t *testing.T) {
	repo, _ := setupTestDB(t)
	id, err := repo.Create(models.NewComment{User: "bob", Content: "Draft"})
	require.NoError(t, err)

	changed, err := repo.Update(id, models.NewComment{User: "alice", Content: "Draft"})
	require.NoError(t, err)
	assert.False(t, changed, "author is immutable and content is unchanged")

	changed, err = repo.Update(id, models.NewComment{User: "bob", Content: "Final"})
	require.NoError(t, err)
	assert.True(t, changed)

	comment, err := repo.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Final", comment.Content)
	assert.Equal(t, "bob", *comment.User)
}

func TestRepository_DeleteComment(t *testing.T) {
	repo, db := setupTestDB(t)
	id, err := repo.Create(models.NewComment{User: "bob", Content: "Bye"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(id, false))
	_, err = repo.Get(id)
	assert.True(t, database.IsDeletedNotFound(err))
	assert.ErrorIs(t, repo.Delete(id, false), domainerrors.ErrNotFound)

	require.NoError(t, repo.Delete(id, true))
	require.NoError(t, repo.Delete(id, true))

	var count int64
	db.Model(&entities.Comment{}).Count(&count)
	assert.Zero(t, count)
}

func TestRepository_AuthorRemoved(t *testing.T) {
	repo, db := setupTestDB(t)
	id, err := repo.Create(models.NewComment{User: "bob", Content: "Orphan"})
	require.NoError(t, err)

	require.NoError(t, db.Where("username = ?", "bob").Delete(&entities.User{}).Error)

	comment, err := repo.Get(id)
	require.NoError(t, err)
	assert.Nil(t, comment.User)
}
