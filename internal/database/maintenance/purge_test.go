package maintenance

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookclub/internal/database"
	"github.com/mrlokans/bookclub/internal/database/books"
	"github.com/mrlokans/bookclub/internal/entities"
	domainerrors "github.com/mrlokans/bookclub/internal/errors"
	"github.com/mrlokans/bookclub/internal/logger"
	"github.com/mrlokans/bookclub/internal/models"
)

func TestRepository_PurgeDeleted(t *testing.T) {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "purge.db"), database.WithLogger(logger.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	bookRepo := books.NewRepository(db.DB)
	for _, handle := range []string{"dune", "emma", "ulysses"} {
		_, err := bookRepo.Create(models.NewBook{Handle: handle, FullName: handle})
		require.NoError(t, err)
	}
	require.NoError(t, bookRepo.Delete("dune", false))
	require.NoError(t, bookRepo.Delete("emma", false))

	// emma was deleted recently and must survive the purge
	old := time.Now().Add(-72 * time.Hour)
	require.NoError(t, db.DB.Model(&entities.Book{}).Where("handle = ?", "dune").UpdateColumn("updated_at", old).Error)

	result, err := NewRepository(db.DB).PurgeDeleted(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Books)
	assert.Equal(t, int64(1), result.Total())

	_, err = bookRepo.Create(models.NewBook{Handle: "dune", FullName: "Dune"})
	assert.NoError(t, err, "purging a husk frees its handle")

	_, err = bookRepo.Create(models.NewBook{Handle: "emma", FullName: "Emma"})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}
