package cli

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/database"
	"github.com/mrlokans/bookclub/internal/database/books"
	"github.com/mrlokans/bookclub/internal/entities"
	"github.com/mrlokans/bookclub/internal/logger"
	"github.com/mrlokans/bookclub/internal/models"
)

func TestMigrateCommand_ParseFlags(t *testing.T) {
	cmd := NewMigrateCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-db", "/tmp/club.db", "-verbose"}))

	assert.Equal(t, "/tmp/club.db", cmd.DatabasePath)
	assert.True(t, cmd.Verbose)
}

func TestMigrateCommand_DefaultPathFromEnv(t *testing.T) {
	t.Setenv("DATABASE_PATH", "/data/club.db")

	cmd := NewMigrateCommand()
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Equal(t, "/data/club.db", cmd.DatabasePath)
}

func TestMigrateCommand_Run(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "club.db")
	cmd := &MigrateCommand{DatabasePath: dbPath}

	require.NoError(t, cmd.Run())
	// A second run against an existing schema is a no-op.
	require.NoError(t, cmd.Run())

	db, err := database.NewDatabase(dbPath, database.WithLogger(logger.Discard()))
	require.NoError(t, err)
	defer db.Close()
	assert.True(t, db.DB.Migrator().HasTable(&entities.Book{}))
}

func TestPurgeDeletedCommand_ParseFlags(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cmd := NewPurgeDeletedCommand()
		require.NoError(t, cmd.ParseFlags(nil))
		assert.Equal(t, 30*24*time.Hour, cmd.OlderThan)
	})

	t.Run("custom retention", func(t *testing.T) {
		cmd := NewPurgeDeletedCommand()
		require.NoError(t, cmd.ParseFlags([]string{"-older-than", "2h"}))
		assert.Equal(t, 2*time.Hour, cmd.OlderThan)
	})

	t.Run("negative retention", func(t *testing.T) {
		cmd := NewPurgeDeletedCommand()
		assert.Error(t, cmd.ParseFlags([]string{"-older-than", "-1h"}))
	})
}

func TestPurgeDeletedCommand_Run(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "club.db")
	db, err := database.NewDatabase(dbPath, database.WithLogger(logger.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		repo := books.NewRepository(tx)
		for _, handle := range []string{"dune", "emma"} {
			if _, err := repo.Create(models.NewBook{Handle: handle, FullName: handle}); err != nil {
				return err
			}
		}
		return repo.Delete("emma", false)
	})
	require.NoError(t, err)

	cmd := &PurgeDeletedCommand{DatabasePath: dbPath}
	require.NoError(t, cmd.Run())

	var handles []string
	require.NoError(t, db.DB.Model(&entities.Book{}).Order("handle").Pluck("handle", &handles).Error)
	assert.Equal(t, []string{"dune"}, handles)

	var events int64
	require.NoError(t, db.DB.Model(&entities.AuditEvent{}).Where("action = ?", "purge_deleted").Count(&events).Error)
	assert.Equal(t, int64(1), events)
}
