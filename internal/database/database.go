package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/entities"
	"github.com/mrlokans/bookclub/internal/logger"
)

// connectionParams turns on foreign keys for every pooled connection and
// makes transactions take the write lock up front.
const connectionParams = "_foreign_keys=on&_journal=WAL&_busy_timeout=5000&_txlock=immediate"

// readerParams open query-only connections whose transactions start
// deferred. Under WAL they read a snapshot without taking the write lock.
const readerParams = "_foreign_keys=on&_busy_timeout=5000&_txlock=deferred&_query_only=true"

// Database owns the connection pools. It is created once at startup and
// passed to whatever needs storage. DB serves writes; reads that need no
// write lock go through ReadTx.
type Database struct {
	DB     *gorm.DB
	reader *gorm.DB
	log    *slog.Logger
}

// Option configures NewDatabase.
type Option func(*Database)

// WithLogger routes gorm's logging through l.
func WithLogger(l *slog.Logger) Option {
	return func(d *Database) { d.log = l }
}

func NewDatabase(dbPath string, opts ...Option) (*Database, error) {
	database := &Database{log: slog.Default()}
	for _, opt := range opts {
		opt(database)
	}

	db, err := database.open(dsn(dbPath, connectionParams))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	database.DB = db

	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, err
	}

	reader, err := database.open(dsn(dbPath, readerParams))
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to open read pool: %w", err)
	}
	database.reader = reader

	database.log.Info("database initialized", "path", dbPath)
	return database, nil
}

// Migrate creates or updates all tables and recreates the statistics view.
func (d *Database) Migrate() error {
	err := d.DB.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.Club{},
		&entities.Review{},
		&entities.Comment{},
		&entities.UserBook{},
		&entities.ClubBook{},
		&entities.ClubMember{},
		&entities.ReviewComment{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := d.DB.Exec("DROP VIEW IF EXISTS books_statistics").Error; err != nil {
		return fmt.Errorf("failed to drop statistics view: %w", err)
	}
	if err := d.DB.Exec(entities.BookStatisticsView).Error; err != nil {
		return fmt.Errorf("failed to create statistics view: %w", err)
	}
	return nil
}

// Tx runs fn in one transaction scoped to a request. It commits when fn
// returns nil and rolls back on error or panic; the connection goes back to
// the pool either way. Repositories built on tx nest their own writes as
// savepoints.
func (d *Database) Tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}

// ReadTx runs fn in a deferred, query-only transaction on the read pool. It
// sees one consistent snapshot and does not wait behind writers. Any write
// inside fn fails.
func (d *Database) ReadTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.reader.WithContext(ctx).Transaction(fn)
}

// Ping checks the pool can reach the database file.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes both pools.
func (d *Database) Close() error {
	var errs []error
	for _, db := range []*gorm.DB{d.reader, d.DB} {
		if db == nil {
			continue
		}
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Close()
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *Database) open(source string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(source), &gorm.Config{
		Logger:         logger.Gorm(d.log),
		TranslateError: true,
	})
}

func dsn(dbPath, params string) string {
	if strings.Contains(dbPath, "?") {
		return dbPath + "&" + params
	}
	return dbPath + "?" + params
}
