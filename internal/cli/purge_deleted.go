package cli

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mrlokans/bookclub/internal/audit"
	"github.com/mrlokans/bookclub/internal/database"
	auditrepo "github.com/mrlokans/bookclub/internal/database/audit"
	"github.com/mrlokans/bookclub/internal/database/maintenance"
)

// PurgeDeletedCommand hard-deletes soft-deleted records once, the same work
// the nightly maintenance task does.
type PurgeDeletedCommand struct {
	DatabasePath string
	OlderThan    time.Duration
	Verbose      bool
}

func NewPurgeDeletedCommand() *PurgeDeletedCommand {
	return &PurgeDeletedCommand{}
}

func (cmd *PurgeDeletedCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("purge-deleted", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", defaultDatabasePath(), "Path to the database file")
	fs.DurationVar(&cmd.OlderThan, "older-than", 30*24*time.Hour, "Only purge records deleted longer ago than this")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s purge-deleted [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Permanently remove soft-deleted users, books, clubs, reviews and comments.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s purge-deleted\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s purge-deleted -older-than 0s -db ./bookclub.db\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.OlderThan < 0 {
		fs.Usage()
		return fmt.Errorf("older-than must not be negative")
	}

	return nil
}

func (cmd *PurgeDeletedCommand) Run() error {
	log := commandLogger(cmd.Verbose)
	db, err := database.NewDatabase(cmd.DatabasePath, database.WithLogger(log))
	if err != nil {
		return err
	}
	defer db.Close()

	auditService := audit.NewService(auditrepo.NewRepository(db.DB), log)
	defer auditService.Wait()

	cutoff := time.Now().Add(-cmd.OlderThan)
	result, err := maintenance.NewRepository(db.DB).PurgeDeleted(cutoff)
	auditService.LogPurge(result.Total(), cutoff, err)
	if err != nil {
		return fmt.Errorf("failed to purge deleted records: %w", err)
	}

	fmt.Printf("\n=== Purge Results ===\n")
	fmt.Printf("Comments: %d\n", result.Comments)
	fmt.Printf("Reviews:  %d\n", result.Reviews)
	fmt.Printf("Clubs:    %d\n", result.Clubs)
	fmt.Printf("Books:    %d\n", result.Books)
	fmt.Printf("Users:    %d\n", result.Users)
	fmt.Printf("Total:    %d\n", result.Total())
	return nil
}
