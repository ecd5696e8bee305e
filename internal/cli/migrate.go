package cli

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mrlokans/bookclub/internal/config"
	"github.com/mrlokans/bookclub/internal/database"
	"github.com/mrlokans/bookclub/internal/logger"
)

// MigrateCommand creates or updates the schema without starting the server.
type MigrateCommand struct {
	DatabasePath string
	Verbose      bool
}

func NewMigrateCommand() *MigrateCommand {
	return &MigrateCommand{}
}

func (cmd *MigrateCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", defaultDatabasePath(), "Path to the database file")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s migrate [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create or update the database schema and the statistics view.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s migrate\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s migrate -db ./bookclub.db\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *MigrateCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath, database.WithLogger(commandLogger(cmd.Verbose)))
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Printf("Database schema is up to date: %s\n", cmd.DatabasePath)
	return nil
}

// defaultDatabasePath honours DATABASE_PATH so commands find the same file
// as the server.
func defaultDatabasePath() string {
	if path := os.Getenv("DATABASE_PATH"); path != "" {
		return path
	}
	return config.DefaultDatabasePath
}

func commandLogger(verbose bool) *slog.Logger {
	if !verbose {
		return logger.Discard()
	}
	return logger.New(logger.Config{Writer: os.Stderr, Format: logger.FormatText, Level: slog.LevelDebug})
}
