// Package commands implements the moodctl subcommands.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/karloscodes/cartridge"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"moodlens/internal/config"
	"moodlens/internal/database"
)

// Store is the database handle the commands work against
type Store interface {
	GetConnection() *gorm.DB
	MigrateDatabase() error
	Close() error
}

// Env carries what every command needs
type Env struct {
	Config *config.Config
	Logger *slog.Logger
	Store  Store
}

// Opener builds the command environment on first use
type Opener func() (*Env, error)

// Close releases the store, logging instead of failing the command
func (e *Env) Close() {
	if err := e.Store.Close(); err != nil {
		e.Logger.Warn("Failed to close database", slog.Any("error", err))
	}
}

// OpenEnv connects to the configured database
func OpenEnv() (*Env, error) {
	cfg := config.GetConfig()
	logger := cartridge.NewLogger(cfg, nil)

	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Env{Config: cfg, Logger: logger, Store: dbManager}, nil
}

// NewRootCommand creates moodctl with all subcommands attached
func NewRootCommand(open Opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "moodctl",
		Short: "moodctl - manage and analyse the moodlens entry store",
		Long: `moodctl works directly on the moodlens database.

Commands:
  migrate   Create or update the database schema
  seed      Fill the store with demo entries
  import    Load entries from a JSON file
  report    Compute the mood report
  status    Show store and connection status`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newMigrateCommand(open))
	rootCmd.AddCommand(newSeedCommand(open))
	rootCmd.AddCommand(newImportCommand(open))
	rootCmd.AddCommand(newReportCommand(open))
	rootCmd.AddCommand(newStatusCommand(open))

	return rootCmd
}
