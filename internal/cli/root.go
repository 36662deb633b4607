// Package cli implements the lemmabank command-line interface.
package cli

import (
	"errors"
	"fmt"

	"github.com/example/lemmabank/internal/config"
	"github.com/example/lemmabank/internal/database"
	"github.com/example/lemmabank/internal/database/migrations"
	"github.com/example/lemmabank/internal/logging"
	"github.com/example/lemmabank/internal/migrate"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var envFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lemmabank",
	Short: "Lemma bank for language learners",
	Long: `lemmabank stores lemmas, wordforms, phrases, example sentences and the
reading sources learners work through, together with each learner's
vocabulary and its review schedule.

Quick start:
  lemmabank migrate up          Create or upgrade the database
  lemmabank import words.xlsx   Load lemmas from a spreadsheet
  lemmabank serve               Run the HTTP API`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newGenTSCmd())
}

// loadConfig reads the configuration and sets up logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.LogLevel, cfg.LogPretty)
	return cfg, nil
}

func openDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// migrateUp applies pending migrations; an up-to-date database is not an error.
func migrateUp(cmd *cobra.Command, db *sqlx.DB) error {
	m, err := migrations.NewMigrator(db)
	if err != nil {
		return err
	}
	if err := m.Up(cmd.Context()); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
