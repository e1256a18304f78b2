package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	persistence_sqlite "github.com/M1tsumi/MatchForge-SDK/pkg/persistence/sqlite"
)

var flagMigrateDB string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the sqlite schema at --db",
	Long: `Open (creating if absent) the sqlite database at --db and apply the
matchd schema. Safe to run repeatedly: table creation uses
CREATE TABLE IF NOT EXISTS.

Examples:
  matchd migrate --db matchd.sqlite`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&flagMigrateDB, "db", "matchd.sqlite", "Path to the sqlite database file")
}

func runMigrate(_ *cobra.Command, _ []string) error {
	store, err := persistence_sqlite.Open(flagMigrateDB)
	if err != nil {
		return fmt.Errorf("matchd migrate: %w", err)
	}
	defer store.Close()

	slog.Info("matchd migrate: schema applied", "db", flagMigrateDB)
	return nil
}
