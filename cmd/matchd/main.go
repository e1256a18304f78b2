// matchd hosts the matchmaking engine: queue intake, party grouping,
// lobby lifecycle, and rating updates, driven by a Runner tick loop.
//
// Usage:
//
//	matchd run --config matchd.yaml      - Start the Runner against a config file
//	matchd migrate --db matchd.sqlite    - Create/upgrade the sqlite schema
//
// Global flags:
//
//	--config <path>   - Path to the YAML config file (default: matchd.yaml)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagConfigPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "matchd",
	Short: "matchd - skill-based matchmaking engine",
	Long: `matchd intakes players and parties into queues, forms matches
against queue constraints, carries them through the lobby lifecycle,
and updates player ratings at close.

Available commands:
  run      - Start the Runner tick loop against a config file
  migrate  - Create or upgrade the sqlite schema at a path

Examples:
  matchd run --config matchd.yaml
  matchd migrate --db matchd.sqlite`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "matchd.yaml", "Path to the YAML config file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(migrateCmd)
}
