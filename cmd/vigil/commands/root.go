package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vigil",
	Short: "Vigil - deterministic NASDAQ scanner with self-auditing health",
	Long: `Vigil Unified CLI

Deterministic stock scoring with a sanity health layer and
config-driven strategy weight evolution.

Usage:
  go run ./cmd/vigil [command]

Examples:
  go run ./cmd/vigil scan
  go run ./cmd/vigil evolve
  go run ./cmd/vigil api
  go run ./cmd/vigil gate artifacts/health_score.json`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
