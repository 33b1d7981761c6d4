package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gatesdb",
	Short: "Localized gates reference database: validation, tooling and read API",
	Long: `gatesdb maintains and serves localized gates reference databases.

Serving:
  gatesdb serve       # Start the read-only HTTP API

Tooling:
  gatesdb validate    # Strictly validate database files
  gatesdb build       # Enrich a database from auxiliary documents
  gatesdb sync        # Copy technical keys between locales
  gatesdb snapshots   # Inspect and import stored snapshots`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "gatesdb.yaml", "config file path")
}
