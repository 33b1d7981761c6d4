package main

import (
	"fmt"
	"os"

	apihttp "github.com/bodygraph/gatesdb/adapters/http"
	"github.com/bodygraph/gatesdb/bootstrap"
	"github.com/bodygraph/gatesdb/config"
	"github.com/spf13/cobra"
)

var (
	hotReload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only HTTP API",
	Long: `Start the gatesdb HTTP API.

The server will:
  - Load configuration from gatesdb.yaml (or --config)
  - Or load configuration from GATESDB_* environment variables
  - Load the database of every configured locale
  - Record a snapshot of every loaded database
  - Reload a locale when its file changes or on SIGHUP

Environment variables (for Docker deployments):
  GATESDB_CATALOG_LOCALES   - Locale files: ru=/data/ru.json,es=/data/es.json (required)
  GATESDB_DATABASE_DSN      - Snapshot database path (default: in-memory)
  GATESDB_SERVER_PORT       - Server port (default: 8080)
  GATESDB_LOG_LEVEL         - Log level: debug, info, warn, error

Examples:
  gatesdb serve
  gatesdb serve --config /etc/gatesdb/gatesdb.yaml
  gatesdb serve --hot-reload=false

  # Docker (env vars only):
  GATESDB_CATALOG_LOCALES=ru=/data/ru.json gatesdb serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", false, "reload locale files when they change (overrides catalog.hot_reload)")
}

func runServe(cmd *cobra.Command, args []string) error {
	hasConfigFile := false
	if _, err := os.Stat(cfgFile); err == nil {
		hasConfigFile = true
	}

	// No configuration at all
	if !hasConfigFile && !config.HasEnvConfig() {
		fmt.Println("No configuration found.")
		fmt.Println()
		fmt.Printf("Option 1: Create %s with a catalog.locales section\n", cfgFile)
		fmt.Println("Option 2: Set GATESDB_CATALOG_LOCALES environment variable")
		fmt.Println()
		fmt.Println("Example (env vars):")
		fmt.Println("  GATESDB_CATALOG_LOCALES=ru=/data/ru.json gatesdb serve")
		return nil
	}

	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if !hasConfigFile {
		fmt.Println("Running with environment variables (no config file)")
	}
	if cmd.Flags().Changed("hot-reload") {
		cfg.Catalog.HotReload = hotReload
	}

	app, err := bootstrap.New(cfg, bootstrap.Options{
		Version: apihttp.VersionResponse{
			Version:   version,
			Commit:    commit,
			BuildDate: buildDate,
			Service:   "gatesdb",
		},
	})
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}
