package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/bodygraph/gatesdb/adapters/clock"
	"github.com/bodygraph/gatesdb/adapters/idgen"
	"github.com/bodygraph/gatesdb/adapters/sqlite"
	"github.com/bodygraph/gatesdb/app"
	"github.com/bodygraph/gatesdb/config"
	"github.com/bodygraph/gatesdb/ports"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Inspect and import stored database snapshots",
	Long: `Manage the snapshots recorded in the SQLite snapshot store.

A snapshot is recorded every time the server loads a locale whose content
differs from the locale's latest snapshot.

The store is taken from --db, or from database.dsn of the config file.`,
}

var snapshotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots, newest first",
	RunE:  runSnapshotsList,
}

var snapshotsImportCmd = &cobra.Command{
	Use:   "import <locale> <file>",
	Short: "Validate a database file and store it as a snapshot",
	Args:  cobra.ExactArgs(2),
	RunE:  runSnapshotsImport,
}

var snapshotsExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Write the document of a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotsExport,
}

var (
	snapshotsDB     string
	snapshotsLocale string
	snapshotsLimit  int
	snapshotsOut    string
)

func init() {
	rootCmd.AddCommand(snapshotsCmd)
	snapshotsCmd.AddCommand(snapshotsListCmd)
	snapshotsCmd.AddCommand(snapshotsImportCmd)
	snapshotsCmd.AddCommand(snapshotsExportCmd)

	snapshotsCmd.PersistentFlags().StringVar(&snapshotsDB, "db", "", "snapshot database path (default: database.dsn from config)")
	snapshotsListCmd.Flags().StringVar(&snapshotsLocale, "locale", "", "only list this locale")
	snapshotsListCmd.Flags().IntVar(&snapshotsLimit, "limit", 20, "maximum number of snapshots (-1 for all)")
	snapshotsExportCmd.Flags().StringVarP(&snapshotsOut, "out", "o", "", "output file (default: stdout)")
}

func openSnapshotDB() (*sqlite.DB, error) {
	dsn := snapshotsDB
	if dsn == "" {
		cfg, err := config.LoadWithFallback(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("no --db given and %w", err)
		}
		if cfg.Database.Driver != "sqlite" {
			return nil, fmt.Errorf("no --db given and database.driver is %q", cfg.Database.Driver)
		}
		dsn = cfg.Database.DSN
	}

	db, err := sqlite.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

func runSnapshotsList(cmd *cobra.Command, args []string) error {
	db, err := openSnapshotDB()
	if err != nil {
		return err
	}
	defer db.Close()

	snaps, err := sqlite.NewSnapshotStore(db).List(context.Background(), snapshotsLocale, snapshotsLimit)
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}

	if len(snaps) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No snapshots found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLOCALE\tCHECKSUM\tCREATED")
	fmt.Fprintln(w, "--\t------\t--------\t-------")

	for _, s := range snaps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Locale, shortChecksum(s.Checksum), s.CreatedAt.Format("2006-01-02 15:04"))
	}

	return w.Flush()
}

func runSnapshotsImport(cmd *cobra.Command, args []string) error {
	locale, path := args[0], args[1]

	db, err := openSnapshotDB()
	if err != nil {
		return err
	}
	defer db.Close()

	deps := app.CatalogDeps{
		Store:  sqlite.NewSnapshotStore(db),
		Clock:  clock.Real{},
		IDGen:  idgen.UUID{},
		Logger: zerolog.Nop(),
	}
	snap, saved, err := app.ImportSnapshot(context.Background(), deps, locale, path)
	if err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}

	if !saved {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s is unchanged from the latest %s snapshot\n", checkMark, path, locale)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Imported %s as %s (%s)\n", checkMark, path, snap.ID, shortChecksum(snap.Checksum))
	return nil
}

func runSnapshotsExport(cmd *cobra.Command, args []string) error {
	db, err := openSnapshotDB()
	if err != nil {
		return err
	}
	defer db.Close()

	snap, err := sqlite.NewSnapshotStore(db).Get(context.Background(), args[0])
	if errors.Is(err, ports.ErrNotFound) {
		return fmt.Errorf("snapshot %s not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("get snapshot: %w", err)
	}

	if snapshotsOut == "" {
		_, err = cmd.OutOrStdout().Write(snap.Document)
		return err
	}
	if err := os.WriteFile(snapshotsOut, snap.Document, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", snapshotsOut, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s\n", checkMark, snapshotsOut)
	return nil
}

func shortChecksum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}
