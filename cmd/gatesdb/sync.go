package main

import (
	"fmt"

	"github.com/bodygraph/gatesdb/app"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy technical keys from one locale to another",
	Long: `Copy locale-independent fields from one database into another and
rewrite the destination.

Copied fields: gate center, circuit and subCircuit; channel circuit and
subCircuit. Translated text is never touched.

Examples:
  gatesdb sync --from data/ru.json --to data/es.json`,
	RunE: runSync,
}

var (
	syncFrom string
	syncTo   string
)

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVar(&syncFrom, "from", "", "source database (required)")
	syncCmd.Flags().StringVar(&syncTo, "to", "", "destination database, rewritten in place (required)")
	syncCmd.MarkFlagRequired("from")
	syncCmd.MarkFlagRequired("to")
}

func runSync(cmd *cobra.Command, args []string) error {
	db, err := app.SyncFiles(syncFrom, syncTo)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Synced %s -> %s (%d gates)\n", checkMark, syncFrom, syncTo, len(db.Gates))
	return nil
}
