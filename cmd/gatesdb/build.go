package main

import (
	"fmt"

	"github.com/bodygraph/gatesdb/app"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Enrich a database from auxiliary documents",
	Long: `Enrich a gates database and write it as indented JSON (or YAML for a
.yaml/.yml output path).

Steps:
  - Normalize line keys ("Line 3" becomes "3")
  - Set gate centers from the gate to center table (--centers)
  - Set the across gate of every gate that belongs to a channel
  - Classify gates and channels by circuit (--circuits)

Examples:
  gatesdb build --in data/ru.json --circuits data/circuits.json --centers data/gates_to_centers.json
  gatesdb build --in data/es.json --out dist/es.json`,
	RunE: runBuild,
}

var buildOpts app.BuildOptions

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&buildOpts.In, "in", "", "database to enrich (required)")
	buildCmd.Flags().StringVar(&buildOpts.Out, "out", "", "output path (default: overwrite --in)")
	buildCmd.Flags().StringVar(&buildOpts.Circuits, "circuits", "", "circuit mapping document")
	buildCmd.Flags().StringVar(&buildOpts.Centers, "centers", "", "gate to center table")
	buildCmd.MarkFlagRequired("in")
}

func runBuild(cmd *cobra.Command, args []string) error {
	opts := buildOpts
	if opts.Out == "" {
		opts.Out = opts.In
	}

	db, err := app.BuildFile(opts)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s (%d gates, %d channels)\n",
		checkMark, opts.Out, len(db.Gates), len(db.Channels))
	return nil
}
