package main

import (
	"errors"
	"fmt"

	"github.com/bodygraph/gatesdb/app"
	"github.com/bodygraph/gatesdb/domain/schema"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Strictly validate database files",
	Long: `Validate documents against the gates database structure.

Every file is decoded strictly: a missing required field or a value of the
wrong shape is reported with the JSON pointer of the offending value.
JSON and YAML files are accepted.

Kinds:
  database   gates database (default)
  circuits   circuit mapping
  centers    gate to center table

Examples:
  gatesdb validate data/ru.json data/es.json
  gatesdb validate --kind circuits data/circuits.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

var validateKind string

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateKind, "kind", app.KindDatabase, "document kind: database, circuits or centers")
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	failed := 0

	for _, path := range args {
		err := app.ValidateFile(path, validateKind)
		if err == nil {
			fmt.Fprintf(out, "  %s %s\n", checkMark, path)
			continue
		}

		failed++
		fmt.Fprintf(out, "  %s %s\n", crossMark, path)

		var sm *schema.StructuralMismatch
		if errors.As(err, &sm) {
			fmt.Fprintf(out, "      at %s: %s\n", pointerOrRoot(sm.Path), sm.Reason)
		} else {
			fmt.Fprintf(out, "      %v\n", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files invalid", failed, len(args))
	}
	fmt.Fprintf(out, "\n%d files valid\n", len(args))
	return nil
}

func pointerOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

// Output helpers
const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)
