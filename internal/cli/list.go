package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/whitehall-lang/ffibridge/application/extract"
	"github.com/whitehall-lang/ffibridge/domain/entities"
)

// newListCmd creates the list command.
func newListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list [path...]",
		Short: "List exported functions without generating anything",
		Example: `  # List exports found under the configured source directories
  ffibridge list

  # List exports of one file as JSON
  ffibridge list src/native/string_utils.cpp --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the manifest as JSON instead of text")
	return cmd
}

func runList(cmd *cobra.Command, args []string, asJSON bool) error {
	paths := cfg.SourceDirs
	if len(args) > 0 {
		paths = args
	}

	units, err := collectUnits(paths)
	if err != nil {
		return err
	}

	var funcs []entities.ExportedFunction
	for _, unit := range units {
		extractor, ok := extract.ForFile(unit.Path)
		if !ok {
			continue
		}
		found, err := extractor.Extract(unit.Path, unit.Source)
		if err != nil {
			return err
		}
		funcs = append(funcs, found...)
	}

	out := cmd.OutOrStdout()

	if asJSON {
		library := cfg.Library
		if library == "" {
			library = inferLibrary(paths)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entities.NewManifest(library, funcs))
	}

	if len(funcs) == 0 {
		fmt.Fprintln(out, "No exported functions found.")
		return nil
	}
	for _, f := range funcs {
		fmt.Fprintf(out, "%-10s %s  (%s)\n", f.Dialect, f.Signature(), f.Loc)
	}
	return nil
}
