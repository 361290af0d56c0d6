package cli

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/whitehall-lang/ffibridge/application/extract"
	"github.com/whitehall-lang/ffibridge/application/generate"
	"github.com/whitehall-lang/ffibridge/application/pipeline"
	"github.com/whitehall-lang/ffibridge/infrastructure/artifactstore"
)

// newGenerateCmd creates the generate command.
func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate [path...]",
		Short: "Generate binding stubs and the manifest for annotated sources",
		Long: `Scan the given files and directories (or the configured source_dirs) for
exported function annotations and write the native adapter stubs, host
bindings, and manifest under the output directory.`,
		Example: `  # Generate bindings for the configured source directories
  ffibridge generate

  # Generate bindings for one directory into a custom output root
  ffibridge generate src/native --out-dir build/bindings`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args)
		},
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	paths := cfg.SourceDirs
	if len(args) > 0 {
		paths = args
	}

	units, err := collectUnits(paths)
	if err != nil {
		return err
	}
	if len(units) == 0 {
		return fmt.Errorf("no source units found under %s", strings.Join(paths, ", "))
	}

	library := cfg.Library
	if library == "" {
		library = inferLibrary(paths)
	}

	p := pipeline.New(
		pipeline.WithGenerator(generate.NewGenerator(
			generate.WithLibrary(library),
			generate.WithHostPackage(cfg.HostPackage),
		)),
		pipeline.WithSink(artifactstore.NewFileStore(
			artifactstore.WithOutDir(cfg.OutDir),
			artifactstore.WithHostDir(cfg.HostPackage),
		)),
		pipeline.WithParallelism(cfg.Parallelism),
		pipeline.WithLogger(slog.Default()),
	)

	report, err := p.Run(cmd.Context(), units)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Generated bindings for %d function(s) across %d unit(s) in %s\n",
		len(report.Manifest.Functions), len(report.Artifacts), cfg.OutDir)

	if report.Failed() {
		for unit, unitErr := range report.Failures {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %v\n", unit, unitErr)
		}
		return fmt.Errorf("%d of %d unit(s) failed", len(report.Failures), len(units))
	}
	return nil
}

// collectUnits gathers source units from the given files and directories.
// Directories are walked recursively; files without a recognized extension
// are skipped.
func collectUnits(paths []string) ([]pipeline.SourceUnit, error) {
	var units []pipeline.SourceUnit
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			src, err := os.ReadFile(root)
			if err != nil {
				return nil, err
			}
			units = append(units, pipeline.SourceUnit{Path: root, Source: src})
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if _, ok := extract.ForFile(path); !ok {
				return nil
			}
			src, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			units = append(units, pipeline.SourceUnit{Path: path, Source: src})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return units, nil
}

// inferLibrary derives a library name from the first source path.
func inferLibrary(paths []string) string {
	abs, err := filepath.Abs(paths[0])
	if err != nil {
		return "native"
	}
	base := filepath.Base(abs)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}
