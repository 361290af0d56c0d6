// Package pipeline orchestrates the build flow: per compilation unit,
// extract signatures, map types, and generate binding artifacts.
// Independent units are processed in parallel with no shared mutable state;
// the only cross-unit synchronization point is the merge step that builds
// the global export registry for collision detection after all units
// complete.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/whitehall-lang/ffibridge/application/extract"
	"github.com/whitehall-lang/ffibridge/application/generate"
	"github.com/whitehall-lang/ffibridge/domain/entities"
	"github.com/whitehall-lang/ffibridge/domain/ports"
)

// SourceUnit is one native source file to process.
type SourceUnit struct {
	Path   string
	Source []byte
}

// Report is the outcome of a pipeline run. A unit-level failure (an
// unsupported signature, say) is fatal to that unit's generation but does
// not abort independent units: successful artifacts are still produced and
// written.
type Report struct {
	Artifacts []entities.BindingArtifact
	Manifest  entities.Manifest
	Failures  map[string]error // unit path -> extraction/generation error
}

// Failed reports whether any unit failed.
func (r Report) Failed() bool {
	return len(r.Failures) > 0
}

// pipelineConfig holds configuration for the Pipeline.
type pipelineConfig struct {
	generator   *generate.Generator
	sink        ports.ArtifactSink
	logger      *slog.Logger
	parallelism int
}

func defaultPipelineConfig() pipelineConfig {
	return pipelineConfig{
		generator:   generate.NewGenerator(),
		logger:      slog.Default(),
		parallelism: runtime.NumCPU(),
	}
}

// Option configures the Pipeline.
type Option func(*pipelineConfig)

// WithGenerator sets the binding generator.
func WithGenerator(g *generate.Generator) Option {
	return func(c *pipelineConfig) {
		c.generator = g
	}
}

// WithSink sets the artifact sink. Without one, artifacts are only returned
// in the report.
func WithSink(s ports.ArtifactSink) Option {
	return func(c *pipelineConfig) {
		c.sink = s
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *pipelineConfig) {
		c.logger = l
	}
}

// WithParallelism caps the number of units processed concurrently.
func WithParallelism(n int) Option {
	return func(c *pipelineConfig) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

// Pipeline runs the extract -> map -> generate flow over source units.
type Pipeline struct {
	config pipelineConfig
}

// New creates a Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	cfg := defaultPipelineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Pipeline{config: cfg}
}

// unitResult is the per-unit outcome, written only by the goroutine owning
// the slot.
type unitResult struct {
	artifact entities.BindingArtifact
	err      error
	ok       bool
}

// Run processes all units and, if a sink is configured, writes the surviving
// artifacts and the combined manifest. A cross-unit name collision is a hard
// failure: nothing is written and the DuplicateExport error is returned.
func (p *Pipeline) Run(ctx context.Context, units []SourceUnit) (Report, error) {
	results := make([]unitResult, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.parallelism)
	for i, unit := range units {
		i, unit := i, unit
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.processUnit(unit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report := Report{Failures: make(map[string]error)}
	merged := generate.NewExportRegistry()

	for i, res := range results {
		if res.err != nil {
			p.config.logger.Warn("unit failed",
				"unit", units[i].Path,
				"error", res.err)
			report.Failures[units[i].Path] = res.err
			continue
		}
		if !res.ok {
			continue
		}
		// Collision detection across units happens here, after all units
		// completed, so unit processing itself needs no locking.
		if err := merged.AddAll(res.artifact.Functions); err != nil {
			return Report{}, err
		}
		report.Artifacts = append(report.Artifacts, res.artifact)
	}

	report.Manifest = p.config.generator.Manifest(merged.Functions())

	if p.config.sink != nil {
		dialects := make(map[entities.Dialect]bool)
		for _, artifact := range report.Artifacts {
			if err := p.config.sink.WriteArtifact(artifact); err != nil {
				return Report{}, fmt.Errorf("write artifact for %s: %w", artifact.Unit, err)
			}
			dialects[artifact.Dialect] = true
		}
		// One copy of the frame codec per dialect, next to the stubs that
		// include it.
		for _, dialect := range []entities.Dialect{entities.DialectCpp, entities.DialectRust} {
			if !dialects[dialect] {
				continue
			}
			if err := p.config.sink.WriteSupport(generate.SupportAsset(dialect)); err != nil {
				return Report{}, fmt.Errorf("write %s support: %w", dialect, err)
			}
		}
		if err := p.config.sink.WriteManifest(report.Manifest); err != nil {
			return Report{}, fmt.Errorf("write manifest: %w", err)
		}
	}

	p.config.logger.Info("pipeline complete",
		"units", len(units),
		"exports", merged.Len(),
		"failed", len(report.Failures))

	return report, nil
}

func (p *Pipeline) processUnit(unit SourceUnit) unitResult {
	extractor, ok := extract.ForFile(unit.Path)
	if !ok {
		return unitResult{err: fmt.Errorf("no extractor claims %s", unit.Path)}
	}

	funcs, err := extractor.Extract(unit.Path, unit.Source)
	if err != nil {
		return unitResult{err: err}
	}
	if len(funcs) == 0 {
		p.config.logger.Debug("unit has no exports", "unit", unit.Path)
		return unitResult{}
	}

	artifact, err := p.config.generator.Generate(unit.Path, extractor.Dialect(), funcs)
	if err != nil {
		return unitResult{err: err}
	}

	p.config.logger.Debug("unit generated",
		"unit", unit.Path,
		"exports", len(funcs))

	return unitResult{artifact: artifact, ok: true}
}
