// Package generate emits the boundary-crossing shims for extracted
// signatures: a native-side adapter per compilation unit, a host-side Go
// stub with the same logical names, and the combined manifest.
//
// Generation is deterministic byte for byte for a given function list;
// functions are emitted in source order and templates carry no timestamps
// or environment-dependent content.
package generate

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/whitehall-lang/ffibridge/application/typemap"
	"github.com/whitehall-lang/ffibridge/domain/entities"
	"github.com/whitehall-lang/ffibridge/internal/abi"
)

// generatorConfig holds configuration for the Generator.
type generatorConfig struct {
	library     string
	hostPackage string
	modulePath  string
}

func defaultGeneratorConfig() generatorConfig {
	return generatorConfig{
		library:     "native",
		hostPackage: "bindings",
		modulePath:  "github.com/whitehall-lang/ffibridge",
	}
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*generatorConfig)

// WithLibrary sets the native library name recorded in manifests and stub
// headers.
func WithLibrary(name string) GeneratorOption {
	return func(c *generatorConfig) {
		c.library = name
	}
}

// WithHostPackage sets the package name of the generated host stub.
func WithHostPackage(name string) GeneratorOption {
	return func(c *generatorConfig) {
		c.hostPackage = name
	}
}

// Generator emits binding artifacts from extracted signatures.
type Generator struct {
	config generatorConfig
}

// NewGenerator creates a Generator with the given options.
func NewGenerator(opts ...GeneratorOption) *Generator {
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Generator{config: cfg}
}

// Generate emits the artifact for one compilation unit. Name collisions
// within the unit fail hard; cross-unit collisions are caught by the
// pipeline's merge step.
func (g *Generator) Generate(unit string, dialect entities.Dialect, funcs []entities.ExportedFunction) (entities.BindingArtifact, error) {
	reg := NewExportRegistry()
	if err := reg.AddAll(funcs); err != nil {
		return entities.BindingArtifact{}, err
	}

	native, err := g.renderNative(unit, dialect, funcs)
	if err != nil {
		return entities.BindingArtifact{}, fmt.Errorf("native stub for %s: %w", unit, err)
	}

	hostStub, err := g.renderHost(unit, funcs)
	if err != nil {
		return entities.BindingArtifact{}, fmt.Errorf("host stub for %s: %w", unit, err)
	}

	return entities.BindingArtifact{
		Unit:       unit,
		Dialect:    dialect,
		NativeStub: native,
		HostStub:   hostStub,
		Functions:  funcs,
	}, nil
}

// Manifest builds the combined manifest for all units' functions.
func (g *Generator) Manifest(funcs []entities.ExportedFunction) entities.Manifest {
	return entities.NewManifest(g.config.library, funcs)
}

func (g *Generator) renderNative(unit string, dialect entities.Dialect, funcs []entities.ExportedFunction) (string, error) {
	tmpl := cppStubTemplate
	if dialect == entities.DialectRust {
		tmpl = rustStubTemplate
	}

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, stubData{
		Unit:      unit,
		UnitBase:  unitBase(unit),
		Library:   g.config.library,
		Functions: funcs,
	})
	return buf.String(), err
}

func (g *Generator) renderHost(unit string, funcs []entities.ExportedFunction) (string, error) {
	var buf bytes.Buffer
	err := hostStubTemplate.Execute(&buf, stubData{
		Unit:       unit,
		UnitBase:   unitBase(unit),
		Library:    g.config.library,
		Package:    g.config.hostPackage,
		ModulePath: g.config.modulePath,
		Functions:  funcs,
	})
	return buf.String(), err
}

// stubData is the template payload shared by all stub templates.
type stubData struct {
	Unit       string
	UnitBase   string
	Library    string
	Package    string
	ModulePath string
	Functions  []entities.ExportedFunction
}

func unitBase(unit string) string {
	base := filepath.Base(unit)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// pascal converts snake_case export names to the exported Go identifier:
// "reverse_string" -> "ReverseString".
func pascal(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' })
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// zeroValue returns the Go zero-value literal for a canonical type, used in
// generated error returns.
func zeroValue(t entities.CanonicalType) string {
	switch t.Kind {
	case entities.KindBool:
		return "false"
	case entities.KindText:
		return `""`
	case entities.KindInteger, entities.KindFloat:
		return "0"
	default:
		return ""
	}
}

var templateFuncs = template.FuncMap{
	"pascal":  pascal,
	"zero":    zeroValue,
	"host":    typemap.HostType,
	"export":  func(name string) string { return abi.ExportPrefix + name },
	"isVoid":  func(t entities.CanonicalType) bool { return t.Kind == entities.KindVoid },
	"cppDecl": cppDecl,
	"cppArg":  cppArg,
	"rustSig": rustSig,
	"rustArg": rustArg,
	"ctor":    resultCtor,
}
