// Package config provides configuration management for the ffibridge CLI.
//
// Configuration is layered: built-in defaults, then an optional
// ffibridge.yaml file, then FFIBRIDGE_* environment variables, then CLI
// flags. Later layers win.
package config

// Config holds the effective CLI configuration after all layers are merged.
type Config struct {
	// SourceDirs are the directories scanned for native source units.
	SourceDirs []string `koanf:"source_dirs" validate:"required,min=1,dive,required"`

	// OutDir is the root directory generated artifacts are written under.
	OutDir string `koanf:"out_dir" validate:"required"`

	// Library names the native library in the emitted manifest. Empty means
	// infer it from the first source directory's base name.
	Library string `koanf:"library"`

	// HostPackage is the package name of the generated host stubs.
	HostPackage string `koanf:"host_package" validate:"required,alphanum"`

	// Parallelism caps concurrent unit processing. Zero means one worker
	// per CPU.
	Parallelism int `koanf:"parallelism" validate:"gte=0"`

	Verbose bool `koanf:"verbose"`
}

// Defaults for config values not set by any layer.
const (
	DefaultOutDir      = "generated"
	DefaultHostPackage = "bindings"
)

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"source_dirs":  []string{"."},
		"out_dir":      DefaultOutDir,
		"host_package": DefaultHostPackage,
		"parallelism":  0,
		"verbose":      false,
	}
}
