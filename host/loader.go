package host

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/whitehall-lang/ffibridge/domain/entities"
	"github.com/whitehall-lang/ffibridge/domain/ports"
)

// LoadManifest parses a manifest produced at generation time and checks it
// is one this runtime understands.
func LoadManifest(data []byte) (entities.Manifest, error) {
	var m entities.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return entities.Manifest{}, fmt.Errorf("host: parse manifest: %w", err)
	}
	if m.Version != entities.ManifestVersion {
		return entities.Manifest{}, fmt.Errorf("host: manifest version %d not supported (want %d)",
			m.Version, entities.ManifestVersion)
	}
	return m, nil
}

// LoadManifestFile reads and parses a manifest from disk.
func LoadManifestFile(path string) (entities.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entities.Manifest{}, fmt.Errorf("host: read manifest: %w", err)
	}
	return LoadManifest(data)
}

// NewCallerFromManifest builds a Caller directly from a parsed manifest.
func NewCallerFromManifest(m entities.Manifest, invoker ports.Invoker, opts ...CallerOption) (*Caller, error) {
	sigs, err := m.Signatures()
	if err != nil {
		return nil, err
	}
	return NewCaller(sigs, invoker, opts...)
}
