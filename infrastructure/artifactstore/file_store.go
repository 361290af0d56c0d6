// Package artifactstore persists generated binding artifacts to disk.
package artifactstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/whitehall-lang/ffibridge/domain/entities"
	"github.com/whitehall-lang/ffibridge/domain/ports"
)

// fileStoreConfig holds configuration for the FileStore.
type fileStoreConfig struct {
	outDir   string
	hostDir  string      // subdirectory for host stubs, relative to outDir
	dirPerm  os.FileMode // permission for created directories
	filePerm os.FileMode // permission for written files
}

func defaultFileStoreConfig() fileStoreConfig {
	return fileStoreConfig{
		outDir:   "generated",
		hostDir:  "bindings",
		dirPerm:  0o755,
		filePerm: 0o644,
	}
}

// FileStoreOption configures a FileStore instance.
type FileStoreOption func(*fileStoreConfig)

// WithOutDir sets the root output directory.
func WithOutDir(dir string) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.outDir = dir
	}
}

// WithHostDir sets the subdirectory the host stubs are written to. It should
// match the host package name the stubs are generated with.
func WithHostDir(dir string) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.hostDir = dir
	}
}

// FileStore writes binding artifacts and the manifest under a single output
// directory: native adapter stubs in native/, host stubs in the host
// package subdirectory, and manifest.json at the root.
type FileStore struct {
	config fileStoreConfig
}

// NewFileStore creates a FileStore with the given options.
func NewFileStore(opts ...FileStoreOption) ports.ArtifactSink {
	cfg := defaultFileStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &FileStore{config: cfg}
}

// WriteArtifact persists one unit's native and host stubs.
func (s *FileStore) WriteArtifact(a entities.BindingArtifact) error {
	base := filepath.Base(a.Unit)
	ext := filepath.Ext(base)
	base = base[:len(base)-len(ext)]

	nativePath := filepath.Join(s.config.outDir, "native", a.NativeStubName(base))
	if err := s.writeFile(nativePath, []byte(a.NativeStub)); err != nil {
		return err
	}

	hostPath := filepath.Join(s.config.outDir, s.config.hostDir, base+"_bindings.go")
	return s.writeFile(hostPath, []byte(a.HostStub))
}

// WriteSupport persists a dialect's frame codec next to the native stubs
// that include it.
func (s *FileStore) WriteSupport(asset entities.SupportAsset) error {
	return s.writeFile(filepath.Join(s.config.outDir, "native", asset.Name), []byte(asset.Contents))
}

// WriteManifest persists the combined manifest as indented JSON so diffs of
// regenerated output stay readable.
func (s *FileStore) WriteManifest(m entities.Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')
	return s.writeFile(filepath.Join(s.config.outDir, "manifest.json"), data)
}

func (s *FileStore) writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), s.config.dirPerm); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, s.config.filePerm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
