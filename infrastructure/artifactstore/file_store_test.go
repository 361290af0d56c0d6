package artifactstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whitehall-lang/ffibridge/domain/entities"
)

func TestFileStoreWriteArtifact(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(WithOutDir(dir))

	err := store.WriteArtifact(entities.BindingArtifact{
		Unit:       "src/string_utils.cpp",
		Dialect:    entities.DialectCpp,
		NativeStub: "// native stub\n",
		HostStub:   "// host stub\n",
	})
	require.NoError(t, err)

	native, err := os.ReadFile(filepath.Join(dir, "native", "string_utils_bridge.cpp"))
	require.NoError(t, err)
	assert.Equal(t, "// native stub\n", string(native))

	host, err := os.ReadFile(filepath.Join(dir, "bindings", "string_utils_bindings.go"))
	require.NoError(t, err)
	assert.Equal(t, "// host stub\n", string(host))
}

func TestFileStoreWriteArtifactRust(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(WithOutDir(dir), WithHostDir("native"))

	err := store.WriteArtifact(entities.BindingArtifact{
		Unit:       "math.rs",
		Dialect:    entities.DialectRust,
		NativeStub: "// bridge\n",
		HostStub:   "// host\n",
	})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "native", "math_bridge.rs"))
	assert.FileExists(t, filepath.Join(dir, "native", "math_bindings.go"))
}

func TestFileStoreWriteSupport(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(WithOutDir(dir))

	err := store.WriteSupport(entities.SupportAsset{
		Dialect:  entities.DialectCpp,
		Name:     "whffi.hpp",
		Contents: "// codec\n",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "native", "whffi.hpp"))
	require.NoError(t, err)
	assert.Equal(t, "// codec\n", string(data))
}

func TestFileStoreWriteManifest(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(WithOutDir(dir))

	manifest := entities.NewManifest("string_utils", []entities.ExportedFunction{
		{
			Name:   "add",
			Params: []entities.Parameter{{Name: "a", Type: entities.Int32()}},
			Return: entities.Int32(),
			Loc:    entities.SourceLocation{File: "math.cpp", Line: 2},
		},
	})
	require.NoError(t, store.WriteManifest(manifest))

	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	require.NoError(t, err)

	var round entities.Manifest
	require.NoError(t, json.Unmarshal(data, &round))
	assert.Equal(t, manifest, round)
}
