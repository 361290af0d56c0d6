package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whitehall-lang/ffibridge/domain/entities"
)

const stringUtilsCpp = `#include <string>

// @ffi
std::string to_uppercase(const std::string& input) {
    return input;
}

// @ffi
int count_vowels(const std::string& input) {
    return 0;
}

// Not exported.
int helper() {
    return 1;
}
`

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestGenerateCommand(t *testing.T) {
	srcDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")
	writeSource(t, srcDir, "string_utils.cpp", stringUtilsCpp)

	stdout, _, err := execute(t, "generate", srcDir, "--out-dir", outDir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "2 function(s)")

	assert.FileExists(t, filepath.Join(outDir, "native", "string_utils_bridge.cpp"))
	assert.FileExists(t, filepath.Join(outDir, "native", "whffi.hpp"))
	assert.FileExists(t, filepath.Join(outDir, "bindings", "string_utils_bindings.go"))

	data, err := os.ReadFile(filepath.Join(outDir, "manifest.json"))
	require.NoError(t, err)

	var m entities.Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	require.Len(t, m.Functions, 2)
	assert.Equal(t, "to_uppercase", m.Functions[0].Name)
	assert.Equal(t, "count_vowels", m.Functions[1].Name)
}

func TestGenerateCommandLibraryFlag(t *testing.T) {
	srcDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")
	writeSource(t, srcDir, "math.cpp", "// @ffi\nint add(int a, int b) { return a + b; }\n")

	_, _, err := execute(t, "generate", srcDir, "--out-dir", outDir, "--library", "mathlib")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, "manifest.json"))
	require.NoError(t, err)

	var m entities.Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "mathlib", m.Library)
}

func TestGenerateCommandReportsUnitFailure(t *testing.T) {
	srcDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")
	writeSource(t, srcDir, "bad.cpp", "// @ffi\nstd::vector<int> primes(int n) { return {}; }\n")

	_, stderr, err := execute(t, "generate", srcDir, "--out-dir", outDir)
	require.Error(t, err)
	assert.Contains(t, stderr, "primes")
}

func TestGenerateCommandNoSources(t *testing.T) {
	_, _, err := execute(t, "generate", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no source units")
}

func TestListCommand(t *testing.T) {
	srcDir := t.TempDir()
	writeSource(t, srcDir, "math.rs", "#[ffi]\npub fn add(a: i32, b: i32) -> i32 { a + b }\n")

	stdout, _, err := execute(t, "list", srcDir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "add(i32, i32) -> i32")
	assert.Contains(t, stdout, "math.rs")
}

func TestListCommandJSON(t *testing.T) {
	srcDir := t.TempDir()
	writeSource(t, srcDir, "math.rs", "#[ffi]\npub fn add(a: i32, b: i32) -> i32 { a + b }\n")

	stdout, _, err := execute(t, "list", srcDir, "--json")
	require.NoError(t, err)

	var m entities.Manifest
	require.NoError(t, json.Unmarshal([]byte(stdout), &m))
	require.Len(t, m.Functions, 1)
	assert.Equal(t, "add", m.Functions[0].Name)
}

func TestSchemaCommand(t *testing.T) {
	stdout, _, err := execute(t, "schema")
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &schema))
	assert.Contains(t, schema, "properties")
}
