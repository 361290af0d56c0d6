package generate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whitehall-lang/ffibridge/domain/entities"
	"github.com/whitehall-lang/ffibridge/domain/errors"
)

func sampleFunctions() []entities.ExportedFunction {
	return []entities.ExportedFunction{
		{
			Name: "reverse_string",
			Params: []entities.Parameter{
				{Name: "str", Type: entities.Text()},
			},
			Return:  entities.Text(),
			Dialect: entities.DialectCpp,
			Loc:     entities.SourceLocation{File: "string_utils.cpp", Line: 9},
		},
		{
			Name: "add",
			Params: []entities.Parameter{
				{Name: "a", Type: entities.Int32()},
				{Name: "b", Type: entities.Int32()},
			},
			Return:  entities.Int32(),
			Dialect: entities.DialectCpp,
			Loc:     entities.SourceLocation{File: "string_utils.cpp", Line: 21},
		},
		{
			Name: "log_message",
			Params: []entities.Parameter{
				{Name: "msg", Type: entities.Text()},
			},
			Return:  entities.Void(),
			Dialect: entities.DialectCpp,
			Loc:     entities.SourceLocation{File: "string_utils.cpp", Line: 30},
		},
	}
}

func TestGenerate_CppArtifact(t *testing.T) {
	g := NewGenerator(WithLibrary("stringutils"))

	artifact, err := g.Generate("src/ffi/cpp/string_utils.cpp", entities.DialectCpp, sampleFunctions())
	require.NoError(t, err)

	assert.Equal(t, "src/ffi/cpp/string_utils.cpp", artifact.Unit)
	assert.Equal(t, entities.DialectCpp, artifact.Dialect)
	assert.Len(t, artifact.Functions, 3)

	// Native adapter: one prefixed export per function, calling the original
	// exactly once.
	assert.Contains(t, artifact.NativeStub, "uint64_t wh_reverse_string(uint64_t frame)")
	assert.Contains(t, artifact.NativeStub, "uint64_t wh_add(uint64_t frame)")
	assert.Contains(t, artifact.NativeStub, "extern std::string reverse_string(const std::string& str);")
	assert.Contains(t, artifact.NativeStub, "whffi::ResultFrame::i32(add(args.i32(0), args.i32(1)))")
	assert.Equal(t, 1, strings.Count(artifact.NativeStub, "add(args.i32(0), args.i32(1))"))

	// Host stub: same logical names, host-native signatures.
	assert.Contains(t, artifact.HostStub, "package bindings")
	assert.Contains(t, artifact.HostStub, "func (b *Bindings) ReverseString(ctx context.Context, arg0 string) (string, error)")
	assert.Contains(t, artifact.HostStub, "func (b *Bindings) Add(ctx context.Context, arg0 int32, arg1 int32) (int32, error)")
	assert.Contains(t, artifact.HostStub, "func (b *Bindings) LogMessage(ctx context.Context, arg0 string) error")
	assert.Contains(t, artifact.HostStub, `b.caller.Call(ctx, "reverse_string", arg0)`)
}

func TestGenerate_RustArtifact(t *testing.T) {
	funcs := []entities.ExportedFunction{
		{
			Name: "multiply",
			Params: []entities.Parameter{
				{Name: "x", Type: entities.Float64()},
				{Name: "y", Type: entities.Float64()},
			},
			Return:  entities.Float64(),
			Dialect: entities.DialectRust,
			Loc:     entities.SourceLocation{File: "lib.rs", Line: 4},
		},
	}

	g := NewGenerator(WithLibrary("rustmath"))
	artifact, err := g.Generate("src/ffi/rust/lib.rs", entities.DialectRust, funcs)
	require.NoError(t, err)

	assert.Contains(t, artifact.NativeStub, `pub extern "C" fn wh_multiply(frame: u64) -> u64`)
	assert.Contains(t, artifact.NativeStub, "whffi::CallFrame::decode(frame, 2)")
	assert.Contains(t, artifact.NativeStub, "multiply(args.f64(0), args.f64(1))")
	assert.Contains(t, artifact.NativeStub, "whffi::ResultFrame::f64(out).encode()")
}

func TestGenerate_Deterministic(t *testing.T) {
	g := NewGenerator(WithLibrary("stringutils"))

	first, err := g.Generate("unit.cpp", entities.DialectCpp, sampleFunctions())
	require.NoError(t, err)
	second, err := g.Generate("unit.cpp", entities.DialectCpp, sampleFunctions())
	require.NoError(t, err)

	assert.Equal(t, first.NativeStub, second.NativeStub)
	assert.Equal(t, first.HostStub, second.HostStub)
}

func TestGenerate_DuplicateExportFails(t *testing.T) {
	funcs := []entities.ExportedFunction{
		{Name: "add", Return: entities.Int32(), Loc: entities.SourceLocation{File: "a.cpp", Line: 3}},
		{Name: "add", Return: entities.Int64(), Loc: entities.SourceLocation{File: "a.cpp", Line: 9}},
	}

	_, err := NewGenerator().Generate("a.cpp", entities.DialectCpp, funcs)
	require.Error(t, err)

	var dup *errors.DuplicateExportError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "add", dup.Name)
	assert.Equal(t, "a.cpp:3", dup.First.String())
	assert.Equal(t, "a.cpp:9", dup.Second.String())
	assert.Contains(t, dup.Error(), "a.cpp:3")
	assert.Contains(t, dup.Error(), "a.cpp:9")
}

func TestManifest_PreservesSourceOrder(t *testing.T) {
	g := NewGenerator(WithLibrary("stringutils"))
	m := g.Manifest(sampleFunctions())

	assert.Equal(t, entities.ManifestVersion, m.Version)
	assert.Equal(t, "stringutils", m.Library)
	require.Len(t, m.Functions, 3)
	assert.Equal(t, "reverse_string", m.Functions[0].Name)
	assert.Equal(t, "add", m.Functions[1].Name)
	assert.Equal(t, "log_message", m.Functions[2].Name)
	assert.Equal(t, "text", m.Functions[0].Return)
	assert.Equal(t, "i32", m.Functions[1].Params[0].Type)
}

func TestPascal(t *testing.T) {
	assert.Equal(t, "ReverseString", pascal("reverse_string"))
	assert.Equal(t, "Add", pascal("add"))
	assert.Equal(t, "ToUppercase", pascal("to_uppercase"))
	assert.Equal(t, "IsPalindrome", pascal("is-palindrome"))
}

