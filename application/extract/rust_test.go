package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whitehall-lang/ffibridge/domain/entities"
	"github.com/whitehall-lang/ffibridge/domain/errors"
)

func TestRustExtract_SimpleFunction(t *testing.T) {
	src := []byte(`
#[ffi]
pub fn add(a: i32, b: i32) -> i32 {
    a + b
}
`)

	funcs, err := NewRust().Extract("lib.rs", src)
	require.NoError(t, err)
	require.Len(t, funcs, 1)

	f := funcs[0]
	assert.Equal(t, "add", f.Name)
	assert.Equal(t, entities.Int32(), f.Return)
	assert.Equal(t, entities.DialectRust, f.Dialect)
	assert.Equal(t, 3, f.Loc.Line)
	assert.Equal(t, "add(i32, i32) -> i32", f.Signature())
}

func TestRustExtract_UnmarkedHelperExcluded(t *testing.T) {
	src := []byte(`
#[ffi]
pub fn add(a: i32, b: i32) -> i32 { a + b }

pub fn helper(x: i32) -> i32 { x * 2 }

#[ffi]
pub fn multiply(x: f64, y: f64) -> f64 { x * y }
`)

	funcs, err := NewRust().Extract("lib.rs", src)
	require.NoError(t, err)
	require.Len(t, funcs, 2)
	assert.Equal(t, "add", funcs[0].Name)
	assert.Equal(t, "multiply", funcs[1].Name)
}

func TestRustExtract_VoidReturn(t *testing.T) {
	src := []byte(`
#[ffi]
pub fn log_message(msg: String) {
    println!("{}", msg);
}
`)

	funcs, err := NewRust().Extract("lib.rs", src)
	require.NoError(t, err)
	require.Len(t, funcs, 1)
	assert.Equal(t, entities.Void(), funcs[0].Return)
	assert.Equal(t, entities.Text(), funcs[0].Params[0].Type)
}

func TestRustExtract_AllPrimitiveTypes(t *testing.T) {
	src := []byte(`
#[ffi]
fn mix(a: i64, b: u32, c: u64, d: f32, e: bool, f: &str) -> f64 { 0.0 }
`)

	funcs, err := NewRust().Extract("lib.rs", src)
	require.NoError(t, err)
	require.Len(t, funcs, 1)
	assert.Equal(t, "mix(i64, u32, u64, f32, bool, text) -> f64", funcs[0].Signature())
}

func TestRustExtract_CrateVisibility(t *testing.T) {
	src := []byte("#[ffi]\npub(crate) fn reverse(text: String) -> String { text }\n")

	funcs, err := NewRust().Extract("lib.rs", src)
	require.NoError(t, err)
	require.Len(t, funcs, 1)
	assert.Equal(t, "reverse", funcs[0].Name)
}

func TestRustExtract_VecFailsUnit(t *testing.T) {
	src := []byte(`
#[ffi]
pub fn double_values(values: Vec<i32>) -> Vec<i32> { values }
`)

	_, err := NewRust().Extract("lib.rs", src)
	require.Error(t, err)

	var sigErr *errors.UnsupportedSignatureError
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, "double_values", sigErr.Function)
}

func TestRustExtract_SelfReceiverFailsUnit(t *testing.T) {
	src := []byte("#[ffi]\nfn method(&self, x: i32) -> i32 { x }\n")

	_, err := NewRust().Extract("lib.rs", src)
	var sigErr *errors.UnsupportedSignatureError
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, "self", sigErr.TypeToken)
}

func TestForFile(t *testing.T) {
	e, ok := ForFile("src/ffi/cpp/string_utils.cpp")
	require.True(t, ok)
	assert.Equal(t, entities.DialectCpp, e.Dialect())

	e, ok = ForFile("src/ffi/rust/lib.rs")
	require.True(t, ok)
	assert.Equal(t, entities.DialectRust, e.Dialect())

	_, ok = ForFile("README.md")
	assert.False(t, ok)
}
