package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whitehall-lang/ffibridge/domain/entities"
	"github.com/whitehall-lang/ffibridge/domain/errors"
)

func TestCppExtract_SimpleFunction(t *testing.T) {
	src := []byte(`
// @ffi
int add(int a, int b) {
    return a + b;
}
`)

	funcs, err := NewCpp().Extract("math.cpp", src)
	require.NoError(t, err)
	require.Len(t, funcs, 1)

	f := funcs[0]
	assert.Equal(t, "add", f.Name)
	assert.Equal(t, entities.Int32(), f.Return)
	require.Len(t, f.Params, 2)
	assert.Equal(t, entities.Parameter{Name: "a", Type: entities.Int32()}, f.Params[0])
	assert.Equal(t, entities.Parameter{Name: "b", Type: entities.Int32()}, f.Params[1])
	assert.Equal(t, "math.cpp", f.Loc.File)
	assert.Equal(t, 3, f.Loc.Line)
	assert.Equal(t, "add(i32, i32) -> i32", f.Signature())
}

func TestCppExtract_UnmarkedHelperExcluded(t *testing.T) {
	src := []byte(`
// @ffi
int add(int a, int b) {
    return a + b;
}

// Not exported - must never leak across the boundary
int helper(int x) {
    return x * 2;
}

// @ffi
double multiply(double x, double y) {
    return x * y;
}
`)

	funcs, err := NewCpp().Extract("math.cpp", src)
	require.NoError(t, err)
	require.Len(t, funcs, 2)
	assert.Equal(t, "add", funcs[0].Name)
	assert.Equal(t, "multiply", funcs[1].Name)
	for _, f := range funcs {
		assert.NotEqual(t, "helper", f.Name)
	}
}

func TestCppExtract_NoParams(t *testing.T) {
	src := []byte("// @ffi\nint get_random() {\n    return 42;\n}\n")

	funcs, err := NewCpp().Extract("misc.cpp", src)
	require.NoError(t, err)
	require.Len(t, funcs, 1)
	assert.Equal(t, "get_random", funcs[0].Name)
	assert.Empty(t, funcs[0].Params)
}

func TestCppExtract_StringFunctions(t *testing.T) {
	src := []byte(`
// @ffi
std::string reverse_string(const std::string& str) {
    std::string result = str;
    std::reverse(result.begin(), result.end());
    return result;
}

// @ffi
std::string repeat_string(const std::string& str, int times) {
    return str;
}

// @ffi
bool is_palindrome(const std::string& str) {
    return true;
}
`)

	funcs, err := NewCpp().Extract("string_utils.cpp", src)
	require.NoError(t, err)
	require.Len(t, funcs, 3)

	assert.Equal(t, "reverse_string(text) -> text", funcs[0].Signature())
	assert.Equal(t, "repeat_string(text, i32) -> text", funcs[1].Signature())
	assert.Equal(t, "is_palindrome(text) -> bool", funcs[2].Signature())
}

func TestCppExtract_AllPrimitiveTypes(t *testing.T) {
	src := []byte(`
// @ffi
long long factorial(long long n) { return n; }

// @ffi
unsigned int mask(unsigned int bits) { return bits; }

// @ffi
float square(float x) { return x * x; }

// @ffi
void log_value(double v) { }
`)

	funcs, err := NewCpp().Extract("types.cpp", src)
	require.NoError(t, err)
	require.Len(t, funcs, 4)
	assert.Equal(t, entities.Int64(), funcs[0].Return)
	assert.Equal(t, entities.Uint32(), funcs[1].Return)
	assert.Equal(t, entities.Float32(), funcs[2].Return)
	assert.Equal(t, entities.Void(), funcs[3].Return)
	assert.Equal(t, entities.Float64(), funcs[3].Params[0].Type)
}

func TestCppExtract_ReferenceGluedToName(t *testing.T) {
	src := []byte("// @ffi\nint count_vowels(const std::string &str) { return 0; }\n")

	funcs, err := NewCpp().Extract("string_utils.cpp", src)
	require.NoError(t, err)
	require.Len(t, funcs, 1)
	assert.Equal(t, "str", funcs[0].Params[0].Name)
	assert.Equal(t, entities.Text(), funcs[0].Params[0].Type)
}

func TestCppExtract_UnsupportedTypeFailsUnit(t *testing.T) {
	src := []byte(`
// @ffi
int add(int a, int b) { return a + b; }

// @ffi
std::vector<int> double_values(std::vector<int> values) { return values; }
`)

	_, err := NewCpp().Extract("bad.cpp", src)
	require.Error(t, err)

	var sigErr *errors.UnsupportedSignatureError
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, "double_values", sigErr.Function)
	assert.Contains(t, sigErr.TypeToken, "std::vector")
	assert.Equal(t, "bad.cpp", sigErr.Loc.File)
	assert.Equal(t, 6, sigErr.Loc.Line)
}

func TestCppExtract_PointerParamFailsUnit(t *testing.T) {
	src := []byte("// @ffi\nint deref(int* p) { return *p; }\n")

	_, err := NewCpp().Extract("bad.cpp", src)
	var sigErr *errors.UnsupportedSignatureError
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, "deref", sigErr.Function)
}

func TestCppExtract_EmptySource(t *testing.T) {
	funcs, err := NewCpp().Extract("empty.cpp", nil)
	require.NoError(t, err)
	assert.Empty(t, funcs)
}
