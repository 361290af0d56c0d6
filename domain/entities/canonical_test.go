package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalSpellings(t *testing.T) {
	tests := []struct {
		typ  CanonicalType
		want string
	}{
		{Void(), "void"},
		{Bool(), "bool"},
		{Text(), "text"},
		{Int32(), "i32"},
		{Int64(), "i64"},
		{Uint32(), "u32"},
		{Uint64(), "u64"},
		{Float32(), "f32"},
		{Float64(), "f64"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.True(t, tt.typ.Valid())
			assert.Equal(t, tt.want, tt.typ.String())

			parsed, err := ParseCanonical(tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, parsed)
		})
	}
}

func TestParseCanonicalUnknown(t *testing.T) {
	for _, s := range []string{"", "i16", "string", "u8", "double"} {
		_, err := ParseCanonical(s)
		assert.Error(t, err, "spelling %q", s)
	}
}

func TestCanonicalValid(t *testing.T) {
	assert.False(t, CanonicalType{Kind: KindInteger, Width: 16, Signed: true}.Valid())
	assert.False(t, CanonicalType{Kind: KindFloat, Width: 64, Signed: true}.Valid())
	assert.False(t, CanonicalType{Kind: KindText, Width: 32}.Valid())
	assert.False(t, CanonicalType{Kind: Kind(99)}.Valid())
}

func TestSignature(t *testing.T) {
	f := ExportedFunction{
		Name: "repeat_string",
		Params: []Parameter{
			{Name: "input", Type: Text()},
			{Name: "times", Type: Int32()},
		},
		Return: Text(),
	}
	assert.Equal(t, "repeat_string(text, i32) -> text", f.Signature())
	assert.Equal(t, 2, f.Arity())
}

func TestManifestSignaturesRoundTrip(t *testing.T) {
	funcs := []ExportedFunction{
		{
			Name:   "is_palindrome",
			Params: []Parameter{{Name: "input", Type: Text()}},
			Return: Bool(),
			Loc:    SourceLocation{File: "string_utils.cpp", Line: 30},
		},
	}
	m := NewManifest("string_utils", funcs)

	sigs, err := m.Signatures()
	require.NoError(t, err)
	require.Contains(t, sigs, "is_palindrome")
	assert.Equal(t, funcs[0].Params, sigs["is_palindrome"].Params)
	assert.Equal(t, Bool(), sigs["is_palindrome"].Return)
	assert.Equal(t, funcs[0].Loc, sigs["is_palindrome"].Loc)
}

func TestManifestSignaturesRejectsUnknownType(t *testing.T) {
	m := Manifest{
		Version: ManifestVersion,
		Functions: []ManifestEntry{
			{Name: "f", Return: "i16"},
		},
	}
	_, err := m.Signatures()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "i16")
}

func TestManifestSignaturesRejectsDuplicate(t *testing.T) {
	m := Manifest{
		Version: ManifestVersion,
		Functions: []ManifestEntry{
			{Name: "f", Return: "void"},
			{Name: "f", Return: "void"},
		},
	}
	_, err := m.Signatures()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}
