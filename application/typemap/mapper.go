// Package typemap converts between native type tokens and the canonical
// type representation, and from canonical types to each target
// representation used by code generation.
//
// The mapping is total on the supported primitive set (fixed-width signed
// and unsigned integers, IEEE floats, bool, owned text, void) and rejects
// everything else: pointers, references to non-text aggregates, containers,
// and generics never silently coerce.
package typemap

import (
	"fmt"
	"strings"

	"github.com/whitehall-lang/ffibridge/domain/entities"
)

var cppTokens = map[string]entities.CanonicalType{
	"void":               entities.Void(),
	"bool":               entities.Bool(),
	"int":                entities.Int32(),
	"int32_t":            entities.Int32(),
	"long":               entities.Int64(),
	"long long":          entities.Int64(),
	"int64_t":            entities.Int64(),
	"unsigned":           entities.Uint32(),
	"unsigned int":       entities.Uint32(),
	"uint32_t":           entities.Uint32(),
	"unsigned long long": entities.Uint64(),
	"uint64_t":           entities.Uint64(),
	"float":              entities.Float32(),
	"double":             entities.Float64(),
	"std::string":        entities.Text(),
	"string":             entities.Text(),
}

var rustTokens = map[string]entities.CanonicalType{
	"()":     entities.Void(),
	"bool":   entities.Bool(),
	"i32":    entities.Int32(),
	"i64":    entities.Int64(),
	"u32":    entities.Uint32(),
	"u64":    entities.Uint64(),
	"f32":    entities.Float32(),
	"f64":    entities.Float64(),
	"String": entities.Text(),
	"&str":   entities.Text(),
}

// Native maps a native type token to its canonical type. The token is taken
// as written in source; C++ const and reference qualifiers are stripped when
// they wrap text (the one type whose ownership rule makes the qualifier
// irrelevant after the copy crosses the boundary).
func Native(dialect entities.Dialect, token string) (entities.CanonicalType, error) {
	trimmed := normalize(token)

	switch dialect {
	case entities.DialectCpp:
		if t, ok := cppTokens[trimmed]; ok {
			return t, nil
		}
		if stripped, ok := stripCppTextQualifiers(trimmed); ok {
			if t, found := cppTokens[stripped]; found && t.Kind == entities.KindText {
				return t, nil
			}
		}
		return entities.CanonicalType{}, rejectCpp(trimmed)

	case entities.DialectRust:
		if t, ok := rustTokens[trimmed]; ok {
			return t, nil
		}
		return entities.CanonicalType{}, rejectRust(trimmed)

	default:
		return entities.CanonicalType{}, fmt.Errorf("unknown dialect %q", dialect)
	}
}

// HostType returns the host-language (Go) representation of a canonical
// type. Void has no host representation and returns "".
func HostType(t entities.CanonicalType) string {
	switch t.Kind {
	case entities.KindVoid:
		return ""
	case entities.KindBool:
		return "bool"
	case entities.KindText:
		return "string"
	case entities.KindInteger:
		if t.Signed {
			return fmt.Sprintf("int%d", t.Width)
		}
		return fmt.Sprintf("uint%d", t.Width)
	case entities.KindFloat:
		return fmt.Sprintf("float%d", t.Width)
	default:
		return ""
	}
}

// NativeType returns the native spelling used in generated adapter stubs.
func NativeType(dialect entities.Dialect, t entities.CanonicalType) string {
	if dialect == entities.DialectRust {
		switch t.Kind {
		case entities.KindVoid:
			return "()"
		case entities.KindBool:
			return "bool"
		case entities.KindText:
			return "String"
		case entities.KindInteger:
			if t.Signed {
				return fmt.Sprintf("i%d", t.Width)
			}
			return fmt.Sprintf("u%d", t.Width)
		case entities.KindFloat:
			return fmt.Sprintf("f%d", t.Width)
		}
		return ""
	}

	switch t.Kind {
	case entities.KindVoid:
		return "void"
	case entities.KindBool:
		return "bool"
	case entities.KindText:
		return "std::string"
	case entities.KindInteger:
		if t.Signed {
			return fmt.Sprintf("int%d_t", t.Width)
		}
		return fmt.Sprintf("uint%d_t", t.Width)
	case entities.KindFloat:
		if t.Width == 32 {
			return "float"
		}
		return "double"
	}
	return ""
}

func normalize(token string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(token)), " ")
}

// stripCppTextQualifiers removes const and & from tokens like
// "const std::string&" so the owned-text rule applies. Qualifiers around any
// other type stay in place and get rejected by the caller.
func stripCppTextQualifiers(token string) (string, bool) {
	s := token
	changed := false
	if strings.HasPrefix(s, "const ") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "const "))
		changed = true
	}
	if strings.HasSuffix(s, "&") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "&"))
		changed = true
	}
	return s, changed
}

func rejectCpp(token string) error {
	switch {
	case strings.Contains(token, "*"):
		return fmt.Errorf("pointer type %q cannot cross the boundary", token)
	case strings.Contains(token, "std::vector"):
		return fmt.Errorf("container type %q is not in the supported primitive set", token)
	case strings.Contains(token, "<"):
		return fmt.Errorf("template type %q is not in the supported primitive set", token)
	case strings.Contains(token, "&"):
		return fmt.Errorf("reference type %q cannot cross the boundary", token)
	default:
		return fmt.Errorf("native type %q is outside the supported primitive set", token)
	}
}

func rejectRust(token string) error {
	switch {
	case strings.HasPrefix(token, "*"):
		return fmt.Errorf("raw pointer type %q cannot cross the boundary", token)
	case strings.HasPrefix(token, "&"):
		return fmt.Errorf("reference type %q cannot cross the boundary", token)
	case strings.HasPrefix(token, "Vec<") || strings.Contains(token, "<"):
		return fmt.Errorf("generic type %q is not in the supported primitive set", token)
	default:
		return fmt.Errorf("native type %q is outside the supported primitive set", token)
	}
}
