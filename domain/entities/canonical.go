// Package entities defines the core domain types of the binding pipeline:
// canonical type representations, exported function signatures, and the
// artifacts produced by code generation.
package entities

import "fmt"

// Kind discriminates the closed set of canonical type variants.
type Kind uint8

const (
	KindVoid Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindText
)

// CanonicalType is the boundary layer's own type representation. It decouples
// the native type system from the host type system: every native type the
// extractor accepts maps to exactly one CanonicalType, and every CanonicalType
// has a defined representation on both sides of the call boundary.
type CanonicalType struct {
	Kind   Kind
	Width  uint8 // bits: 32 or 64 for Integer and Float, 0 otherwise
	Signed bool  // Integer only
}

// Convenience constructors for the supported canonical set.
func Void() CanonicalType { return CanonicalType{Kind: KindVoid} }
func Bool() CanonicalType { return CanonicalType{Kind: KindBool} }
func Text() CanonicalType { return CanonicalType{Kind: KindText} }

func Int32() CanonicalType  { return CanonicalType{Kind: KindInteger, Width: 32, Signed: true} }
func Int64() CanonicalType  { return CanonicalType{Kind: KindInteger, Width: 64, Signed: true} }
func Uint32() CanonicalType { return CanonicalType{Kind: KindInteger, Width: 32} }
func Uint64() CanonicalType { return CanonicalType{Kind: KindInteger, Width: 64} }

func Float32() CanonicalType { return CanonicalType{Kind: KindFloat, Width: 32} }
func Float64() CanonicalType { return CanonicalType{Kind: KindFloat, Width: 64} }

// Valid reports whether the type is a member of the supported canonical set.
func (t CanonicalType) Valid() bool {
	switch t.Kind {
	case KindVoid, KindBool, KindText:
		return t.Width == 0 && !t.Signed
	case KindInteger, KindFloat:
		if t.Kind == KindFloat && t.Signed {
			return false
		}
		return t.Width == 32 || t.Width == 64
	default:
		return false
	}
}

// String returns the canonical spelling used in manifests and diagnostics:
// void, bool, text, i32, i64, u32, u64, f32, f64.
func (t CanonicalType) String() string {
	switch t.Kind {
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindText:
		return "text"
	case KindInteger:
		if t.Signed {
			return fmt.Sprintf("i%d", t.Width)
		}
		return fmt.Sprintf("u%d", t.Width)
	case KindFloat:
		return fmt.Sprintf("f%d", t.Width)
	default:
		return fmt.Sprintf("invalid(%d)", t.Kind)
	}
}

// ParseCanonical parses a canonical spelling back into a CanonicalType.
// It is the inverse of String for all valid types and is used when loading
// manifests at runtime.
func ParseCanonical(s string) (CanonicalType, error) {
	switch s {
	case "void":
		return Void(), nil
	case "bool":
		return Bool(), nil
	case "text":
		return Text(), nil
	case "i32":
		return Int32(), nil
	case "i64":
		return Int64(), nil
	case "u32":
		return Uint32(), nil
	case "u64":
		return Uint64(), nil
	case "f32":
		return Float32(), nil
	case "f64":
		return Float64(), nil
	default:
		return CanonicalType{}, fmt.Errorf("unknown canonical type %q", s)
	}
}
