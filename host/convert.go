package host

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/whitehall-lang/ffibridge/domain/entities"
	domainerrors "github.com/whitehall-lang/ffibridge/domain/errors"
	"github.com/whitehall-lang/ffibridge/internal/abi"
)

// encodeArg converts one Go argument to its wire value, enforcing the
// declared canonical type. Integers that do not fit the declared width and
// text that is not valid UTF-8 are rejected here, before the call frame is
// ever built.
func encodeArg(fn string, idx int, t entities.CanonicalType, arg any) (abi.Value, error) {
	switch t.Kind {
	case entities.KindBool:
		b, ok := arg.(bool)
		if !ok {
			return typeMismatch(fn, idx, t, arg)
		}
		return abi.BoolValue(b), nil

	case entities.KindText:
		s, ok := arg.(string)
		if !ok {
			return typeMismatch(fn, idx, t, arg)
		}
		if !utf8.ValidString(s) {
			return abi.Value{}, &domainerrors.MarshalError{
				Function: fn,
				Arg:      idx,
				Kind:     domainerrors.KindInvalidEncoding,
				Reason:   "text is not valid UTF-8",
			}
		}
		return abi.TextValue(s), nil

	case entities.KindInteger:
		return encodeInteger(fn, idx, t, arg)

	case entities.KindFloat:
		return encodeFloat(fn, idx, t, arg)
	}

	return abi.Value{}, fmt.Errorf("host: %s: argument %d has unsupported type %s", fn, idx, t)
}

func encodeInteger(fn string, idx int, t entities.CanonicalType, arg any) (abi.Value, error) {
	if t.Signed {
		var v int64
		switch a := arg.(type) {
		case int:
			v = int64(a)
		case int32:
			v = int64(a)
		case int64:
			v = a
		default:
			return typeMismatch(fn, idx, t, arg)
		}
		if t.Width == 32 {
			if v < math.MinInt32 || v > math.MaxInt32 {
				return outOfRange(fn, idx, t, fmt.Sprintf("%d", v))
			}
			return abi.I32Value(int32(v)), nil
		}
		return abi.I64Value(v), nil
	}

	var v uint64
	switch a := arg.(type) {
	case uint:
		v = uint64(a)
	case uint32:
		v = uint64(a)
	case uint64:
		v = a
	case int:
		if a < 0 {
			return outOfRange(fn, idx, t, fmt.Sprintf("%d", a))
		}
		v = uint64(a)
	case int64:
		if a < 0 {
			return outOfRange(fn, idx, t, fmt.Sprintf("%d", a))
		}
		v = uint64(a)
	default:
		return typeMismatch(fn, idx, t, arg)
	}
	if t.Width == 32 {
		if v > math.MaxUint32 {
			return outOfRange(fn, idx, t, fmt.Sprintf("%d", v))
		}
		return abi.U32Value(uint32(v)), nil
	}
	return abi.U64Value(v), nil
}

func encodeFloat(fn string, idx int, t entities.CanonicalType, arg any) (abi.Value, error) {
	var v float64
	switch a := arg.(type) {
	case float32:
		v = float64(a)
	case float64:
		v = a
	default:
		return typeMismatch(fn, idx, t, arg)
	}
	if t.Width == 32 {
		// A finite float64 that overflows to infinity in float32 does not
		// fit the declared width. Infinities passed in deliberately are fine.
		narrowed := float32(v)
		if math.IsInf(float64(narrowed), 0) && !math.IsInf(v, 0) {
			return outOfRange(fn, idx, t, fmt.Sprintf("%g", v))
		}
		return abi.F32Value(narrowed), nil
	}
	return abi.F64Value(v), nil
}

func typeMismatch(fn string, idx int, t entities.CanonicalType, arg any) (abi.Value, error) {
	return abi.Value{}, &domainerrors.MarshalError{
		Function: fn,
		Arg:      idx,
		Kind:     domainerrors.KindTypeMismatch,
		Reason:   fmt.Sprintf("cannot pass %T as %s", arg, t),
	}
}

func outOfRange(fn string, idx int, t entities.CanonicalType, val string) (abi.Value, error) {
	return abi.Value{}, &domainerrors.MarshalError{
		Function: fn,
		Arg:      idx,
		Kind:     domainerrors.KindOutOfRange,
		Reason:   fmt.Sprintf("%s does not fit in %s", val, t),
	}
}

// decodeResult converts the result frame's value slot back to the host
// representation of the declared return type.
func decodeResult(fn entities.ExportedFunction, v abi.Value) (any, error) {
	want, err := abi.TagFor(fn.Return)
	if err != nil {
		return nil, fmt.Errorf("host: %s: %w", fn.Name, err)
	}
	if v.Tag != want {
		return nil, &domainerrors.MarshalError{
			Function: fn.Name,
			Arg:      domainerrors.ArgReturn,
			Kind:     domainerrors.KindTypeMismatch,
			Reason:   fmt.Sprintf("native returned tag %d, declared type is %s", v.Tag, fn.Return),
		}
	}

	switch v.Tag {
	case abi.TagVoid:
		return nil, nil
	case abi.TagBool:
		return v.AsBool(), nil
	case abi.TagI32:
		return v.AsI32(), nil
	case abi.TagI64:
		return v.AsI64(), nil
	case abi.TagU32:
		return v.AsU32(), nil
	case abi.TagU64:
		return v.AsU64(), nil
	case abi.TagF32:
		return v.AsF32(), nil
	case abi.TagF64:
		return v.AsF64(), nil
	case abi.TagText:
		if !utf8.ValidString(v.Text) {
			return nil, &domainerrors.MarshalError{
				Function: fn.Name,
				Arg:      domainerrors.ArgReturn,
				Kind:     domainerrors.KindInvalidEncoding,
				Reason:   "native returned text that is not valid UTF-8",
			}
		}
		return v.Text, nil
	}
	return nil, fmt.Errorf("host: %s: unknown result tag %d", fn.Name, v.Tag)
}
