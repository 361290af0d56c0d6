package abi

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/whitehall-lang/ffibridge/domain/entities"
)

// FrameVersion is the first byte of every call and result frame. Adapters
// generated by an older toolchain refuse frames with a version they do not
// know.
const FrameVersion = 1

// Tag identifies the wire encoding of a single value.
type Tag uint8

const (
	TagVoid Tag = iota
	TagBool
	TagI32
	TagI64
	TagU32
	TagU64
	TagF32
	TagF64
	TagText
)

// Result frame status codes.
const (
	StatusOK           uint8 = 0
	StatusMarshalError uint8 = 1
	StatusFault        uint8 = 2
)

// Wire error codes carried in non-OK result frames. These travel in the
// frame's error slot, distinct from the value slot, so a failure can never
// collide with a legitimate return value.
const (
	WireErrOutOfRange      uint8 = 1
	WireErrInvalidEncoding uint8 = 2
	WireErrArityMismatch   uint8 = 3
	WireErrFault           uint8 = 4
)

// TagFor maps a canonical type to its wire tag.
func TagFor(t entities.CanonicalType) (Tag, error) {
	switch t.Kind {
	case entities.KindVoid:
		return TagVoid, nil
	case entities.KindBool:
		return TagBool, nil
	case entities.KindText:
		return TagText, nil
	case entities.KindInteger:
		switch {
		case t.Width == 32 && t.Signed:
			return TagI32, nil
		case t.Width == 64 && t.Signed:
			return TagI64, nil
		case t.Width == 32:
			return TagU32, nil
		case t.Width == 64:
			return TagU64, nil
		}
	case entities.KindFloat:
		if t.Width == 32 {
			return TagF32, nil
		}
		if t.Width == 64 {
			return TagF64, nil
		}
	}
	return TagVoid, fmt.Errorf("abi: no wire tag for canonical type %s", t)
}

// Value is a single tagged value in its wire representation. Scalars live in
// Bits (integers two's-complement, floats as IEEE bit patterns); Text holds
// its own copy of the string.
type Value struct {
	Tag  Tag
	Bits uint64
	Text string
}

func VoidValue() Value         { return Value{Tag: TagVoid} }
func TextValue(s string) Value { return Value{Tag: TagText, Text: s} }
func I32Value(v int32) Value   { return Value{Tag: TagI32, Bits: uint64(uint32(v))} }
func I64Value(v int64) Value   { return Value{Tag: TagI64, Bits: uint64(v)} }
func U32Value(v uint32) Value  { return Value{Tag: TagU32, Bits: uint64(v)} }
func U64Value(v uint64) Value  { return Value{Tag: TagU64, Bits: v} }
func F32Value(v float32) Value { return Value{Tag: TagF32, Bits: uint64(math.Float32bits(v))} }
func F64Value(v float64) Value { return Value{Tag: TagF64, Bits: math.Float64bits(v)} }
func BoolValue(v bool) Value {
	b := uint64(0)
	if v {
		b = 1
	}
	return Value{Tag: TagBool, Bits: b}
}

// Typed accessors reinterpret Bits under the value's tag. The caller is
// responsible for checking the tag first.
func (v Value) AsI32() int32   { return int32(uint32(v.Bits)) }
func (v Value) AsI64() int64   { return int64(v.Bits) }
func (v Value) AsU32() uint32  { return uint32(v.Bits) }
func (v Value) AsU64() uint64  { return v.Bits }
func (v Value) AsF32() float32 { return math.Float32frombits(uint32(v.Bits)) }
func (v Value) AsF64() float64 { return math.Float64frombits(v.Bits) }
func (v Value) AsBool() bool   { return v.Bits != 0 }

// WireError is the error slot of a non-OK result frame. Arg is the index of
// the offending argument, or ArgNone for frame-level and return-side
// failures.
type WireError struct {
	Code    uint8
	Arg     int
	Message string
}

// ArgNone marks a wire error as not tied to a positional argument. It is
// encoded as the index byte 0xFF.
const ArgNone = -1

// EncodeCall encodes a call frame: version byte, argument count, then each
// argument as tag + payload.
func EncodeCall(args []Value) ([]byte, error) {
	if len(args) > math.MaxUint16 {
		return nil, fmt.Errorf("abi: too many arguments (%d)", len(args))
	}
	buf := make([]byte, 0, 3+len(args)*9)
	buf = append(buf, FrameVersion)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(args)))
	for i, v := range args {
		if v.Tag == TagVoid {
			return nil, fmt.Errorf("abi: argument %d: void cannot be passed", i)
		}
		buf = appendValue(buf, v)
	}
	return buf, nil
}

// DecodeCall decodes a call frame produced by EncodeCall (or the generated
// native adapters' mirror of it). Trailing bytes are an error.
func DecodeCall(frame []byte) ([]Value, error) {
	if len(frame) < 3 {
		return nil, fmt.Errorf("abi: call frame too short (%d bytes)", len(frame))
	}
	if frame[0] != FrameVersion {
		return nil, fmt.Errorf("abi: unknown frame version %d", frame[0])
	}
	argc := int(binary.LittleEndian.Uint16(frame[1:3]))
	rest := frame[3:]
	args := make([]Value, 0, argc)
	for i := 0; i < argc; i++ {
		v, n, err := decodeValue(rest)
		if err != nil {
			return nil, fmt.Errorf("abi: argument %d: %w", i, err)
		}
		if v.Tag == TagVoid {
			return nil, fmt.Errorf("abi: argument %d: void cannot be passed", i)
		}
		args = append(args, v)
		rest = rest[n:]
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("abi: %d trailing bytes after call frame", len(rest))
	}
	return args, nil
}

// EncodeResult encodes a successful result frame carrying one value
// (TagVoid for void-returning exports).
func EncodeResult(v Value) []byte {
	buf := make([]byte, 0, 2+9+len(v.Text))
	buf = append(buf, FrameVersion, StatusOK)
	return appendValue(buf, v)
}

// EncodeErrorResult encodes a failed result frame. The value slot is absent;
// the error slot carries the code, the offending argument index (ArgNone for
// frame-level or return-side failures), and the message. Indexes outside the
// signed byte range collapse to ArgNone.
func EncodeErrorResult(status uint8, code uint8, arg int, message string) []byte {
	if arg < ArgNone || arg > math.MaxInt8 {
		arg = ArgNone
	}
	buf := make([]byte, 0, 8+len(message))
	buf = append(buf, FrameVersion, status, code, byte(int8(arg)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(message)))
	return append(buf, message...)
}

// DecodeResult decodes a result frame. On StatusOK the value is returned and
// the WireError is nil; otherwise the value is void and the WireError is set.
// A malformed frame is an error in its own right.
func DecodeResult(frame []byte) (Value, *WireError, error) {
	if len(frame) < 2 {
		return Value{}, nil, fmt.Errorf("abi: result frame too short (%d bytes)", len(frame))
	}
	if frame[0] != FrameVersion {
		return Value{}, nil, fmt.Errorf("abi: unknown frame version %d", frame[0])
	}
	status := frame[1]
	rest := frame[2:]

	switch status {
	case StatusOK:
		v, n, err := decodeValue(rest)
		if err != nil {
			return Value{}, nil, fmt.Errorf("abi: result value: %w", err)
		}
		if len(rest) != n {
			return Value{}, nil, fmt.Errorf("abi: %d trailing bytes after result frame", len(rest)-n)
		}
		return v, nil, nil

	case StatusMarshalError, StatusFault:
		if len(rest) < 6 {
			return Value{}, nil, fmt.Errorf("abi: error slot too short (%d bytes)", len(rest))
		}
		code := rest[0]
		arg := int(int8(rest[1]))
		msgLen := binary.LittleEndian.Uint32(rest[2:6])
		if uint32(len(rest)-6) != msgLen {
			return Value{}, nil, fmt.Errorf("abi: error message length %d does not match frame", msgLen)
		}
		return VoidValue(), &WireError{Code: code, Arg: arg, Message: string(rest[6:])}, nil

	default:
		return Value{}, nil, fmt.Errorf("abi: unknown result status %d", status)
	}
}

func appendValue(buf []byte, v Value) []byte {
	buf = append(buf, byte(v.Tag))
	switch v.Tag {
	case TagVoid:
		// no payload
	case TagBool:
		buf = append(buf, byte(v.Bits&1))
	case TagI32, TagU32, TagF32:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(v.Bits))
	case TagI64, TagU64, TagF64:
		buf = binary.LittleEndian.AppendUint64(buf, v.Bits)
	case TagText:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(v.Text)))
		buf = append(buf, v.Text...)
	}
	return buf
}

func decodeValue(buf []byte) (Value, int, error) {
	if len(buf) < 1 {
		return Value{}, 0, fmt.Errorf("missing value tag")
	}
	tag := Tag(buf[0])
	rest := buf[1:]
	switch tag {
	case TagVoid:
		return VoidValue(), 1, nil
	case TagBool:
		if len(rest) < 1 {
			return Value{}, 0, fmt.Errorf("truncated bool")
		}
		if rest[0] > 1 {
			return Value{}, 0, fmt.Errorf("invalid bool byte %d", rest[0])
		}
		return Value{Tag: TagBool, Bits: uint64(rest[0])}, 2, nil
	case TagI32, TagU32, TagF32:
		if len(rest) < 4 {
			return Value{}, 0, fmt.Errorf("truncated 32-bit value")
		}
		return Value{Tag: tag, Bits: uint64(binary.LittleEndian.Uint32(rest))}, 5, nil
	case TagI64, TagU64, TagF64:
		if len(rest) < 8 {
			return Value{}, 0, fmt.Errorf("truncated 64-bit value")
		}
		return Value{Tag: tag, Bits: binary.LittleEndian.Uint64(rest)}, 9, nil
	case TagText:
		if len(rest) < 4 {
			return Value{}, 0, fmt.Errorf("truncated text length")
		}
		n := binary.LittleEndian.Uint32(rest)
		if uint64(len(rest)-4) < uint64(n) {
			return Value{}, 0, fmt.Errorf("truncated text payload (want %d bytes)", n)
		}
		return Value{Tag: TagText, Text: string(rest[4 : 4+n])}, 5 + int(n), nil
	default:
		return Value{}, 0, fmt.Errorf("unknown value tag %d", tag)
	}
}
