// Package errors provides domain-specific error types for the binding layer.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/whitehall-lang/ffibridge/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// DetailedError is an interface for error types that can convert themselves
// to a structured ErrorDetail for reports and wire frames.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to a structured ErrorDetail.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// UnsupportedSignatureError reports a marked declaration whose type cannot be
// represented canonically. It fails extraction of the whole unit.
type UnsupportedSignatureError struct {
	Function  string
	TypeToken string // offending native type as written in source
	Loc       entities.SourceLocation
}

func (e *UnsupportedSignatureError) Error() string {
	return fmt.Sprintf("unsupported signature for %q at %s: type %q cannot cross the boundary",
		e.Function, e.Loc, e.TypeToken)
}

// ToErrorDetail implements DetailedError.
func (e *UnsupportedSignatureError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message:  e.Error(),
		Type:     "signature",
		Code:     e.TypeToken,
		Function: e.Function,
		Location: e.Loc.String(),
	}
}

// DuplicateExportError reports two exported declarations sharing a qualified
// name. Generation fails hard; both declaration sites are named.
type DuplicateExportError struct {
	Name   string
	First  entities.SourceLocation
	Second entities.SourceLocation
}

func (e *DuplicateExportError) Error() string {
	return fmt.Sprintf("duplicate export %q: declared at %s and %s", e.Name, e.First, e.Second)
}

// ToErrorDetail implements DetailedError.
func (e *DuplicateExportError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message:  e.Error(),
		Type:     "duplicate",
		Function: e.Name,
		Location: e.Second.String(),
	}
}

// MarshalKind classifies runtime conversion failures.
type MarshalKind string

const (
	KindOutOfRange      MarshalKind = "out_of_range"
	KindInvalidEncoding MarshalKind = "invalid_encoding"
	KindArityMismatch   MarshalKind = "arity_mismatch"
	KindTypeMismatch    MarshalKind = "type_mismatch"
)

// ArgReturn marks a MarshalError as concerning the return value rather than
// a positional argument.
const ArgReturn = -1

// MarshalError reports a per-call conversion failure. It surfaces to the
// caller of the generated stub and is never swallowed or coerced to a
// default value.
type MarshalError struct {
	Function string
	Arg      int // argument index, or ArgReturn
	Kind     MarshalKind
	Reason   string
}

func (e *MarshalError) Error() string {
	where := fmt.Sprintf("argument %d", e.Arg)
	if e.Arg == ArgReturn {
		where = "return value"
	}
	return fmt.Sprintf("marshal %s: %s of %q: %s", e.Kind, where, e.Function, e.Reason)
}

// ToErrorDetail implements DetailedError.
func (e *MarshalError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message:  e.Error(),
		Type:     "marshal",
		Code:     string(e.Kind),
		Function: e.Function,
	}
}

// NativeFaultError reports a trap or fault raised inside the native function
// itself, as opposed to a marshalling failure on either side of the call.
type NativeFaultError struct {
	Err      error
	Function string
	Message  string
}

func (e *NativeFaultError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("native fault in %q: %s", e.Function, e.Message)
	}
	return fmt.Sprintf("native fault in %q: %v", e.Function, e.Err)
}

func (e *NativeFaultError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *NativeFaultError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message:  e.Error(),
		Type:     "fault",
		Function: e.Function,
	}
}
