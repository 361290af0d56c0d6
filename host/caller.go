package host

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/whitehall-lang/ffibridge/domain/entities"
	domainerrors "github.com/whitehall-lang/ffibridge/domain/errors"
	"github.com/whitehall-lang/ffibridge/domain/ports"
	"github.com/whitehall-lang/ffibridge/internal/abi"
)

// callerConfig holds configuration for the Caller.
type callerConfig struct {
	logger *slog.Logger
}

func defaultCallerConfig() callerConfig {
	return callerConfig{logger: slog.Default()}
}

// CallerOption configures the Caller.
type CallerOption func(*callerConfig)

// WithLogger sets the structured logger used for per-call debug logging.
func WithLogger(l *slog.Logger) CallerOption {
	return func(c *callerConfig) {
		c.logger = l
	}
}

// Caller dispatches calls by exported name over an Invoker. It is safe for
// concurrent use as long as the underlying Invoker is.
type Caller struct {
	signatures map[string]entities.ExportedFunction
	invoker    ports.Invoker
	config     callerConfig
}

// NewCaller creates a Caller over the given signature table. The table is
// copied; later mutation of the argument has no effect.
func NewCaller(signatures map[string]entities.ExportedFunction, invoker ports.Invoker, opts ...CallerOption) (*Caller, error) {
	if invoker == nil {
		return nil, fmt.Errorf("host: invoker is required")
	}
	cfg := defaultCallerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	sigs := make(map[string]entities.ExportedFunction, len(signatures))
	for name, fn := range signatures {
		if !fn.Return.Valid() {
			return nil, fmt.Errorf("host: function %q has invalid return type", name)
		}
		sigs[name] = fn
	}
	return &Caller{signatures: sigs, invoker: invoker, config: cfg}, nil
}

// Close releases the underlying invoker.
func (c *Caller) Close(ctx context.Context) error {
	return c.invoker.Close(ctx)
}

// Functions returns the names of all callable exports.
func (c *Caller) Functions() []string {
	names := make([]string, 0, len(c.signatures))
	for name := range c.signatures {
		names = append(names, name)
	}
	return names
}

// Call invokes the named export with the given arguments. Arguments are
// validated against the declared signature before anything crosses the
// boundary: an arity mismatch, an out-of-range integer, or invalid UTF-8
// text fails the call without invoking the native side at all. A fault
// raised inside the native function surfaces as a NativeFaultError.
//
// The return value is the Go representation of the declared return type
// (int32, uint64, float64, bool, string, ...), or nil for void.
func (c *Caller) Call(ctx context.Context, name string, args ...any) (any, error) {
	fn, ok := c.signatures[name]
	if !ok {
		return nil, fmt.Errorf("host: unknown function %q", name)
	}

	if len(args) != fn.Arity() {
		return nil, &domainerrors.MarshalError{
			Function: fn.Name,
			Arg:      domainerrors.ArgReturn,
			Kind:     domainerrors.KindArityMismatch,
			Reason:   fmt.Sprintf("have %d arguments, want %d", len(args), fn.Arity()),
		}
	}

	values := make([]abi.Value, len(args))
	for i, param := range fn.Params {
		v, err := encodeArg(fn.Name, i, param.Type, args[i])
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	frame, err := abi.EncodeCall(values)
	if err != nil {
		return nil, fmt.Errorf("host: encode call to %q: %w", fn.Name, err)
	}

	c.config.logger.Debug("invoking export",
		"function", fn.Name,
		"export", abi.ExportPrefix+fn.Name,
		"args", len(args))

	raw, err := c.invoker.Invoke(ctx, abi.ExportPrefix+fn.Name, frame)
	if err != nil {
		return nil, &domainerrors.NativeFaultError{Err: err, Function: fn.Name}
	}

	result, wireErr, err := abi.DecodeResult(raw)
	if err != nil {
		return nil, fmt.Errorf("host: decode result of %q: %w", fn.Name, err)
	}
	if wireErr != nil {
		return nil, wireToError(fn.Name, wireErr)
	}

	return decodeResult(fn, result)
}

// wireToError maps the error slot of a result frame back to a typed error.
// The slot carries the offending argument index; abi.ArgNone marks frame
// level and return side failures.
func wireToError(fn string, we *abi.WireError) error {
	arg := we.Arg
	if arg == abi.ArgNone {
		arg = domainerrors.ArgReturn
	}
	switch we.Code {
	case abi.WireErrOutOfRange:
		return &domainerrors.MarshalError{
			Function: fn,
			Arg:      arg,
			Kind:     domainerrors.KindOutOfRange,
			Reason:   we.Message,
		}
	case abi.WireErrInvalidEncoding:
		return &domainerrors.MarshalError{
			Function: fn,
			Arg:      arg,
			Kind:     domainerrors.KindInvalidEncoding,
			Reason:   we.Message,
		}
	case abi.WireErrArityMismatch:
		return &domainerrors.MarshalError{
			Function: fn,
			Arg:      arg,
			Kind:     domainerrors.KindArityMismatch,
			Reason:   we.Message,
		}
	default:
		return &domainerrors.NativeFaultError{Function: fn, Message: we.Message}
	}
}
