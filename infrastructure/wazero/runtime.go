package wazero

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/whitehall-lang/ffibridge/domain/ports"
	"github.com/whitehall-lang/ffibridge/internal/abi"
)

// DefaultMaxFrameSize bounds call and result frames read from guest memory.
const DefaultMaxFrameSize uint32 = 1 << 20 // 1MB

// runtimeConfig holds configuration for the Runtime.
type runtimeConfig struct {
	maxFrameSize uint32
}

func defaultRuntimeConfig() runtimeConfig {
	return runtimeConfig{maxFrameSize: DefaultMaxFrameSize}
}

// RuntimeOption configures the Runtime.
type RuntimeOption func(*runtimeConfig)

// WithMaxFrameSize caps the size of frames exchanged with the guest.
func WithMaxFrameSize(size uint32) RuntimeOption {
	return func(c *runtimeConfig) {
		if size > 0 {
			c.maxFrameSize = size
		}
	}
}

// Runtime owns a wazero runtime and loads compiled native modules into it.
type Runtime struct {
	runtime wazero.Runtime
	config  runtimeConfig
}

// NewRuntime creates a WASM runtime with WASI available to guests. Close it
// when all loaded modules are done.
func NewRuntime(ctx context.Context, opts ...RuntimeOption) *Runtime {
	cfg := defaultRuntimeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	rt := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)

	return &Runtime{runtime: rt, config: cfg}
}

// Close releases the runtime and every module loaded from it.
func (r *Runtime) Close(ctx context.Context) error {
	return r.runtime.Close(ctx)
}

// Load instantiates a compiled native module and returns it as an Invoker.
// The module must export allocate and deallocate alongside its adapter
// functions.
func (r *Runtime) Load(ctx context.Context, wasmBytes []byte) (ports.Invoker, error) {
	mod, err := r.runtime.Instantiate(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("wazero: instantiate module: %w", err)
	}

	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			mod.Close(ctx)
			return nil, fmt.Errorf("wazero: _initialize: %w", err)
		}
	}

	for _, export := range []string{"allocate", "deallocate"} {
		if mod.ExportedFunction(export) == nil {
			mod.Close(ctx)
			return nil, fmt.Errorf("wazero: module does not export %q", export)
		}
	}

	return &Module{module: mod, maxFrameSize: r.config.maxFrameSize}, nil
}

// Module is one instantiated native module. Invoke is not safe for
// concurrent use; wazero guest memory is single-threaded.
type Module struct {
	module       api.Module
	maxFrameSize uint32
}

// Invoke copies the call frame into guest memory, calls the named adapter
// export once, and copies the result frame back out. The returned slice is
// host memory; it stays valid after further guest calls.
func (m *Module) Invoke(ctx context.Context, export string, frame []byte) ([]byte, error) {
	fn := m.module.ExportedFunction(export)
	if fn == nil {
		return nil, fmt.Errorf("wazero: export %q not found", export)
	}
	if uint64(len(frame)) > uint64(m.maxFrameSize) {
		return nil, fmt.Errorf("wazero: call frame size %d exceeds maximum %d", len(frame), m.maxFrameSize)
	}

	ptr, err := m.writeGuest(ctx, frame)
	if err != nil {
		return nil, err
	}
	defer m.freeGuest(ctx, ptr, uint32(len(frame)))

	results, err := fn.Call(ctx, abi.PackPtrLen(ptr, uint32(len(frame))))
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("wazero: export %q returned no result", export)
	}

	// Unpack by hand: a misbehaving guest must fail the call, not panic
	// the host.
	resPtr := uint32(results[0] >> 32)
	resLen := uint32(results[0])
	if resPtr == 0 || resLen == 0 {
		return nil, fmt.Errorf("wazero: export %q returned a null result frame", export)
	}
	if resLen > m.maxFrameSize {
		return nil, fmt.Errorf("wazero: result frame size %d exceeds maximum %d", resLen, m.maxFrameSize)
	}
	defer m.freeGuest(ctx, resPtr, resLen)

	data, ok := m.module.Memory().Read(resPtr, resLen)
	if !ok {
		return nil, fmt.Errorf("wazero: failed to read result frame from guest memory")
	}

	// Copy out of guest memory before the deferred deallocate runs.
	out := make([]byte, resLen)
	copy(out, data)
	return out, nil
}

// Close releases the module instance.
func (m *Module) Close(ctx context.Context) error {
	return m.module.Close(ctx)
}

func (m *Module) writeGuest(ctx context.Context, data []byte) (uint32, error) {
	allocate := m.module.ExportedFunction("allocate")
	results, err := allocate.Call(ctx, uint64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("wazero: guest allocate: %w", err)
	}
	if len(results) == 0 || results[0] == 0 {
		return 0, fmt.Errorf("wazero: guest allocate returned no memory")
	}
	ptr := uint32(results[0])
	if !m.module.Memory().Write(ptr, data) {
		// The allocation succeeded, so hand it back before failing.
		m.freeGuest(ctx, ptr, uint32(len(data)))
		return 0, fmt.Errorf("wazero: failed to write call frame to guest memory")
	}
	return ptr, nil
}

func (m *Module) freeGuest(ctx context.Context, ptr, length uint32) {
	deallocate := m.module.ExportedFunction("deallocate")
	if deallocate == nil {
		return
	}
	// Best effort; a failing deallocate leaks guest memory but does not
	// fail the call that produced a valid result.
	deallocate.Call(ctx, uint64(ptr), uint64(length))
}
