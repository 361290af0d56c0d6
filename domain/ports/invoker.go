package ports

import "context"

// Invoker is the raw invoke-by-name primitive provided by the host runtime.
// The marshaller builds typed calls on top of it: a call frame goes in, a
// result frame comes out. How the runtime loads and links the native code is
// the runtime's concern.
//
// Invoke must call the named adapter export exactly once per invocation.
// An error return means the export could not be reached or trapped during
// execution; frame-level failures travel inside the returned result frame.
type Invoker interface {
	Invoke(ctx context.Context, export string, frame []byte) ([]byte, error)

	// Close releases any resources held by the underlying runtime.
	Close(ctx context.Context) error
}
