package wazero

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRejectsInvalidBytes(t *testing.T) {
	ctx := context.Background()
	rt := NewRuntime(ctx)
	defer rt.Close(ctx)

	_, err := rt.Load(ctx, []byte("not a wasm module"))
	require.Error(t, err)
}

func TestLoadRequiresAllocator(t *testing.T) {
	ctx := context.Background()
	rt := NewRuntime(ctx)
	defer rt.Close(ctx)

	// A structurally valid module with no exports at all.
	empty := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	_, err := rt.Load(ctx, empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "allocate")
}

// brokenAllocatorModule is a hand-assembled module with one page of memory
// whose allocate returns a pointer past the end of it, so any frame write
// fails. Its deallocate stores a marker byte at offset 1, making it
// observable that the failed write handed the allocation back.
func brokenAllocatorModule() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		// types: (i32)->i32, (i32,i32)->(), (i64)->i64
		0x01, 0x10, 0x03,
		0x60, 0x01, 0x7f, 0x01, 0x7f,
		0x60, 0x02, 0x7f, 0x7f, 0x00,
		0x60, 0x01, 0x7e, 0x01, 0x7e,
		// functions: allocate, deallocate, wh_x
		0x03, 0x04, 0x03, 0x00, 0x01, 0x02,
		// memory: exactly one page
		0x05, 0x03, 0x01, 0x00, 0x01,
		// exports
		0x07, 0x29, 0x04,
		0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
		0x08, 'a', 'l', 'l', 'o', 'c', 'a', 't', 'e', 0x00, 0x00,
		0x0a, 'd', 'e', 'a', 'l', 'l', 'o', 'c', 'a', 't', 'e', 0x00, 0x01,
		0x04, 'w', 'h', '_', 'x', 0x00, 0x02,
		// code
		0x0a, 0x17, 0x03,
		// allocate: i32.const 0x20000 (two pages in, out of bounds)
		0x06, 0x00, 0x41, 0x80, 0x80, 0x08, 0x0b,
		// deallocate: memory[1] = 7
		0x09, 0x00, 0x41, 0x01, 0x41, 0x07, 0x3a, 0x00, 0x00, 0x0b,
		// wh_x: identity
		0x04, 0x00, 0x20, 0x00, 0x0b,
	}
}

func TestInvokeFreesAllocationWhenWriteFails(t *testing.T) {
	ctx := context.Background()
	rt := NewRuntime(ctx)
	defer rt.Close(ctx)

	inv, err := rt.Load(ctx, brokenAllocatorModule())
	require.NoError(t, err)

	_, err = inv.Invoke(ctx, "wh_x", []byte{0x01, 0x00, 0x00})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write call frame")

	// deallocate ran on the failed write and left its marker behind.
	mod := inv.(*Module)
	marker, ok := mod.module.Memory().ReadByte(1)
	require.True(t, ok)
	assert.Equal(t, byte(7), marker)
}

func TestRuntimeClose(t *testing.T) {
	ctx := context.Background()
	rt := NewRuntime(ctx, WithMaxFrameSize(4096))
	require.NoError(t, rt.Close(ctx))
}
