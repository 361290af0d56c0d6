// Package abi defines the canonical wire representation crossing the call
// boundary: the packed pointer/length convention used with the runtime's
// linear memory, and the tagged little-endian frame encoding for calls and
// results. Both sides of the boundary must agree on this layout byte for
// byte; generated adapters implement the native half.
package abi

import "fmt"

// ExportPrefix is prepended to every adapter export name. The generated
// native adapter for function "add" exports "wh_add"; the original symbol
// keeps its own name and is never exported directly.
const ExportPrefix = "wh_"

// PackPtrLen packs a pointer and length into a single uint64.
// Pointer is stored in the high 32 bits, length in the low 32 bits.
// Panics if ptr is 0 and length > 0, indicating an invalid state.
func PackPtrLen(ptr, length uint32) uint64 {
	if ptr == 0 && length > 0 {
		panic(fmt.Sprintf("abi: invalid pack - null pointer (0x0) with non-zero length (%d)", length))
	}
	return (uint64(ptr) << 32) | uint64(length)
}

// UnpackPtrLen unpacks a uint64 into its original pointer and length.
// Panics if ptr is 0 and length > 0, indicating an invalid packed value.
func UnpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> 32)
	length = uint32(packed)
	if ptr == 0 && length > 0 {
		panic(fmt.Sprintf("abi: invalid unpack - null pointer (0x0) with non-zero length (%d)", length))
	}
	return ptr, length
}
