// Package mem provides memory allocation utilities.
package mem

import (
	"unsafe"
)

// Alignment is the byte alignment required for AVX-512 (64 bytes).
const Alignment = 64

// AllocAligned allocates a byte slice of the given size with 64-byte alignment.
// The returned slice is guaranteed to start at a memory address divisible by 64.
//
// Note: This function allocates slightly more memory than requested to ensure alignment.
// The underlying array is kept alive by the returned slice.
func AllocAligned(size int) []byte {
	if size <= 0 {
		return nil
	}

	// Allocate size + alignment to ensure we can find an aligned offset
	// We need enough space to shift the start pointer up to Alignment-1 bytes
	totalSize := size + Alignment
	buf := make([]byte, totalSize)

	// Calculate the offset to the first aligned byte
	ptr := unsafe.Pointer(&buf[0]) //nolint:gosec // unsafe is required for memory alignment
	addr := uintptr(ptr)
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)

	// Return the slice starting at the aligned offset
	return buf[offset : offset+uintptr(size)]
}

// Aligned allocates a slice of n elements of type T whose backing array
// starts at a 64-byte boundary. Buffers allocated here pass the alignment
// gate of the vectorized kernels.
func Aligned[T any](n int) []T {
	if n <= 0 {
		return nil
	}

	var zero T
	byteSlice := AllocAligned(n * int(unsafe.Sizeof(zero)))

	// Safe because AllocAligned guarantees 64-byte alignment, which
	// covers the alignment of any scalar element type.
	ptr := unsafe.Pointer(&byteSlice[0]) //nolint:gosec // unsafe is required for memory alignment
	return unsafe.Slice((*T)(ptr), n)    //nolint:gosec // unsafe is required for memory alignment
}

// IsAligned reports whether p lies on the Alignment boundary.
func IsAligned(p unsafe.Pointer) bool {
	return uintptr(p)&(Alignment-1) == 0
}
