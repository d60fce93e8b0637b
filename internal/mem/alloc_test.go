package mem

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestAllocAligned(t *testing.T) {
	sizes := []int{1, 10, 63, 64, 65, 100, 1024}

	for _, size := range sizes {
		buf := AllocAligned(size)
		assert.Len(t, buf, size)

		ptr := unsafe.Pointer(&buf[0])
		addr := uintptr(ptr)
		assert.Equal(t, uintptr(0), addr%Alignment, "Address %d should be aligned to %d for size %d", addr, Alignment, size)
	}

	assert.Nil(t, AllocAligned(0))
	assert.Nil(t, AllocAligned(-1))
}

func TestAlignedUint16(t *testing.T) {
	sizes := []int{1, 10, 31, 32, 33, 100, 1024}

	for _, size := range sizes {
		buf := Aligned[uint16](size)
		assert.Len(t, buf, size)
		assert.True(t, IsAligned(unsafe.Pointer(&buf[0])), "slice of size %d should be aligned", size)
	}

	assert.Nil(t, Aligned[uint16](0))
	assert.Nil(t, Aligned[uint16](-1))
}

func TestAlignedInt64(t *testing.T) {
	sizes := []int{1, 7, 8, 9, 100, 1024}

	for _, size := range sizes {
		buf := Aligned[int64](size)
		assert.Len(t, buf, size)
		assert.True(t, IsAligned(unsafe.Pointer(&buf[0])), "slice of size %d should be aligned", size)
	}

	assert.Nil(t, Aligned[int64](0))
}

func TestAlignedFloat32(t *testing.T) {
	sizes := []int{1, 10, 16, 17, 100, 1024}

	for _, size := range sizes {
		buf := Aligned[float32](size)
		assert.Len(t, buf, size)
		assert.True(t, IsAligned(unsafe.Pointer(&buf[0])), "slice of size %d should be aligned", size)
	}

	assert.Nil(t, Aligned[float32](0))
}

func TestAlignedWritable(t *testing.T) {
	buf := Aligned[uint16](128)
	for i := range buf {
		buf[i] = uint16(i)
	}
	for i := range buf {
		assert.Equal(t, uint16(i), buf[i])
	}
}

func TestIsAligned(t *testing.T) {
	buf := AllocAligned(Alignment * 2)

	assert.True(t, IsAligned(unsafe.Pointer(&buf[0])))
	assert.False(t, IsAligned(unsafe.Pointer(&buf[1])))
	assert.True(t, IsAligned(unsafe.Pointer(&buf[Alignment])))
}

func BenchmarkAllocAligned(b *testing.B) {
	sizes := []int{64, 256, 1024, 4096}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("size=%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = AllocAligned(size)
			}
		})
	}
}

func BenchmarkAlignedUint16(b *testing.B) {
	sizes := []int{32, 256, 1024, 4096}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("size=%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = Aligned[uint16](size)
			}
		})
	}
}
