package simd

import (
	"fmt"

	"github.com/ajroetker/go-highway/hwy"
)

// Histogram16 counts data into 16 buckets by value. Blocks on the
// vectorized path bucket by the low 4 bits; the scalar tail indexes
// buckets directly. Values are assumed to lie in [0, 16).
func Histogram16(data []uint16) (out [16]int) {
	histogramMasked(data, 16, out[:])
	return out
}

// Histogram8 counts data into 8 buckets by value. Values are assumed to
// lie in [0, 8).
func Histogram8(data []uint16) (out [8]int) {
	histogramMasked(data, 8, out[:])
	return out
}

// Histogram16Shifted counts data into 16 buckets by (v-min)>>shift,
// dropping values that land outside the bucket range. shift must be in
// [0, 8]; the public wrapper validates it.
func Histogram16Shifted(data []uint16, minv uint16, shift int) (out [16]int) {
	if shift < 0 || shift > 8 {
		panic(fmt.Sprintf("unsupported histogram shift %d", shift))
	}
	histogramShifted(data, minv, shift, 16, out[:])
	return out
}

// Histogram8Shifted counts data into 8 buckets by (v-min)>>shift, dropping
// values that land outside the bucket range. shift must be in [0, 8].
func Histogram8Shifted(data []uint16, minv uint16, shift int) (out [8]int) {
	if shift < 0 || shift > 8 {
		panic(fmt.Sprintf("unsupported histogram shift %d", shift))
	}
	histogramShifted(data, minv, shift, 8, out[:])
	return out
}

func histogramMasked(data []uint16, nb int, out []int) {
	n := len(data)
	lanes := u16Lanes()
	maskV := hwy.Set(uint16(nb - 1))

	var buf [maxU16Lanes]uint16
	var acc histAcc

	i := 0
	for ; i+lanes <= n; i += lanes {
		v := hwy.And(hwy.Load(data[i:i+lanes]), maskV)
		hwy.Store(v, buf[:lanes])
		for _, d := range buf[:lanes] {
			acc.add(d)
		}
	}
	acc.flush(out)

	for ; i < n; i++ {
		out[data[i]]++
	}
}

func histogramShifted(data []uint16, minv uint16, shift, nb int, out []int) {
	n := len(data)
	lanes := u16Lanes()
	minVec := hwy.Set(minv)

	// The difference wraps as unsigned. For shift <= 8 a below-min value
	// keeps bit 15 high enough through the logical shift (0x8000>>8 = 128)
	// to clip, exactly like the signed formulation.
	var buf [maxU16Lanes]uint16
	var acc histAcc

	i := 0
	for ; i+lanes <= n; i += lanes {
		v := hwy.ShiftRight(hwy.Sub(hwy.Load(data[i:i+lanes]), minVec), shift)
		hwy.Store(v, buf[:lanes])
		for _, d := range buf[:lanes] {
			if int(d) < nb {
				acc.add(d)
			}
		}
	}
	acc.flush(out)

	for ; i < n; i++ {
		d := (data[i] - minv) >> shift
		if int(d) < nb {
			out[d]++
		}
	}
}

// histAcc accumulates up to 16 bucket counters in packed 64-bit words.
// Every stage accepts a bounded number of increments and folds into the
// next before it can saturate: 2-bit lanes hold at most 3, 4-bit lanes 15,
// 8-bit lanes 255, 16-bit lanes 65535.
type histAcc struct {
	a2   uint64    // bucket b at bits [2b+1:2b]
	a4lo uint64    // even buckets, nibble b/2
	a4hi uint64    // odd buckets, nibble (b-1)/2
	a8   [4]uint64 // bytes, bucket histAccBuckets[w][k]
	a16  [16]uint16
	wide [16]int

	n2, n4, n8, n16 int
}

// histAccBuckets maps (word, byte) slots of the 8-bit stage to buckets.
var histAccBuckets = [4][4]uint8{
	{0, 4, 8, 12},
	{2, 6, 10, 14},
	{1, 5, 9, 13},
	{3, 7, 11, 15},
}

func (h *histAcc) add(d uint16) {
	h.a2 += 1 << (2 * d)
	h.n2++
	if h.n2 == 3 {
		h.fold2()
	}
}

func (h *histAcc) fold2() {
	h.a4lo += h.a2 & 0x33333333
	h.a4hi += (h.a2 >> 2) & 0x33333333
	h.a2 = 0
	h.n4 += h.n2
	h.n2 = 0
	if h.n4+3 > 15 {
		h.fold4()
	}
}

func (h *histAcc) fold4() {
	h.a8[0] += h.a4lo & 0x0f0f0f0f
	h.a8[1] += (h.a4lo >> 4) & 0x0f0f0f0f
	h.a8[2] += h.a4hi & 0x0f0f0f0f
	h.a8[3] += (h.a4hi >> 4) & 0x0f0f0f0f
	h.a4lo, h.a4hi = 0, 0
	h.n8 += h.n4
	h.n4 = 0
	if h.n8+15 > 255 {
		h.fold8()
	}
}

func (h *histAcc) fold8() {
	for w, word := range h.a8 {
		for k := 0; k < 4; k++ {
			h.a16[histAccBuckets[w][k]] += uint16(word >> (8 * k) & 0xff)
		}
	}
	h.a8 = [4]uint64{}
	h.n16 += h.n8
	h.n8 = 0
	if h.n16+255 > 65535 {
		h.fold16()
	}
}

func (h *histAcc) fold16() {
	for b, c := range h.a16 {
		h.wide[b] += int(c)
	}
	h.a16 = [16]uint16{}
	h.n16 = 0
}

// flush drains every stage and adds the totals into out. Buckets beyond
// len(out) are structurally zero because the callers mask or clip digits.
func (h *histAcc) flush(out []int) {
	h.fold2()
	h.fold4()
	h.fold8()
	h.fold16()
	for b := range out {
		out[b] += h.wide[b]
	}
}
