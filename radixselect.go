package topk

import (
	"github.com/hupe1980/topk/internal/simd"
)

// NthScore returns the value ranking k-th best under ord among vals
// (1-based), together with the number of values strictly better than it
// and the number of values equal to it. vals is only read, never
// reordered; use PartitionFuzzy when the array itself must be split
// around the threshold.
//
// The rank is located by histogram digit descent: a 16-bucket shifted
// histogram narrows the candidate range by one 4-bit digit per pass, so
// the cost is a few counting passes over vals regardless of k.
func NthScore[C Order[uint16]](ord C, vals []uint16, k int) (uint16, int, int) {
	n := len(vals)
	assertf(n > 0, "no values to select from")
	assertf(k >= 1 && k <= n, "rank %d out of range [1, %d]", k, n)

	lo, hi := simd.MinMax(vals)
	if lo == hi {
		return lo, 0, n
	}

	// The descent resolves the r-th smallest value; the k-th largest is
	// the same element counted from the other end.
	r := k
	if !ord.SelectsMin() {
		r = n - k + 1
	}

	base := int(lo)
	before := 0
	var nEq int

	shift := 8
	for {
		hist := simd.Histogram16Shifted(vals, uint16(base), shift)

		if shift == 8 {
			// The top window spans 4096 values; slide it upward until
			// the target rank falls inside.
			total := 0
			for _, c := range hist {
				total += c
			}
			if before+total < r {
				before += total
				base += 16 << shift
				continue
			}
		}

		b := 0
		for ; b < len(hist)-1; b++ {
			if before+hist[b] >= r {
				break
			}
			before += hist[b]
		}
		base += b << shift

		if shift == 0 {
			nEq = hist[b]
			break
		}
		shift -= 4
	}

	nBetter := before
	if !ord.SelectsMin() {
		nBetter = n - before - nEq
	}
	return uint16(base), nBetter, nEq
}
