package simd

import (
	"fmt"
	"math/bits"

	"github.com/ajroetker/go-highway/hwy"
)

// maxIterations caps the threshold search. A 16-bit value domain converges
// in at most 17 halvings; the cap turns a broken interval invariant into a
// loud failure instead of an endless loop.
const maxIterations = 200

// maxU16Lanes is the widest supported uint16 vector (64-byte registers).
// The kernels never process more lanes per block: compress tracks lanes in
// a 64-bit mask word and the histogram stages spill through fixed buffers.
const maxU16Lanes = 32

func u16Lanes() int {
	lanes := hwy.MaxLanes[uint16]()
	if lanes > maxU16Lanes {
		lanes = maxU16Lanes
	}
	return lanes
}

// BestValue returns the bound no value improves on: the threshold when
// nothing qualifies.
func BestValue(selectMin bool) uint16 {
	if selectMin {
		return 0
	}
	return 0xffff
}

// WorstValue returns the bound every value improves on: the threshold when
// everything qualifies.
func WorstValue(selectMin bool) uint16 {
	if selectMin {
		return 0xffff
	}
	return 0
}

// PartitionFuzzy reorders vals (and ids, kept in lockstep when non-nil) in
// place so that the first q elements are better than or equal to the
// returned threshold and no element after them is strictly better. q lands
// in [qMin, qMax]; the order inside prefix and suffix is unspecified.
// selectMin picks the direction: true keeps the smallest values, false the
// largest.
func PartitionFuzzy[ID hwy.Integers](selectMin bool, vals []uint16, ids []ID, qMin, qMax int) (uint16, int) {
	return partitionFuzzy(selectMin, vals, ids, qMin, qMax, true)
}

// PartitionFuzzyGeneric runs the same value-domain search with scalar
// loops. Besides serving unaligned and override-forced inputs, it is the
// reference the vectorized kernels are verified against: both variants
// walk the identical bisection trajectory, so threshold and achieved q
// always agree.
func PartitionFuzzyGeneric[ID hwy.Integers](selectMin bool, vals []uint16, ids []ID, qMin, qMax int) (uint16, int) {
	return partitionFuzzy(selectMin, vals, ids, qMin, qMax, false)
}

// partitionFuzzy binary-searches the bounded value domain for a threshold
// whose qualifying count lands in [qMin, qMax], then compresses the
// winners into the prefix.
func partitionFuzzy[ID hwy.Integers](selectMin bool, vals []uint16, ids []ID, qMin, qMax int, vec bool) (uint16, int) {
	n := len(vals)

	if ids != nil && len(ids) != n {
		panic(fmt.Sprintf("ids length %d does not match values length %d", len(ids), n))
	}
	if qMin < 0 || qMin > qMax {
		panic(fmt.Sprintf("invalid quota range [%d, %d]", qMin, qMax))
	}
	if qMin == 0 {
		return BestValue(selectMin), 0
	}
	if qMax >= n {
		return WorstValue(selectMin), n
	}

	var lo, hi uint16
	if vec {
		lo, hi = MinMax(vals)
	} else {
		lo, hi = minMaxGeneric(vals)
	}
	if lo == hi {
		// Every element equals the threshold; any prefix of length qMin
		// satisfies the contract without moving anything.
		return lo, qMin
	}

	// Binary search in the value domain over [s0, s1).
	s0, s1 := int(lo), int(hi)+1

	var (
		thresh       int
		nBetter, nEq int
		q            = -1
	)
	for it := 0; it < maxIterations; it++ {
		thresh = (s0 + s1) / 2
		if vec {
			nBetter, nEq = countBetterEq(selectMin, vals, uint16(thresh))
		} else {
			nBetter, nEq = countBetterEqGeneric(selectMin, vals, uint16(thresh))
		}

		if nBetter <= qMin {
			if nBetter+nEq >= qMin {
				q = qMin
				break
			}
			// Too few qualify: move the threshold toward the rejected side.
			if selectMin {
				s0 = thresh
			} else {
				s1 = thresh
			}
		} else if nBetter <= qMax {
			q = nBetter
			break
		} else {
			// Too many strictly better: tighten from the kept side.
			if selectMin {
				s1 = thresh
			} else {
				s0 = thresh
			}
		}
	}
	if q < 0 {
		panic("threshold search did not converge")
	}

	nEq1 := q - nBetter
	if nEq1 < 0 {
		// More strictly-better elements than the quota allows. Clamp to
		// qMin and step the threshold one value toward the kept side so
		// the previously-equal elements become the strict prefix.
		q = qMin
		if selectMin {
			thresh--
		} else {
			thresh++
		}
		nEq1 = q
	} else if nEq1 > nEq {
		panic("tie budget exceeds equal count")
	}

	var wp int
	if vec {
		wp = compressKeep(selectMin, vals, ids, uint16(thresh), nEq1)
	} else {
		wp = compressKeepGeneric(selectMin, vals, ids, uint16(thresh), nEq1)
	}
	if wp != q {
		panic(fmt.Sprintf("compress kept %d elements, expected %d", wp, q))
	}
	return uint16(thresh), q
}

// MinMax reduces vals to its smallest and largest element. vals must not
// be empty.
func MinMax(vals []uint16) (uint16, uint16) {
	n := len(vals)
	lanes := u16Lanes()

	lo, hi := vals[0], vals[0]
	i := 0
	if n >= lanes {
		vmin := hwy.Load(vals[:lanes])
		vmax := vmin
		for i = lanes; i+lanes <= n; i += lanes {
			v := hwy.Load(vals[i : i+lanes])
			vmin = hwy.Min(vmin, v)
			vmax = hwy.Max(vmax, v)
		}
		lo = hwy.ReduceMin(vmin)
		hi = hwy.ReduceMax(vmax)
	}
	for ; i < n; i++ {
		lo = min(lo, vals[i])
		hi = max(hi, vals[i])
	}
	return lo, hi
}

func minMaxGeneric(vals []uint16) (uint16, uint16) {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

// countBetterEq counts the elements strictly better than thresh and the
// elements equal to it. Unsigned 16-bit lanes have no ordered compare on
// every target, so qualification is read off min/max against the threshold.
func countBetterEq(selectMin bool, vals []uint16, thresh uint16) (nBetter, nEq int) {
	n := len(vals)
	lanes := u16Lanes()
	thr := hwy.Set(thresh)

	i := 0
	for ; i+lanes <= n; i += lanes {
		v := hwy.Load(vals[i : i+lanes])
		var qual hwy.Mask[uint16]
		if selectMin {
			qual = hwy.Equal(v, hwy.Min(v, thr)) // v <= thresh
		} else {
			qual = hwy.Equal(v, hwy.Max(v, thr)) // v >= thresh
		}
		e := hwy.CountTrue(hwy.Equal(v, thr))
		nEq += e
		nBetter += hwy.CountTrue(qual) - e
	}
	for ; i < n; i++ {
		v := vals[i]
		if v == thresh {
			nEq++
		} else if better(selectMin, v, thresh) {
			nBetter++
		}
	}
	return nBetter, nEq
}

func countBetterEqGeneric(selectMin bool, vals []uint16, thresh uint16) (nBetter, nEq int) {
	for _, v := range vals {
		if v == thresh {
			nEq++
		} else if better(selectMin, v, thresh) {
			nBetter++
		}
	}
	return nBetter, nEq
}

func better(selectMin bool, a, b uint16) bool {
	if selectMin {
		return a < b
	}
	return a > b
}

// compressKeep partitions vals (and ids, swapped in lockstep) in place:
// every element strictly better than thresh plus the first nEq1 elements
// equal to it move to the front in encounter order, everything else moves
// behind them. The multiset of (value, id) pairs is unchanged. Returns the
// number of kept elements.
//
// Lane blocks are classified with vector masks; the swaps themselves walk
// the mask bits. The kept cursor never passes the scan position, so block
// masks loaded up front stay valid for the bits not yet visited.
func compressKeep[ID hwy.Integers](selectMin bool, vals []uint16, ids []ID, thresh uint16, nEq1 int) int {
	n := len(vals)
	lanes := u16Lanes()
	thr := hwy.Set(thresh)

	wp := 0
	i := 0

	// Phase one: the tie budget is open, so equal lanes are admitted in
	// lane order until it runs out.
	for ; i+lanes <= n && nEq1 > 0; i += lanes {
		v := hwy.Load(vals[i : i+lanes])
		eq := hwy.Equal(v, thr)
		var qual hwy.Mask[uint16]
		if selectMin {
			qual = hwy.Equal(v, hwy.Min(v, thr))
		} else {
			qual = hwy.Equal(v, hwy.Max(v, thr))
		}
		eqBits := hwy.BitsFromMask(eq)
		keep := hwy.BitsFromMask(qual)

		for b := keep; b != 0; b &= b - 1 {
			j := bits.TrailingZeros64(b)
			if eqBits&(1<<j) != 0 {
				if nEq1 == 0 {
					continue
				}
				nEq1--
			}
			swapTo(wp, i+j, vals, ids)
			wp++
		}
	}

	// Phase two: only strictly better lanes move.
	for ; i+lanes <= n; i += lanes {
		v := hwy.Load(vals[i : i+lanes])
		var qual hwy.Mask[uint16]
		if selectMin {
			qual = hwy.Equal(v, hwy.Min(v, thr))
		} else {
			qual = hwy.Equal(v, hwy.Max(v, thr))
		}
		strict := hwy.MaskAndNot(hwy.Equal(v, thr), qual)

		for b := hwy.BitsFromMask(strict); b != 0; b &= b - 1 {
			j := bits.TrailingZeros64(b)
			swapTo(wp, i+j, vals, ids)
			wp++
		}
	}

	// Scalar tail with the same rules.
	for ; i < n; i++ {
		v := vals[i]
		keep := false
		if v == thresh {
			if nEq1 > 0 {
				nEq1--
				keep = true
			}
		} else if better(selectMin, v, thresh) {
			keep = true
		}
		if keep {
			swapTo(wp, i, vals, ids)
			wp++
		}
	}
	return wp
}

func compressKeepGeneric[ID hwy.Integers](selectMin bool, vals []uint16, ids []ID, thresh uint16, nEq1 int) int {
	wp := 0
	for i, v := range vals {
		keep := false
		if v == thresh {
			if nEq1 > 0 {
				nEq1--
				keep = true
			}
		} else if better(selectMin, v, thresh) {
			keep = true
		}
		if keep {
			swapTo(wp, i, vals, ids)
			wp++
		}
	}
	return wp
}

func swapTo[ID hwy.Integers](wp, i int, vals []uint16, ids []ID) {
	vals[wp], vals[i] = vals[i], vals[wp]
	if ids != nil {
		ids[wp], ids[i] = ids[i], ids[wp]
	}
}
