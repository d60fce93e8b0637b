package topk

import (
	"unsafe"

	"github.com/hupe1980/topk/internal/mem"
	"github.com/hupe1980/topk/internal/simd"
)

// Integer constrains the identifier types carried alongside scores. The
// widths mirror the vector lanes so identifiers ride the vectorized path
// unchanged.
type Integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// PartitionFuzzy reorders vals in place so a prefix of the best elements
// under ord comes first, and returns the partition threshold plus the
// prefix length q, with qMin <= q <= qMax. Every element before index q is
// better than or equal to the threshold, no element after it is strictly
// better, and at most as many threshold-equal elements as needed to reach
// q land in the prefix. ids, when non-nil, moves in lockstep so
// identifiers stay paired with their scores. The order inside prefix and
// suffix is unspecified. Widening [qMin, qMax] lets tie-heavy inputs
// settle in fewer passes.
//
// qMin == 0 returns q = 0 with a threshold nothing beats; qMax >=
// len(vals) returns q = len(vals) with a threshold everything beats,
// leaving the array untouched. Past those shortcuts at least 3 values are
// required. Invalid quota windows and mismatched ids lengths panic.
//
// uint16 scores search the bounded value domain instead of sampling, with
// vectorized kernels when the buffer is aligned and the platform supports
// them. Vectorized and scalar runs walk the same search trajectory, so
// forcing the scalar path on the same input yields the same threshold and
// the same q.
func PartitionFuzzy[T Score, ID Integer, C Order[T]](ord C, vals []T, ids []ID, qMin, qMax int) (T, int) {
	n := len(vals)

	assertf(ids == nil || len(ids) == n, "ids length %d does not match values length %d", len(ids), n)
	assertf(qMin >= 0 && qMin <= qMax, "invalid quota range [%d, %d]", qMin, qMax)
	if qMin == 0 {
		return ord.Best(), 0
	}
	if qMax >= n {
		return ord.Worst(), n
	}
	assertf(n >= 3, "partitioning needs at least 3 values, got %d", n)

	if u16, ok := any(vals).([]uint16); ok {
		var (
			thresh uint16
			q      int
		)
		if simd.Enabled() && mem.IsAligned(unsafe.Pointer(&u16[0])) {
			thresh, q = simd.PartitionFuzzy(ord.SelectsMin(), u16, ids, qMin, qMax)
		} else {
			thresh, q = simd.PartitionFuzzyGeneric(ord.SelectsMin(), u16, ids, qMin, qMax)
		}
		return any(thresh).(T), q
	}
	return bisectPartitionFuzzy(ord, vals, ids, qMin, qMax)
}

// Partition is PartitionFuzzy with a collapsed quota window: the prefix
// holds exactly the best q elements. It returns the partition threshold.
func Partition[T Score, ID Integer, C Order[T]](ord C, vals []T, ids []ID, q int) T {
	thresh, _ := PartitionFuzzy(ord, vals, ids, q, q)
	return thresh
}
