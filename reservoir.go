package topk

import (
	"context"
	"slices"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/topk/internal/mem"
)

// capacityAlign rounds reservoir capacities to whole vector blocks.
const capacityAlign = 32

// Selector restricts reservoir admission to an allow-listed identifier
// set. Identifiers are widened to uint64 before the membership test.
type Selector interface {
	// IsMember reports whether id may enter the reservoir.
	IsMember(id uint64) bool
}

// BitmapSelector is a Selector backed by a roaring bitmap.
type BitmapSelector struct {
	bitmap *roaring64.Bitmap
}

// NewBitmapSelector builds a selector allowing exactly the given
// identifiers.
func NewBitmapSelector(ids ...uint64) *BitmapSelector {
	return &BitmapSelector{bitmap: roaring64.BitmapOf(ids...)}
}

// IsMember reports whether id is in the allow list.
func (s *BitmapSelector) IsMember(id uint64) bool {
	return s.bitmap.Contains(id)
}

// Result is a scored identifier emitted by a reservoir.
type Result[T Score, ID Integer] struct {
	Score T
	ID    ID
}

// ReservoirOptions configures a Reservoir.
type ReservoirOptions struct {
	// Capacity sets the candidate buffer size. It is raised to at least
	// twice k and rounded up to a multiple of 32 slots. Larger buffers
	// shrink less often at the price of memory.
	Capacity int

	// Selector, when non-nil, filters candidates by identifier before
	// any score comparison.
	Selector Selector

	// Logger receives shrink events.
	Logger *Logger

	// MetricsCollector receives shrink metrics.
	MetricsCollector MetricsCollector
}

// Reservoir collects scored candidates and maintains an approximate
// best-k working set without sorting. It admits only candidates that beat
// the current threshold and compacts the buffer with a fuzzy partition
// once full, so the amortized cost per candidate stays constant.
//
// A Reservoir is not safe for concurrent use; run one per goroutine and
// merge results.
type Reservoir[T Score, ID Integer, C Order[T]] struct {
	ord       C
	k         int
	capacity  int
	threshold T
	vals      []T
	ids       []ID
	n         int
	selector  Selector
	logger    *Logger
	metrics   MetricsCollector
}

// NewReservoir returns a reservoir keeping the best k candidates under
// ord. The buffer is 64-byte aligned, so uint16 scores shrink on the
// vectorized path.
func NewReservoir[T Score, ID Integer, C Order[T]](ord C, k int, optFns ...func(o *ReservoirOptions)) *Reservoir[T, ID, C] {
	assertf(k > 0, "reservoir k must be positive, got %d", k)

	opts := ReservoirOptions{
		Logger:           NoopLogger(),
		MetricsCollector: &NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	capacity := opts.Capacity
	if capacity < 2*k {
		capacity = 2 * k
	}
	capacity = (capacity + capacityAlign - 1) &^ (capacityAlign - 1)

	return &Reservoir[T, ID, C]{
		ord:       ord,
		k:         k,
		capacity:  capacity,
		threshold: ord.Worst(),
		vals:      mem.Aligned[T](capacity),
		ids:       mem.Aligned[ID](capacity),
		selector:  opts.Selector,
		logger:    opts.Logger,
		metrics:   opts.MetricsCollector,
	}
}

// Add offers a candidate and reports whether it was admitted. Candidates
// rejected by the selector or not strictly better than the current
// threshold are dropped.
func (r *Reservoir[T, ID, C]) Add(score T, id ID) bool {
	if r.selector != nil && !r.selector.IsMember(uint64(id)) {
		return false
	}
	if !r.ord.Better(score, r.threshold) {
		return false
	}
	if r.n == r.capacity {
		r.shrink()
	}
	r.vals[r.n] = score
	r.ids[r.n] = id
	r.n++
	return true
}

// Len returns the number of buffered candidates. It may exceed k between
// shrinks.
func (r *Reservoir[T, ID, C]) Len() int {
	return r.n
}

// Threshold returns the current admission bound. Until the first shrink
// it is the sentinel every score beats.
func (r *Reservoir[T, ID, C]) Threshold() T {
	return r.threshold
}

// Results returns the best min(k, Len) candidates sorted best-first. It
// may reorder the internal buffer; adding more candidates afterwards
// remains valid.
func (r *Reservoir[T, ID, C]) Results() []Result[T, ID] {
	// Partitioning first keeps the sort at k elements; buffers too small
	// to partition are sorted whole and truncated below.
	if r.n > r.k && r.n >= 3 {
		r.threshold = Partition(r.ord, r.vals[:r.n], r.ids[:r.n], r.k)
		r.n = r.k
	}

	out := make([]Result[T, ID], r.n)
	for i := range out {
		out[i] = Result[T, ID]{Score: r.vals[i], ID: r.ids[i]}
	}
	slices.SortFunc(out, func(a, b Result[T, ID]) int {
		if r.ord.Better(a.Score, b.Score) {
			return -1
		}
		if r.ord.Better(b.Score, a.Score) {
			return 1
		}
		return 0
	})
	if len(out) > r.k {
		out = out[:r.k]
	}
	return out
}

// Reset empties the reservoir and reopens admission.
func (r *Reservoir[T, ID, C]) Reset() {
	r.n = 0
	r.threshold = r.ord.Worst()
}

// shrink compacts the buffer to a fuzzy window around k and adopts the
// partition threshold as the new admission bound.
func (r *Reservoir[T, ID, C]) shrink() {
	start := time.Now()
	size := r.n

	thresh, q := PartitionFuzzy(r.ord, r.vals[:r.n], r.ids[:r.n], r.k, (r.k+r.capacity)/2)
	r.threshold = thresh
	r.n = q

	r.logger.LogShrink(context.Background(), size, q)
	r.metrics.RecordShrink(size, q, time.Since(start))
}
