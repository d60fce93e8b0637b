package topk

import (
	"math"
)

// Score constrains the value types the selection operations order.
// The set is exact (no ~) because the sentinel bounds below are resolved
// by dynamic type; convert named types at the call site.
type Score interface {
	float32 | float64 | int16 | int32 | int64 | uint16 | uint32 | uint64
}

// Order is the ordering strategy the selection operations take as a value
// parameter. Min and Max are the two implementations; both are zero-size,
// so instantiated call sites compile down to direct comparisons.
type Order[T Score] interface {
	// Better reports whether a ranks ahead of b.
	Better(a, b T) bool
	// Worst returns the bound every score improves on. It is the
	// threshold when everything qualifies and the starting threshold of
	// a fresh reservoir.
	Worst() T
	// Best returns the bound no score improves on. It is the threshold
	// when nothing qualifies.
	Best() T
	// Next returns the adjacent representable value one step in the
	// Better direction.
	Next(v T) T
	// SelectsMin reports whether the policy keeps the smallest scores.
	SelectsMin() bool
}

// Min selects the smallest scores. Use it for distance-like scores where
// smaller is better.
type Min[T Score] struct{}

// Better reports whether a ranks ahead of b.
func (Min[T]) Better(a, b T) bool { return a < b }

// Worst returns the largest representable score.
func (Min[T]) Worst() T { return typeMax[T]() }

// Best returns the smallest representable score.
func (Min[T]) Best() T { return typeMin[T]() }

// Next returns the next representable score below v.
func (Min[T]) Next(v T) T { return stepDown(v) }

// SelectsMin reports the direction.
func (Min[T]) SelectsMin() bool { return true }

// Reversed returns the opposite policy.
func (Min[T]) Reversed() Max[T] { return Max[T]{} }

// Max selects the largest scores. Use it for similarity-like scores where
// larger is better.
type Max[T Score] struct{}

// Better reports whether a ranks ahead of b.
func (Max[T]) Better(a, b T) bool { return a > b }

// Worst returns the smallest representable score.
func (Max[T]) Worst() T { return typeMin[T]() }

// Best returns the largest representable score.
func (Max[T]) Best() T { return typeMax[T]() }

// Next returns the next representable score above v.
func (Max[T]) Next(v T) T { return stepUp(v) }

// SelectsMin reports the direction.
func (Max[T]) SelectsMin() bool { return false }

// Reversed returns the opposite policy.
func (Max[T]) Reversed() Min[T] { return Min[T]{} }

func typeMax[T Score]() T {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(float32(math.Inf(1))).(T)
	case float64:
		return any(math.Inf(1)).(T)
	case int16:
		return any(int16(math.MaxInt16)).(T)
	case int32:
		return any(int32(math.MaxInt32)).(T)
	case int64:
		return any(int64(math.MaxInt64)).(T)
	case uint16:
		return any(uint16(math.MaxUint16)).(T)
	case uint32:
		return any(uint32(math.MaxUint32)).(T)
	case uint64:
		return any(uint64(math.MaxUint64)).(T)
	default:
		panic("unreachable score type")
	}
}

func typeMin[T Score]() T {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(float32(math.Inf(-1))).(T)
	case float64:
		return any(math.Inf(-1)).(T)
	case int16:
		return any(int16(math.MinInt16)).(T)
	case int32:
		return any(int32(math.MinInt32)).(T)
	case int64:
		return any(int64(math.MinInt64)).(T)
	default:
		// Unsigned minimum.
		return zero
	}
}

func stepDown[T Score](v T) T {
	switch x := any(v).(type) {
	case float32:
		return any(math.Nextafter32(x, float32(math.Inf(-1)))).(T)
	case float64:
		return any(math.Nextafter(x, math.Inf(-1))).(T)
	default:
		return v - 1
	}
}

func stepUp[T Score](v T) T {
	switch x := any(v).(type) {
	case float32:
		return any(math.Nextafter32(x, float32(math.Inf(1)))).(T)
	case float64:
		return any(math.Nextafter(x, math.Inf(1))).(T)
	default:
		return v + 1
	}
}
