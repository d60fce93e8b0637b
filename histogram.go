package topk

import (
	"github.com/hupe1980/topk/internal/simd"
)

// maxShift is the widest supported bucket shift for the shifted
// histogram variants.
const maxShift = 8

// Histogram8 counts vals into 8 buckets selected by the raw value.
// Callers must keep every value inside [0, 8); out-of-range values are a
// caller error and their bucketing is unspecified.
func Histogram8(vals []uint16) [8]int {
	return simd.Histogram8(vals)
}

// Histogram16 counts vals into 16 buckets selected by the raw value.
// Callers must keep every value inside [0, 16); out-of-range values are a
// caller error and their bucketing is unspecified.
func Histogram16(vals []uint16) [16]int {
	return simd.Histogram16(vals)
}

// Histogram8Shifted counts vals into 8 buckets selected by
// (v - min) >> shift. Values below min or past the last bucket are
// clipped out of the histogram entirely, so a caller can walk a wide
// value domain one digit at a time. shift outside [0, 8] returns
// ErrUnsupportedShift.
func Histogram8Shifted(vals []uint16, min uint16, shift int) ([8]int, error) {
	if shift < 0 || shift > maxShift {
		return [8]int{}, &ErrUnsupportedShift{Shift: shift}
	}
	return simd.Histogram8Shifted(vals, min, shift), nil
}

// Histogram16Shifted counts vals into 16 buckets selected by
// (v - min) >> shift, clipping values outside the bucket range. shift
// outside [0, 8] returns ErrUnsupportedShift.
func Histogram16Shifted(vals []uint16, min uint16, shift int) ([16]int, error) {
	if shift < 0 || shift > maxShift {
		return [16]int{}, &ErrUnsupportedShift{Shift: shift}
	}
	return simd.Histogram16Shifted(vals, min, shift), nil
}
