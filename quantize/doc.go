// Package quantize maps float32 scores onto 16-bit codes for the
// vectorized selection path.
//
// The mapping is a clamped affine transform from a score interval
// [lo, hi] onto the full uint16 range. It is monotone, so selecting the
// best codes selects the best scores up to quantization ties:
//
//	sq, err := quantize.New(0, 2)      // squared distances in [0, 2]
//	codes := sq.EncodeAligned(scores)  // 64-byte aligned, simd-eligible
//	thresh, q := topk.PartitionFuzzy(topk.Min[uint16]{}, codes, ids, k, k+16)
//	bound := sq.Decode(thresh)
//
// Train derives the interval from observed scores when it is not known
// up front. Scores outside the interval clamp to the nearest code, so a
// too-narrow interval costs resolution at the edges rather than
// correctness.
package quantize
