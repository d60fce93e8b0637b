// Package topk provides in-place approximate top-k selection and
// histogram primitives over flat score arrays.
//
// The core operation splits an array around a threshold so the best q
// elements come first, without sorting and without allocating:
//
//   - Fuzzy partitioning: the caller accepts any achieved count q inside
//     [qMin, qMax], which lets tie-heavy inputs settle in a handful of
//     counting passes
//   - Generic order policies: Min for distance-like scores, Max for
//     similarity-like scores, over float and integer score types
//   - A vectorized path for 64-byte aligned uint16 scores (AVX2/AVX-512 on
//     x86_64, NEON on ARM64) that binary-searches the value domain instead
//     of sampling
//   - Bucket histograms (8 or 16 buckets, raw or shifted/clipped) sharing
//     the same counting kernels, for cumulative-distribution strategies
//   - A Reservoir collector that over-admits candidates and compacts with
//     a fuzzy partition, the usual consumer of this primitive in a search
//     engine's scoring loop
//   - Exact rank lookup (NthScore) by histogram digit descent
//   - Batch partitioning across independent arrays with bounded
//     parallelism
//
// # Fuzzy Partitioning
//
// Partition the 100 nearest distances out of a million, tolerating up to
// 116 when ties make exactly 100 expensive:
//
//	ord := topk.Min[float32]{}
//	thresh, q := topk.PartitionFuzzy(ord, distances, ids, 100, 116)
//	// distances[:q] and ids[:q] now hold the winners; thresh bounds them.
//
// The arrays are reordered in place and identifiers stay paired with
// their scores. Use Partition for an exact count.
//
// # Vectorized Path
//
// uint16 scores in 64-byte aligned memory take the vectorized kernels
// automatically. Allocate through the quantize package (EncodeAligned) or
// keep scores in a Reservoir, which aligns its buffer itself. Set
// TOPK_SIMD=generic to force the scalar path, for example to compare the
// two implementations.
//
// # Reservoir
//
// Collect the best k of a candidate stream without sorting:
//
//	res := topk.NewReservoir[uint16, int64](topk.Min[uint16]{}, 10)
//	for id, code := range scored {
//	    res.Add(code, id)
//	}
//	for _, r := range res.Results() {
//	    fmt.Println(r.ID, r.Score)
//	}
//
// # Histograms
//
// Count 16-bit scores into buckets, either by raw value or by a shifted
// digit of (value - min):
//
//	counts := topk.Histogram16(codes)
//	digits, err := topk.Histogram16Shifted(codes, min, 4)
//
// The shifted form clips values outside the bucket range, so repeated
// calls with narrowing shifts walk a wide value domain one digit at a
// time.
package topk
