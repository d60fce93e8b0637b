// Package simd provides vectorized kernels for uint16 partitioning and
// bucketed histograms.
//
// # Supported Platforms
//
//   - x86-64: AVX-512, AVX2
//   - ARM64: NEON
//
// Kernels are written against the portable hwy lane API, which dispatches
// to the widest available instruction set at runtime. CPU feature detection
// additionally gates the partition fast path; set TOPK_SIMD=generic to
// force the scalar fallback.
//
// # Operations
//
//   - PartitionFuzzy: in-place approximate top-k partition of uint16 values
//   - PartitionFuzzyGeneric: the same search with scalar loops, used for
//     unaligned buffers and as the reference the kernels are tested against
//   - Histogram8/Histogram16: bucketed counting, unbounded and min/shift modes
//
// Histogram counting runs on packed 64-bit accumulator words widened in
// stages, so it is correct on every platform and needs no capability gate.
package simd
