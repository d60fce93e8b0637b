package quantize

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/topk/internal/mem"
)

// steps is the number of code intervals in the uint16 range.
const steps = 65535

// ErrNoTrainingScores indicates Train was called without any scores.
var ErrNoTrainingScores = errors.New("no scores provided for training")

// ScoreQuantizer maps float32 scores in [lo, hi] onto uint16 codes.
// The mapping is monotone increasing: if a < b then Encode(a) <=
// Encode(b), so order-based selection over codes matches selection over
// scores up to ties introduced by rounding.
type ScoreQuantizer struct {
	lo float32
	hi float32
}

// New creates a quantizer for scores in [lo, hi]. The bounds must be
// finite with lo < hi.
func New(lo, hi float32) (*ScoreQuantizer, error) {
	if math.IsNaN(float64(lo)) || math.IsNaN(float64(hi)) ||
		math.IsInf(float64(lo), 0) || math.IsInf(float64(hi), 0) {
		return nil, fmt.Errorf("score bounds must be finite, got [%g, %g]", lo, hi)
	}
	if hi <= lo {
		return nil, fmt.Errorf("invalid score bounds [%g, %g]", lo, hi)
	}
	return &ScoreQuantizer{lo: lo, hi: hi}, nil
}

// Train calibrates the bounds to the minimum and maximum of the observed
// scores.
func (sq *ScoreQuantizer) Train(scores []float32) error {
	if len(scores) == 0 {
		return ErrNoTrainingScores
	}

	lo := float32(math.MaxFloat32)
	hi := float32(-math.MaxFloat32)
	for _, s := range scores {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}

	// Handle edge case where all scores are the same
	if lo == hi {
		hi = lo + 1
	}

	sq.lo = lo
	sq.hi = hi
	return nil
}

// Encode maps a score to its code. Scores outside [lo, hi] clamp to the
// interval edges.
func (sq *ScoreQuantizer) Encode(score float32) uint16 {
	if score < sq.lo {
		score = sq.lo
	} else if score > sq.hi {
		score = sq.hi
	}

	scale := steps / (sq.hi - sq.lo)
	normalized := (score - sq.lo) * scale
	return uint16(normalized + 0.5) // Round to nearest
}

// EncodeSlice encodes every score into a fresh code slice.
func (sq *ScoreQuantizer) EncodeSlice(scores []float32) []uint16 {
	codes := make([]uint16, len(scores))
	for i, s := range scores {
		codes[i] = sq.Encode(s)
	}
	return codes
}

// EncodeAligned encodes every score into a 64-byte aligned code slice, so
// the result qualifies for the vectorized partitioning path without a
// copy.
func (sq *ScoreQuantizer) EncodeAligned(scores []float32) []uint16 {
	codes := mem.Aligned[uint16](len(scores))
	for i, s := range scores {
		codes[i] = sq.Encode(s)
	}
	return codes
}

// Decode reconstructs the nominal score for a code. Round-tripping a
// score through Encode and Decode lands within half a Step of the clamped
// input.
func (sq *ScoreQuantizer) Decode(code uint16) float32 {
	scale := (sq.hi - sq.lo) / steps
	return float32(code)*scale + sq.lo
}

// DecodeSlice decodes every code into a fresh score slice.
func (sq *ScoreQuantizer) DecodeSlice(codes []uint16) []float32 {
	scores := make([]float32, len(codes))
	for i, c := range codes {
		scores[i] = sq.Decode(c)
	}
	return scores
}

// Lo returns the lower score bound.
func (sq *ScoreQuantizer) Lo() float32 {
	return sq.lo
}

// Hi returns the upper score bound.
func (sq *ScoreQuantizer) Hi() float32 {
	return sq.hi
}

// Step returns the score width of one code interval.
func (sq *ScoreQuantizer) Step() float32 {
	return (sq.hi - sq.lo) / steps
}
