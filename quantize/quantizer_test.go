package quantize

import (
	"math"
	"math/rand"
	"slices"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/topk/internal/mem"
)

func TestNew(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		sq, err := New(-1.5, 2.5)
		require.NoError(t, err)
		assert.Equal(t, float32(-1.5), sq.Lo())
		assert.Equal(t, float32(2.5), sq.Hi())
	})

	t.Run("InvalidBounds", func(t *testing.T) {
		nan := float32(math.NaN())
		inf := float32(math.Inf(1))

		tests := []struct {
			name   string
			lo, hi float32
		}{
			{name: "NaNLow", lo: nan, hi: 1},
			{name: "NaNHigh", lo: 0, hi: nan},
			{name: "InfLow", lo: -inf, hi: 1},
			{name: "InfHigh", lo: 0, hi: inf},
			{name: "Equal", lo: 3, hi: 3},
			{name: "Inverted", lo: 5, hi: 2},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := New(tt.lo, tt.hi)
				require.Error(t, err)
			})
		}
	})
}

func TestEncode(t *testing.T) {
	// With bounds [0, 65535] one code interval spans exactly one score
	// unit, so codes are exact.
	sq, err := New(0, 65535)
	require.NoError(t, err)

	assert.Equal(t, uint16(0), sq.Encode(0))
	assert.Equal(t, uint16(7), sq.Encode(7))
	assert.Equal(t, uint16(65535), sq.Encode(65535))

	t.Run("Clamps", func(t *testing.T) {
		assert.Equal(t, uint16(0), sq.Encode(-100))
		assert.Equal(t, uint16(65535), sq.Encode(1e9))
	})

	t.Run("BoundsMapToExtremes", func(t *testing.T) {
		sq, err := New(-2.5, 4.25)
		require.NoError(t, err)

		assert.Equal(t, uint16(0), sq.Encode(-2.5))
		assert.Equal(t, uint16(65535), sq.Encode(4.25))
	})

	t.Run("Monotone", func(t *testing.T) {
		sq, err := New(0, 100)
		require.NoError(t, err)

		r := rand.New(rand.NewSource(17))
		scores := make([]float32, 500)
		for i := range scores {
			scores[i] = r.Float32() * 100
		}
		slices.Sort(scores)

		codes := sq.EncodeSlice(scores)
		for i := 1; i < len(codes); i++ {
			require.LessOrEqualf(t, codes[i-1], codes[i], "codes out of order at %d: %g -> %g", i, scores[i-1], scores[i])
		}
	})
}

func TestRoundTrip(t *testing.T) {
	sq, err := New(0, 100)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(18))
	for i := 0; i < 1000; i++ {
		score := r.Float32() * 100
		decoded := sq.Decode(sq.Encode(score))
		assert.InDeltaf(t, score, decoded, float64(sq.Step())*0.52, "score %g decoded to %g", score, decoded)
	}
}

func TestTrain(t *testing.T) {
	t.Run("Calibrates", func(t *testing.T) {
		sq, err := New(0, 1)
		require.NoError(t, err)

		require.NoError(t, sq.Train([]float32{3.5, -2.25, 10, 0}))
		assert.Equal(t, float32(-2.25), sq.Lo())
		assert.Equal(t, float32(10), sq.Hi())
	})

	t.Run("AllEqual", func(t *testing.T) {
		sq, err := New(0, 1)
		require.NoError(t, err)

		require.NoError(t, sq.Train([]float32{4, 4, 4}))
		assert.Equal(t, float32(4), sq.Lo())
		assert.Equal(t, float32(5), sq.Hi())
	})

	t.Run("Empty", func(t *testing.T) {
		sq, err := New(0, 1)
		require.NoError(t, err)

		err = sq.Train(nil)
		require.ErrorIs(t, err, ErrNoTrainingScores)
		require.EqualError(t, err, "no scores provided for training")
	})
}

func TestEncodeAligned(t *testing.T) {
	sq, err := New(0, 1000)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(19))
	scores := make([]float32, 333)
	for i := range scores {
		scores[i] = r.Float32() * 1000
	}

	aligned := sq.EncodeAligned(scores)
	require.Len(t, aligned, len(scores))
	assert.True(t, mem.IsAligned(unsafe.Pointer(&aligned[0])))
	assert.Equal(t, sq.EncodeSlice(scores), aligned)
}

func TestDecodeSlice(t *testing.T) {
	sq, err := New(0, 65535)
	require.NoError(t, err)

	scores := sq.DecodeSlice([]uint16{0, 7, 65535})
	assert.Equal(t, []float32{0, 7, 65535}, scores)
}

func TestStep(t *testing.T) {
	sq, err := New(0, 65535)
	require.NoError(t, err)
	assert.Equal(t, float32(1), sq.Step())

	sq, err = New(0, 131070)
	require.NoError(t, err)
	assert.Equal(t, float32(2), sq.Step())
}
