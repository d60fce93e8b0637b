package topk

import (
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkFuzzyPartition verifies the partition contract: q inside the quota
// window, a prefix no worse than the threshold, a suffix that never beats
// it, and an unchanged multiset of (value, id) pairs.
func checkFuzzyPartition[T Score, ID Integer, C Order[T]](t *testing.T, ord C, origVals []T, origIDs []ID, vals []T, ids []ID, thresh T, q, qMin, qMax int) {
	t.Helper()

	require.GreaterOrEqual(t, q, qMin)
	require.LessOrEqual(t, q, qMax)

	for i := 0; i < q; i++ {
		require.Falsef(t, ord.Better(thresh, vals[i]), "prefix element %d (%v) is worse than threshold %v", i, vals[i], thresh)
	}
	for i := q; i < len(vals); i++ {
		require.Falsef(t, ord.Better(vals[i], thresh), "suffix element %d (%v) beats threshold %v", i, vals[i], thresh)
	}

	type pair struct {
		v  T
		id ID
	}
	count := make(map[pair]int, len(origVals))
	for i := range origVals {
		var id ID
		if origIDs != nil {
			id = origIDs[i]
		}
		count[pair{origVals[i], id}]++
	}
	for i := range vals {
		var id ID
		if ids != nil {
			id = ids[i]
		}
		p := pair{vals[i], id}
		count[p]--
		require.GreaterOrEqualf(t, count[p], 0, "pair (%v, %v) appears more often than in the input", p.v, p.id)
	}
}

func TestMedian3(t *testing.T) {
	tests := []struct {
		name     string
		a, b, c  int32
		expected int32
	}{
		{name: "Ascending", a: 1, b: 2, c: 3, expected: 2},
		{name: "Descending", a: 3, b: 2, c: 1, expected: 2},
		{name: "MiddleFirst", a: 2, b: 3, c: 1, expected: 2},
		{name: "TwoEqualLow", a: 1, b: 1, c: 5, expected: 1},
		{name: "TwoEqualHigh", a: 5, b: 5, c: 1, expected: 5},
		{name: "AllEqual", a: 4, b: 4, c: 4, expected: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, median3(tt.a, tt.b, tt.c))
		})
	}
}

func TestSampleThreshold(t *testing.T) {
	ord := Min[int64]{}

	t.Run("MedianOfThree", func(t *testing.T) {
		vals := []int64{10, 2, 8, 4, 6}
		// The prime-strided walk visits 8, 6, 4 inside (2, 10).
		assert.Equal(t, int64(6), sampleThreshold(ord, vals, 2, 10))
	})

	t.Run("FewerThanThree", func(t *testing.T) {
		vals := []int64{1, 5, 9, 13}
		assert.Equal(t, int64(5), sampleThreshold(ord, vals, 1, 13))
	})

	t.Run("EmptyInterval", func(t *testing.T) {
		vals := []int64{1, 5, 9, 13}
		assert.Equal(t, int64(5), sampleThreshold(ord, vals, 5, 9))
	})
}

func TestCompressKeep(t *testing.T) {
	t.Run("TieBudgetCutsEquals", func(t *testing.T) {
		ord := Min[int32]{}
		vals := []int32{4, 1, 4, 2, 4, 3}
		ids := []int64{0, 1, 2, 3, 4, 5}

		wp := compressKeep(ord, vals, ids, 4, 1)

		require.Equal(t, 4, wp)
		assert.Equal(t, []int32{4, 1, 2, 3, 4, 4}, vals)
		assert.Equal(t, []int64{0, 1, 3, 5, 4, 2}, ids)
	})

	t.Run("NilIDs", func(t *testing.T) {
		ord := Max[float32]{}
		vals := []float32{1, 9, 5, 9, 2}

		wp := compressKeep[float32, int64](ord, vals, nil, 5, 0)

		require.Equal(t, 2, wp)
		assert.Equal(t, []float32{9, 9, 5, 1, 2}, vals)
	})

	t.Run("KeepsNothing", func(t *testing.T) {
		ord := Min[int32]{}
		vals := []int32{5, 6, 7}

		wp := compressKeep(ord, vals, []int64{0, 1, 2}, 5, 0)

		require.Equal(t, 0, wp)
		assert.Equal(t, []int32{5, 6, 7}, vals)
	})
}

func TestBisectPartitionFuzzy(t *testing.T) {
	t.Run("SelectSmallest", func(t *testing.T) {
		ord := Min[float32]{}
		vals := []float32{5, 3, 3, 8, 1, 9, 3}
		ids := []int64{0, 1, 2, 3, 4, 5, 6}

		thresh, q := bisectPartitionFuzzy(ord, vals, ids, 3, 3)

		require.Equal(t, float32(3), thresh)
		require.Equal(t, 3, q)
		assert.ElementsMatch(t, []float32{1, 3, 3}, vals[:q])
		assert.ElementsMatch(t, []int64{1, 2, 4}, ids[:q])
		assert.ElementsMatch(t, []float32{5, 8, 9, 3}, vals[q:])
	})

	t.Run("SelectLargest", func(t *testing.T) {
		ord := Max[float32]{}
		vals := []float32{5, 3, 3, 8, 1, 9, 3}
		ids := []int64{0, 1, 2, 3, 4, 5, 6}

		thresh, q := bisectPartitionFuzzy(ord, vals, ids, 3, 3)

		require.Equal(t, float32(5), thresh)
		require.Equal(t, 3, q)
		assert.ElementsMatch(t, []float32{5, 8, 9}, vals[:q])
		assert.ElementsMatch(t, []int64{0, 3, 5}, ids[:q])
	})

	t.Run("AllEqual", func(t *testing.T) {
		ord := Min[float64]{}
		vals := make([]float64, 10)
		for i := range vals {
			vals[i] = 7.5
		}

		thresh, q := bisectPartitionFuzzy[float64, int64](ord, vals, nil, 2, 4)

		assert.Equal(t, 7.5, thresh)
		assert.Equal(t, 2, q)
		for _, v := range vals {
			assert.Equal(t, 7.5, v)
		}
	})

	t.Run("EmptyQuota", func(t *testing.T) {
		ord := Min[float32]{}
		vals := []float32{3, 1, 2}

		thresh, q := bisectPartitionFuzzy[float32, int64](ord, vals, nil, 0, 2)

		assert.Equal(t, float32(math.Inf(-1)), thresh)
		assert.Equal(t, 0, q)
		assert.Equal(t, []float32{3, 1, 2}, vals)
	})

	t.Run("FullQuota", func(t *testing.T) {
		ord := Max[float32]{}
		vals := []float32{3, 1, 2}

		thresh, q := bisectPartitionFuzzy[float32, int64](ord, vals, nil, 1, 3)

		assert.Equal(t, float32(math.Inf(-1)), thresh)
		assert.Equal(t, 3, q)
		assert.Equal(t, []float32{3, 1, 2}, vals)
	})

	t.Run("TooFewValuesPanics", func(t *testing.T) {
		ord := Min[float32]{}
		require.PanicsWithValue(t, "bisection needs at least 3 values, got 2", func() {
			bisectPartitionFuzzy[float32, int64](ord, []float32{1, 2}, nil, 1, 1)
		})
	})
}

func TestBisectPartitionFuzzyDuplicateFloor(t *testing.T) {
	// More zero scores than the window allows. Zeros sit on the sampling
	// bound and are invisible to the threshold search, so the run is cut
	// by the tie-budget correction instead.
	ord := Min[uint32]{}
	vals := []uint32{3, 0, 0, 0, 0, 0, 2, 0, 0, 0, 0, 1}
	ids := []int64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}

	thresh, q := bisectPartitionFuzzy(ord, vals, ids, 2, 2)

	require.Equal(t, uint32(0), thresh)
	require.Equal(t, 2, q)
	assert.Equal(t, []uint32{0, 0}, vals[:q])
	assert.Equal(t, []int64{1, 2}, ids[:q])
	assert.ElementsMatch(t, []uint32{3, 2, 1, 0, 0, 0, 0, 0, 0, 0}, vals[q:])
}

func TestBisectPartitionFuzzyInfinityFlood(t *testing.T) {
	// Negative infinities flood past the window. Unlike an integer floor
	// there is no adjacent representable value the correction can step
	// onto, so the compress count comes up wrong and the call fails loudly
	// instead of returning a broken partition.
	ord := Min[float32]{}
	ninf := float32(math.Inf(-1))
	vals := []float32{7, ninf, ninf, ninf, 8, ninf, ninf, 9}

	require.PanicsWithValue(t, "compress kept 5 elements, expected 1", func() {
		bisectPartitionFuzzy[float32, int64](ord, vals, nil, 1, 2)
	})
}

func TestBisectPartitionFuzzyWorstBoundFlood(t *testing.T) {
	// Worst-bound scores flood the array past the point where any sampled
	// threshold reaches the quota. The search settles on the bound itself
	// and fills the quota from the flood.
	ord := Min[float32]{}
	inf := float32(math.Inf(1))
	vals := []float32{5, inf, 5, inf}
	ids := []int64{0, 1, 2, 3}

	thresh, q := bisectPartitionFuzzy(ord, vals, ids, 3, 3)

	require.Equal(t, inf, thresh)
	require.Equal(t, 3, q)
	assert.ElementsMatch(t, []float32{5, 5, inf}, vals[:q])
	assert.ElementsMatch(t, []int64{0, 1, 2}, ids[:q])
}

func TestBisectPartitionFuzzyRandom(t *testing.T) {
	sizes := []int{3, 10, 50, 101, 200}

	t.Run("Float32", func(t *testing.T) {
		r := rand.New(rand.NewSource(3))
		for _, n := range sizes {
			for trial := 0; trial < 20; trial++ {
				vals := make([]float32, n)
				ids := make([]int64, n)
				for i := range vals {
					vals[i] = r.Float32() * 1000
					ids[i] = int64(i)
				}
				origVals := slices.Clone(vals)
				origIDs := slices.Clone(ids)

				qMin, qMax := randomWindow(r, n)
				thresh, q := bisectPartitionFuzzy(Min[float32]{}, vals, ids, qMin, qMax)
				checkFuzzyPartition(t, Min[float32]{}, origVals, origIDs, vals, ids, thresh, q, qMin, qMax)
			}
		}
	})

	t.Run("Float64SelectLargest", func(t *testing.T) {
		r := rand.New(rand.NewSource(4))
		for _, n := range sizes {
			for trial := 0; trial < 20; trial++ {
				vals := make([]float64, n)
				for i := range vals {
					vals[i] = r.NormFloat64()
				}
				origVals := slices.Clone(vals)

				qMin, qMax := randomWindow(r, n)
				thresh, q := bisectPartitionFuzzy[float64, int64](Max[float64]{}, vals, nil, qMin, qMax)
				checkFuzzyPartition[float64, int64](t, Max[float64]{}, origVals, nil, vals, nil, thresh, q, qMin, qMax)
			}
		}
	})

	t.Run("Int32TieHeavy", func(t *testing.T) {
		r := rand.New(rand.NewSource(5))
		for _, n := range sizes {
			for trial := 0; trial < 20; trial++ {
				vals := make([]int32, n)
				ids := make([]int32, n)
				for i := range vals {
					vals[i] = r.Int31n(8)
					ids[i] = int32(i)
				}
				origVals := slices.Clone(vals)
				origIDs := slices.Clone(ids)

				qMin, qMax := randomWindow(r, n)
				thresh, q := bisectPartitionFuzzy(Max[int32]{}, vals, ids, qMin, qMax)
				checkFuzzyPartition(t, Max[int32]{}, origVals, origIDs, vals, ids, thresh, q, qMin, qMax)
			}
		}
	})
}

// randomWindow draws a quota window with 1 <= qMin <= qMax < n.
func randomWindow(r *rand.Rand, n int) (int, int) {
	qMin := 1
	if n > 3 {
		qMin += r.Intn(n - 2)
	}
	qMax := qMin + r.Intn(n-qMin)
	return qMin, qMax
}
