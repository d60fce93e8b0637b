package topk

// bigPrime strides the threshold sampling so repeated passes do not walk
// the array in the same order.
const bigPrime = 6700417

// maxIterations caps the bisection. The sampled interval loses at least
// one candidate value per iteration, so hitting the cap means the interval
// invariant broke.
const maxIterations = 200

// median3 returns the median of three values.
func median3[T Score](a, b, c T) T {
	if a > b {
		a, b = b, a
	}
	if c > b {
		return b
	}
	if c > a {
		return c
	}
	return a
}

// sampleThreshold picks a candidate threshold strictly inside the open
// interval (threshInf, threshSup): the median of the first three interval
// values found on a prime-strided walk of the array. Returns threshInf
// when the interval holds no value.
func sampleThreshold[T Score, C Order[T]](ord C, vals []T, threshInf, threshSup T) T {
	n := len(vals)
	var val3 [3]T
	vi := 0

	for i := 0; i < n; i++ {
		v := vals[(i*bigPrime)%n]
		if ord.Better(threshInf, v) && ord.Better(v, threshSup) {
			val3[vi] = v
			vi++
			if vi == 3 {
				break
			}
		}
	}

	switch vi {
	case 3:
		return median3(val3[0], val3[1], val3[2])
	case 0:
		return threshInf
	default:
		return val3[0]
	}
}

// countBetterEq counts the elements strictly better than thresh and the
// elements equal to it.
func countBetterEq[T Score, C Order[T]](ord C, vals []T, thresh T) (nBetter, nEq int) {
	for _, v := range vals {
		if ord.Better(v, thresh) {
			nBetter++
		} else if v == thresh {
			nEq++
		}
	}
	return nBetter, nEq
}

// compressKeep partitions vals (and ids, swapped in lockstep when non-nil)
// in place: every element strictly better than thresh plus the first nEq1
// elements equal to it move to the front in encounter order, everything
// else moves behind them. The multiset of (value, id) pairs is unchanged.
// Returns the number of kept elements.
func compressKeep[T Score, ID Integer, C Order[T]](ord C, vals []T, ids []ID, thresh T, nEq1 int) int {
	wp := 0
	for i, v := range vals {
		keep := ord.Better(v, thresh)
		if !keep && v == thresh && nEq1 > 0 {
			keep = true
			nEq1--
		}
		if !keep {
			continue
		}
		vals[wp], vals[i] = vals[i], vals[wp]
		if ids != nil {
			ids[wp], ids[i] = ids[i], ids[wp]
		}
		wp++
	}
	return wp
}

// bisectPartitionFuzzy partitions vals by bisecting on sampled candidate
// thresholds and compressing the winners into the prefix afterwards. It
// never inspects value bit patterns, so it serves every score type and
// every input the vectorized path rejects.
func bisectPartitionFuzzy[T Score, ID Integer, C Order[T]](ord C, vals []T, ids []ID, qMin, qMax int) (T, int) {
	n := len(vals)

	if qMin == 0 {
		return ord.Best(), 0
	}
	if qMax >= n {
		return ord.Worst(), n
	}
	assertf(n >= 3, "bisection needs at least 3 values, got %d", n)

	threshInf, threshSup := ord.Best(), ord.Worst()
	thresh := median3(vals[0], vals[n/2], vals[n-1])

	var nBetter, nEq, q int
	for it := 0; it < maxIterations; it++ {
		nBetter, nEq = countBetterEq(ord, vals, thresh)

		if nBetter <= qMin {
			if nBetter+nEq >= qMin {
				q = qMin
				break
			}
			// Too few qualify; tighten the better bound.
			threshInf = thresh
		} else if nBetter <= qMax {
			q = nBetter
			break
		} else {
			// Too many strictly better; tighten the worse bound.
			threshSup = thresh
		}

		next := sampleThreshold(ord, vals, threshInf, threshSup)
		if next == threshInf {
			// Nothing left strictly inside the interval.
			break
		}
		thresh = next
	}

	nEq1 := q - nBetter
	if nEq1 < 0 {
		// The search stalled with the quota boundary inside a run of
		// duplicates the sampler cannot see. Step the threshold onto that
		// run and let the tie budget cut it.
		q = qMin
		thresh = ord.Next(thresh)
		nEq1 = q
	} else if q == 0 {
		// Stalled from the other side: every sampled threshold keeps too
		// few, so the shortfall is a run at the worst bound, which the
		// sampler can never reach. Take the bound itself as threshold and
		// let the tie budget fill the quota.
		q = qMin
		thresh = ord.Worst()
		nBetter, _ = countBetterEq(ord, vals, thresh)
		nEq1 = q - nBetter
	} else {
		assertf(nEq1 <= nEq, "tie budget %d exceeds equal count %d", nEq1, nEq)
	}

	wp := compressKeep(ord, vals, ids, thresh, nEq1)
	assertf(wp == q, "compress kept %d elements, expected %d", wp, q)
	return thresh, q
}
