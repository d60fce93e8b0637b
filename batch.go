package topk

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// BatchItem pairs one score array with its optional identifier array.
type BatchItem[T Score, ID Integer] struct {
	Vals []T
	IDs  []ID
}

// BatchResult reports the partition outcome for one batch item.
type BatchResult[T Score] struct {
	Threshold T
	Q         int
}

// BatchOptions configures BatchPartitionFuzzy.
type BatchOptions struct {
	// Parallelism bounds the number of items partitioned concurrently.
	// Zero or negative selects GOMAXPROCS.
	Parallelism int

	// Logger receives batch completion events.
	Logger *Logger

	// MetricsCollector receives batch metrics.
	MetricsCollector MetricsCollector
}

// BatchPartitionFuzzy partitions every item in place, each under the same
// quota window, spreading the work across a bounded set of goroutines.
// Results line up with items by index. When ctx is canceled the remaining
// items are skipped and the context error is returned; already
// partitioned items stay partitioned.
func BatchPartitionFuzzy[T Score, ID Integer, C Order[T]](ctx context.Context, ord C, items []BatchItem[T, ID], qMin, qMax int, optFns ...func(o *BatchOptions)) ([]BatchResult[T], error) {
	assertf(qMin >= 0 && qMin <= qMax, "invalid quota range [%d, %d]", qMin, qMax)

	opts := BatchOptions{
		Logger:           NoopLogger(),
		MetricsCollector: &NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	limit := opts.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	start := time.Now()
	results := make([]BatchResult[T], len(items))

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			thresh, q := PartitionFuzzy(ord, item.Vals, item.IDs, qMin, qMax)
			results[i] = BatchResult[T]{Threshold: thresh, Q: q}
			done.Add(1)
			return nil
		})
	}

	err := g.Wait()
	failed := len(items) - int(done.Load())
	opts.Logger.LogBatchPartition(ctx, len(items), failed)
	opts.MetricsCollector.RecordBatchPartition(len(items), failed, time.Since(start))
	if err != nil {
		return nil, err
	}
	return results, nil
}
