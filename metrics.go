package topk

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    shrinkCounter   prometheus.Counter
//	    shrinkHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordShrink(size, kept int, duration time.Duration) {
//	    p.shrinkCounter.Inc()
//	    // ... record duration, shrink ratio, etc.
//	}
type MetricsCollector interface {
	// RecordShrink is called after each reservoir shrink.
	// size is the number of buffered elements before the shrink, kept is
	// the number that survived, duration is the time taken.
	RecordShrink(size, kept int, duration time.Duration)

	// RecordBatchPartition is called after each batch partition run.
	// count is the number of arrays attempted, failed is the number that
	// were not processed, duration is the total time taken.
	RecordBatchPartition(count, failed int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordShrink(int, int, time.Duration)         {}
func (NoopMetricsCollector) RecordBatchPartition(int, int, time.Duration) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ShrinkCount      atomic.Int64
	ShrinkElems      atomic.Int64
	ShrinkTotalNanos atomic.Int64
	BatchCount       atomic.Int64
	BatchItems       atomic.Int64
	BatchFailed      atomic.Int64
}

// RecordShrink implements MetricsCollector.
func (b *BasicMetricsCollector) RecordShrink(size, kept int, duration time.Duration) {
	b.ShrinkCount.Add(1)
	b.ShrinkElems.Add(int64(size - kept))
	b.ShrinkTotalNanos.Add(duration.Nanoseconds())
}

// RecordBatchPartition implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatchPartition(count, failed int, duration time.Duration) {
	b.BatchCount.Add(1)
	b.BatchItems.Add(int64(count))
	b.BatchFailed.Add(int64(failed))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ShrinkCount:    b.ShrinkCount.Load(),
		ShrinkElems:    b.ShrinkElems.Load(),
		ShrinkAvgNanos: b.getAvgShrinkNanos(),
		BatchCount:     b.BatchCount.Load(),
		BatchItems:     b.BatchItems.Load(),
		BatchFailed:    b.BatchFailed.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgShrinkNanos() int64 {
	count := b.ShrinkCount.Load()
	if count == 0 {
		return 0
	}
	return b.ShrinkTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ShrinkCount    int64
	ShrinkElems    int64
	ShrinkAvgNanos int64
	BatchCount     int64
	BatchItems     int64
	BatchFailed    int64
}
