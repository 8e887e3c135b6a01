package neardup

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting per-stage metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordSignatures is called after signature generation.
	// items is the number of vectors processed, err is nil on success.
	RecordSignatures(items, bands int, duration time.Duration, err error)

	// RecordCandidates is called after candidate generation.
	// deduped is the size of the refined pair set, raw the number of
	// generation events across bands.
	RecordCandidates(deduped int, raw int64, duration time.Duration)

	// RecordRefinement is called after refinement.
	// pairs is the number of candidates checked, kept the number of
	// confirmed duplicates.
	RecordRefinement(pairs, kept int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSignatures(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordCandidates(int, int64, time.Duration)      {}
func (NoopMetricsCollector) RecordRefinement(int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SignatureRuns      atomic.Int64
	SignatureItems     atomic.Int64
	SignatureErrors    atomic.Int64
	SignatureNanos     atomic.Int64
	CandidateRuns      atomic.Int64
	CandidatePairs     atomic.Int64
	CandidateRawEvents atomic.Int64
	CandidateNanos     atomic.Int64
	RefinementRuns     atomic.Int64
	RefinementPairs    atomic.Int64
	RefinementKept     atomic.Int64
	RefinementErrors   atomic.Int64
	RefinementNanos    atomic.Int64
}

// RecordSignatures implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSignatures(items, bands int, duration time.Duration, err error) {
	b.SignatureRuns.Add(1)
	b.SignatureItems.Add(int64(items))
	b.SignatureNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SignatureErrors.Add(1)
	}
}

// RecordCandidates implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCandidates(deduped int, raw int64, duration time.Duration) {
	b.CandidateRuns.Add(1)
	b.CandidatePairs.Add(int64(deduped))
	b.CandidateRawEvents.Add(raw)
	b.CandidateNanos.Add(duration.Nanoseconds())
}

// RecordRefinement implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRefinement(pairs, kept int, duration time.Duration, err error) {
	b.RefinementRuns.Add(1)
	b.RefinementPairs.Add(int64(pairs))
	b.RefinementKept.Add(int64(kept))
	b.RefinementNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RefinementErrors.Add(1)
	}
}

// BasicMetricsStats is a point-in-time snapshot of a BasicMetricsCollector.
type BasicMetricsStats struct {
	SignatureRuns      int64
	SignatureItems     int64
	SignatureErrors    int64
	CandidateRuns      int64
	CandidatePairs     int64
	CandidateRawEvents int64
	RefinementRuns     int64
	RefinementPairs    int64
	RefinementKept     int64
	RefinementErrors   int64
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SignatureRuns:      b.SignatureRuns.Load(),
		SignatureItems:     b.SignatureItems.Load(),
		SignatureErrors:    b.SignatureErrors.Load(),
		CandidateRuns:      b.CandidateRuns.Load(),
		CandidatePairs:     b.CandidatePairs.Load(),
		CandidateRawEvents: b.CandidateRawEvents.Load(),
		RefinementRuns:     b.RefinementRuns.Load(),
		RefinementPairs:    b.RefinementPairs.Load(),
		RefinementKept:     b.RefinementKept.Load(),
		RefinementErrors:   b.RefinementErrors.Load(),
	}
}
