// Package neardup finds near-duplicate documents in a fixed collection of
// sparse bag-of-words vectors without computing all pairwise distances.
//
// The pipeline is a one-shot batch computation in three stages:
//
//   - Signatures: every vector is projected onto b*r seeded Gaussian
//     hyperplanes and reduced to b integer band codes (r sign bits each).
//   - Candidates: per band, items sharing a code form a bucket and all
//     pairs within a bucket become candidates; pairs seen in several
//     bands are deduplicated.
//   - Refinement: exact cosine distance is computed for every candidate
//     pair and pairs at or under the threshold survive.
//
// # Quick Start
//
//	m, _ := sparse.FromRows(dim, rows)
//	result, err := neardup.FindNearDuplicates(ctx, m,
//	    neardup.WithBands(8),
//	    neardup.WithRowsPerBand(16),
//	    neardup.WithThreshold(0.1),
//	    neardup.WithSeed(42),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, rec := range result.Records {
//	    fmt.Println(rec.ID1, rec.ID2, rec.Distance)
//	}
//
// Results are deterministic for a fixed matrix, configuration and seed,
// regardless of worker count. Records are ordered by (ID1, ID2).
//
// The probability that two vectors at angle theta share at least one band
// is approximately 1 - (1 - (1 - theta/pi)^r)^b; tune b and r against the
// BruteForce baseline to trade recall for candidate volume.
package neardup

import (
	"context"
	"time"

	"github.com/hupe1980/neardup/bucket"
	"github.com/hupe1980/neardup/signature"
	"github.com/hupe1980/neardup/sparse"
)

// DuplicateRecord is one confirmed near-duplicate pair with its exact
// cosine distance. ID1 < ID2 always holds.
type DuplicateRecord struct {
	ID1      uint32
	ID2      uint32
	Distance float64
}

// Result is the output of a detection run.
type Result struct {
	// Records are the confirmed duplicates, ordered by (ID1, ID2).
	Records []DuplicateRecord

	// RawCandidateCount is the total number of (bucket, pair) generation
	// events across all bands, before deduplication. It measures the
	// redundant work the band layout produces and always bounds
	// len(Records) from above.
	RawCandidateCount int64
}

// Detector runs the LSH near-duplicate pipeline with a fixed
// configuration. It is stateless between runs and safe for concurrent use.
type Detector struct {
	opts    Options
	logger  *Logger
	metrics MetricsCollector
}

// New creates a Detector. Configuration errors (invalid band layout or
// threshold) are reported here, before any data is touched.
func New(optFns ...Option) (*Detector, error) {
	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := opts.validate(); err != nil {
		return nil, err
	}

	return &Detector{
		opts:    opts,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}, nil
}

// FindNearDuplicates runs the full pipeline over m and returns the
// confirmed duplicate pairs plus the raw candidate count.
func (d *Detector) FindNearDuplicates(ctx context.Context, m *sparse.Matrix) (*Result, error) {
	start := time.Now()

	gen, err := signature.New(m.Dim(), d.opts.Bands, d.opts.RowsPerBand, d.opts.Seed)
	if err != nil {
		return nil, err
	}

	codes, err := gen.Codes(ctx, m, d.opts.Workers)
	sigDur := time.Since(start)
	d.metrics.RecordSignatures(m.Rows(), d.opts.Bands, sigDur, err)
	if err != nil {
		return nil, err
	}
	d.logger.LogSignatures(ctx, m.Rows(), d.opts.Bands, d.opts.RowsPerBand, sigDur)

	bucketStart := time.Now()
	pairs, raw, err := bucket.Candidates(ctx, codes, d.opts.Bands, d.opts.Workers)
	if err != nil {
		return nil, err
	}
	bucketDur := time.Since(bucketStart)
	d.metrics.RecordCandidates(int(pairs.GetCardinality()), raw, bucketDur)
	d.logger.LogCandidates(ctx, int(pairs.GetCardinality()), raw, bucketDur)

	refineStart := time.Now()
	records, err := d.refine(ctx, m, pairs)
	refineDur := time.Since(refineStart)
	d.metrics.RecordRefinement(int(pairs.GetCardinality()), len(records), refineDur, err)
	if err != nil {
		return nil, err
	}
	d.logger.LogRefinement(ctx, int(pairs.GetCardinality()), len(records), refineDur, nil)

	return &Result{
		Records:           records,
		RawCandidateCount: raw,
	}, nil
}

// FindNearDuplicates is a convenience wrapper that builds a Detector and
// runs it once.
func FindNearDuplicates(ctx context.Context, m *sparse.Matrix, optFns ...Option) (*Result, error) {
	d, err := New(optFns...)
	if err != nil {
		return nil, err
	}
	return d.FindNearDuplicates(ctx, m)
}
