// Package bucket groups items by band code and turns shared buckets into
// candidate pairs.
//
// Within one band, every set of k >= 2 items with an identical code forms
// a bucket, and all C(k,2) pairs inside it are candidates; any two members
// are equally plausible near-duplicates, so emitting only a representative
// pair would silently cap recall. Pairs discovered in several bands are
// deduplicated for refinement, while the raw generation count (duplicates
// included) is reported as a measure of redundant work.
package bucket

import (
	"context"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"golang.org/x/sync/errgroup"
)

// PackPair encodes an unordered item pair as a single uint64 with the
// smaller id in the high word. Packed pairs sort by (id1, id2), so an
// ascending iteration over a pair set is already in deterministic output
// order.
func PackPair(a, b uint32) uint64 {
	if a > b {
		a, b = b, a
	}
	return uint64(a)<<32 | uint64(b)
}

// UnpackPair is the inverse of PackPair.
func UnpackPair(p uint64) (uint32, uint32) {
	return uint32(p >> 32), uint32(p)
}

// Candidates partitions items by code within each band of codes (indexed
// [item][band]) and emits all within-bucket pairs. It returns the
// deduplicated pair set as a bitmap of packed pairs, plus the raw number
// of (bucket, pair) generation events summed across bands.
//
// Bands are processed in parallel (bounded by workers) with per-band
// partial sets merged at the end; the result is independent of worker
// count. Self-pairs are never generated.
func Candidates(ctx context.Context, codes [][]uint64, bands, workers int) (*roaring64.Bitmap, int64, error) {
	if workers <= 0 {
		workers = 1
	}

	partials := make([]*roaring64.Bitmap, bands)
	var raw atomic.Int64

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for band := 0; band < bands; band++ {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			buckets := make(map[uint64][]uint32)
			for i := range codes {
				code := codes[i][band]
				buckets[code] = append(buckets[code], uint32(i))
			}

			pairs := roaring64.New()
			var events int64
			for _, members := range buckets {
				k := int64(len(members))
				if k < 2 {
					continue
				}
				events += k * (k - 1) / 2
				for i := 0; i < len(members); i++ {
					for j := i + 1; j < len(members); j++ {
						pairs.Add(PackPair(members[i], members[j]))
					}
				}
			}

			partials[band] = pairs
			raw.Add(events)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, 0, err
	}

	merged := roaring64.New()
	for _, p := range partials {
		merged.Or(p)
	}

	return merged, raw.Load(), nil
}
