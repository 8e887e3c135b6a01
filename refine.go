package neardup

import (
	"context"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/neardup/bucket"
	"github.com/hupe1980/neardup/sparse"
)

// refine computes the exact cosine distance for every candidate pair and
// keeps those at or under the threshold. Pairs touching a zero-norm
// vector are skipped; their distance is undefined and they can never be
// duplicates.
//
// The packed pair array is already sorted by (ID1, ID2), and contiguous
// shards are merged back in shard order, so the output stays sorted
// without a final sort and is independent of the worker count.
func (d *Detector) refine(ctx context.Context, m *sparse.Matrix, pairs *roaring64.Bitmap) ([]DuplicateRecord, error) {
	packed := pairs.ToArray()
	if len(packed) == 0 {
		return nil, nil
	}

	norms := m.Norms()

	workers := d.opts.Workers
	if workers > len(packed) {
		workers = len(packed)
	}

	shardSize := (len(packed) + workers - 1) / workers
	partials := make([][]DuplicateRecord, workers)

	eg, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * shardSize
		hi := min(lo+shardSize, len(packed))
		if lo >= hi {
			continue
		}

		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			var records []DuplicateRecord
			for _, p := range packed[lo:hi] {
				id1, id2 := bucket.UnpackPair(p)

				n1, n2 := norms[id1], norms[id2]
				if n1 == 0 || n2 == 0 {
					continue
				}

				dist := 1 - sparse.Dot(m.Row(int(id1)), m.Row(int(id2)))/(n1*n2)
				if dist <= d.opts.Threshold {
					records = append(records, DuplicateRecord{ID1: id1, ID2: id2, Distance: dist})
				}
			}
			partials[w] = records
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var records []DuplicateRecord
	for _, part := range partials {
		records = append(records, part...)
	}

	return records, nil
}
