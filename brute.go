package neardup

import (
	"context"

	"github.com/hupe1980/neardup/sparse"
)

// BruteForce computes exact cosine distances for all O(N^2) pairs and
// returns those at or under threshold, in the same record shape and
// (ID1, ID2) order as the LSH pipeline. It exists to validate recall and
// timing of FindNearDuplicates on small collections; every LSH duplicate
// set is a subset of the BruteForce set for the same threshold.
//
// Pairs with a zero-norm vector are skipped, matching the pipeline.
func BruteForce(ctx context.Context, m *sparse.Matrix, threshold float64) ([]DuplicateRecord, error) {
	if threshold < 0 || threshold > 2 {
		return nil, &ErrInvalidThreshold{Threshold: threshold}
	}

	norms := m.Norms()
	n := m.Rows()

	var records []DuplicateRecord
	for i := 0; i < n; i++ {
		if norms[i] == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := i + 1; j < n; j++ {
			if norms[j] == 0 {
				continue
			}
			dist := 1 - sparse.Dot(m.Row(i), m.Row(j))/(norms[i]*norms[j])
			if dist <= threshold {
				records = append(records, DuplicateRecord{ID1: uint32(i), ID2: uint32(j), Distance: dist})
			}
		}
	}

	return records, nil
}
