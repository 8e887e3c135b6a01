// Package testutil provides seeded generators for sparse test data.
package testutil

import (
	"math/rand"
	"slices"
	"sync"

	"github.com/hupe1980/neardup/sparse"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// SparseVector generates one sparse vector over dimension dim with nnz
// nonzero entries at distinct sorted positions. Values are small positive
// integer counts, like a bag-of-words row.
func (r *RNG) SparseVector(dim, nnz int) sparse.Vector {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sparseVectorLocked(dim, nnz)
}

// SparseVectors generates num sparse vectors over dimension dim, each
// with nnz nonzero entries.
func (r *RNG) SparseVectors(num, dim, nnz int) []sparse.Vector {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([]sparse.Vector, num)
	for i := range rows {
		rows[i] = r.sparseVectorLocked(dim, nnz)
	}
	return rows
}

func (r *RNG) sparseVectorLocked(dim, nnz int) sparse.Vector {
	if nnz > dim {
		nnz = dim
	}

	support := make(map[int32]struct{}, nnz)
	for len(support) < nnz {
		support[int32(r.rand.Intn(dim))] = struct{}{}
	}

	cols := make([]int32, 0, nnz)
	for c := range support {
		cols = append(cols, c)
	}
	slices.Sort(cols)

	vals := make([]float64, nnz)
	for i := range vals {
		vals[i] = float64(1 + r.rand.Intn(9))
	}

	return sparse.Vector{Indices: cols, Values: vals}
}

// Scale returns a copy of v with all values multiplied by factor. The
// copy points in the same direction, so its cosine distance to v is ~0.
func Scale(v sparse.Vector, factor float64) sparse.Vector {
	vals := make([]float64, len(v.Values))
	for i, x := range v.Values {
		vals[i] = x * factor
	}
	cols := make([]int32, len(v.Indices))
	copy(cols, v.Indices)
	return sparse.Vector{Indices: cols, Values: vals}
}

// DisjointVectors generates num vectors with pairwise disjoint supports,
// so every pair is exactly orthogonal. Requires num*nnz <= dim.
func DisjointVectors(num, dim, nnz int) []sparse.Vector {
	rows := make([]sparse.Vector, num)
	for i := range rows {
		cols := make([]int32, nnz)
		vals := make([]float64, nnz)
		for k := range cols {
			cols[k] = int32(i*nnz + k)
			vals[k] = 1
		}
		rows[i] = sparse.Vector{Indices: cols, Values: vals}
	}
	return rows
}
