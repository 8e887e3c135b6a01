// Package sparse provides sparse vectors and a compressed sparse row (CSR)
// matrix for bag-of-words document collections.
//
// Vectors store only their nonzero entries as sorted (index, value) pairs.
// A Matrix is the read-only collection the detection pipeline operates on;
// its rows are views into shared backing arrays, so handing rows around is
// cheap and allocation-free.
package sparse

import (
	"fmt"
	"math"
)

// Vector is a sparse vector: nonzero entries as parallel index/value
// slices with strictly increasing indices.
type Vector struct {
	Indices []int32
	Values  []float64
}

// NNZ returns the number of nonzero entries.
func (v Vector) NNZ() int { return len(v.Indices) }

// Matrix is an immutable N x D collection of sparse row vectors in CSR
// layout. Construct with FromRows; a zero Matrix is empty.
type Matrix struct {
	dim    int
	indptr []int
	cols   []int32
	vals   []float64
}

// FromRows builds a Matrix over dimension dim from the given row vectors.
// Every row must have strictly increasing indices in [0, dim).
func FromRows(dim int, rows []Vector) (*Matrix, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("sparse: dimension must be positive, got %d", dim)
	}

	nnz := 0
	for _, r := range rows {
		nnz += r.NNZ()
	}

	m := &Matrix{
		dim:    dim,
		indptr: make([]int, 1, len(rows)+1),
		cols:   make([]int32, 0, nnz),
		vals:   make([]float64, 0, nnz),
	}

	for i, r := range rows {
		if len(r.Indices) != len(r.Values) {
			return nil, fmt.Errorf("sparse: row %d has %d indices but %d values", i, len(r.Indices), len(r.Values))
		}

		prev := int32(-1)
		for _, c := range r.Indices {
			if c <= prev {
				return nil, fmt.Errorf("sparse: row %d indices not strictly increasing at column %d", i, c)
			}
			if int(c) >= dim {
				return nil, fmt.Errorf("sparse: row %d column %d out of range [0, %d)", i, c, dim)
			}
			prev = c
		}

		m.cols = append(m.cols, r.Indices...)
		m.vals = append(m.vals, r.Values...)
		m.indptr = append(m.indptr, len(m.cols))
	}

	return m, nil
}

// Rows returns the number of row vectors.
func (m *Matrix) Rows() int { return len(m.indptr) - 1 }

// Dim returns the dimensionality D shared by all rows.
func (m *Matrix) Dim() int { return m.dim }

// Row returns row i as a view into the matrix. The caller must not mutate
// the returned slices.
func (m *Matrix) Row(i int) Vector {
	lo, hi := m.indptr[i], m.indptr[i+1]
	return Vector{Indices: m.cols[lo:hi], Values: m.vals[lo:hi]}
}

// Norms computes the Euclidean norm of every row in one pass. The result
// is indexed by row.
func (m *Matrix) Norms() []float64 {
	norms := make([]float64, m.Rows())
	for i := range norms {
		norms[i] = Norm(m.Row(i))
	}
	return norms
}

// Dot returns the dot product of two sparse vectors via a sorted merge
// over their nonzero entries.
func Dot(a, b Vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] < b.Indices[j]:
			i++
		case a.Indices[i] > b.Indices[j]:
			j++
		default:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		}
	}
	return sum
}

// Norm returns the Euclidean norm of v.
func Norm(v Vector) float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// CosineDistance returns 1 - cos(a, b) and true, or 0 and false when
// either vector has zero norm (the distance is undefined there and callers
// treat the pair as a non-match).
func CosineDistance(a, b Vector) (float64, bool) {
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0, false
	}
	return 1 - Dot(a, b)/(na*nb), true
}
