// Package signature generates LSH band signatures from random hyperplane
// projections.
//
// A Generator draws b*r Gaussian hyperplanes from a seeded source and maps
// every row of a sparse matrix to b integer band codes. Two vectors agree
// on a single sign bit with probability 1 - theta/pi (theta being the angle
// between them), so near-parallel vectors tend to share whole band codes
// and land in the same bucket downstream.
//
// Bit order convention: within a band, bit k is the sign of the projection
// onto the band's k-th hyperplane (1 when >= 0) and carries weight 2^k.
//
// Each band derives its own sub-seed from the run seed, so a band's
// hyperplane stream does not move when the band count or row count
// changes: raising rows extends every band's planes in place and raising
// bands appends fresh ones. Candidate counts therefore shrink
// monotonically in r and grow monotonically in b for a fixed seed, not
// just in expectation.
package signature

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/neardup/sparse"
)

// MaxRowsPerBand is the widest supported band code (one uint64 word).
const MaxRowsPerBand = 64

// MaxProjections bounds the total number of hyperplanes (bands * rows) to
// keep the basis memory footprint in check.
const MaxProjections = 4096

var (
	// ErrInvalidBands is returned when the band count is not positive.
	ErrInvalidBands = errors.New("signature: bands must be positive")

	// ErrInvalidRows is returned when rows per band is outside [1, MaxRowsPerBand].
	ErrInvalidRows = fmt.Errorf("signature: rows per band must be in [1, %d]", MaxRowsPerBand)

	// ErrTooManyProjections is returned when bands*rows exceeds MaxProjections.
	ErrTooManyProjections = fmt.Errorf("signature: bands*rows exceeds %d", MaxProjections)
)

// ErrDimensionMismatch indicates that a matrix does not match the
// dimensionality the basis was generated for.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("signature: dimension mismatch: basis has %d rows, matrix has %d columns", e.Expected, e.Actual)
}

// Generator holds a fixed random projection basis, grouped into bands.
// It is immutable after New and safe for concurrent use.
type Generator struct {
	dim   int
	bands int
	rows  int
	seed  int64

	// planes[band][row] is one hyperplane of length dim.
	planes [][][]float64
}

// New generates the projection basis for the given dimensionality and
// band layout. The same (dim, bands, rows, seed) always yields the same
// basis.
func New(dim, bands, rows int, seed int64) (*Generator, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("signature: dimension must be positive, got %d", dim)
	}
	if bands <= 0 {
		return nil, ErrInvalidBands
	}
	if rows <= 0 || rows > MaxRowsPerBand {
		return nil, ErrInvalidRows
	}
	if bands*rows > MaxProjections {
		return nil, ErrTooManyProjections
	}

	g := &Generator{
		dim:    dim,
		bands:  bands,
		rows:   rows,
		seed:   seed,
		planes: make([][][]float64, bands),
	}

	for band := range g.planes {
		rng := rand.New(rand.NewSource(bandSeed(seed, band))) //nolint:gosec

		g.planes[band] = make([][]float64, rows)
		for row := range g.planes[band] {
			plane := make([]float64, dim)
			for i := range plane {
				plane[i] = rng.NormFloat64()
			}
			g.planes[band][row] = plane
		}
	}

	return g, nil
}

// Bands returns the number of bands b.
func (g *Generator) Bands() int { return g.bands }

// Rows returns the number of rows (bits) per band r.
func (g *Generator) Rows() int { return g.rows }

// Dim returns the dimensionality the basis was generated for.
func (g *Generator) Dim() int { return g.dim }

// Seed returns the seed the basis was generated from.
func (g *Generator) Seed() int64 { return g.seed }

// Codes projects every row of m onto the basis and packs the sign bits
// into band codes. The result is indexed [item][band]. Bands are computed
// in parallel (bounded by workers); the output is identical regardless of
// worker count.
func (g *Generator) Codes(ctx context.Context, m *sparse.Matrix, workers int) ([][]uint64, error) {
	if m.Dim() != g.dim {
		return nil, &ErrDimensionMismatch{Expected: g.dim, Actual: m.Dim()}
	}
	if workers <= 0 {
		workers = 1
	}

	n := m.Rows()
	codes := make([][]uint64, n)
	for i := range codes {
		codes[i] = make([]uint64, g.bands)
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for band := 0; band < g.bands; band++ {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			planes := g.planes[band]
			for i := 0; i < n; i++ {
				codes[i][band] = bandCode(m.Row(i), planes)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return codes, nil
}

// bandCode packs the projection signs of v onto the band's planes into a
// single integer, bit k weighted 2^k. A zero projection counts as positive.
func bandCode(v sparse.Vector, planes [][]float64) uint64 {
	var code uint64
	for k, plane := range planes {
		var proj float64
		for j, col := range v.Indices {
			proj += v.Values[j] * plane[col]
		}
		if proj >= 0 {
			code |= 1 << uint(k)
		}
	}
	return code
}

// bandSeed derives a per-band sub-seed from the run seed using a
// SplitMix64 step, keeping band streams independent of each other.
func bandSeed(seed int64, band int) int64 {
	z := uint64(seed) + uint64(band+1)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return int64(z ^ (z >> 31))
}
