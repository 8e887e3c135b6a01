package signature

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/neardup/sparse"
	"github.com/hupe1980/neardup/testutil"
)

func testMatrix(t *testing.T, num, dim, nnz int, seed int64) *sparse.Matrix {
	t.Helper()

	rng := testutil.NewRNG(seed)
	m, err := sparse.FromRows(dim, rng.SparseVectors(num, dim, nnz))
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}
	return m
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(0, 4, 8, 1); err == nil {
		t.Error("expected error for non-positive dimension")
	}
	if _, err := New(10, 0, 8, 1); !errors.Is(err, ErrInvalidBands) {
		t.Errorf("got %v, want ErrInvalidBands", err)
	}
	if _, err := New(10, 4, 0, 1); !errors.Is(err, ErrInvalidRows) {
		t.Errorf("got %v, want ErrInvalidRows", err)
	}
	if _, err := New(10, 4, MaxRowsPerBand+1, 1); !errors.Is(err, ErrInvalidRows) {
		t.Errorf("got %v, want ErrInvalidRows", err)
	}
	if _, err := New(10, 256, 32, 1); !errors.Is(err, ErrTooManyProjections) {
		t.Errorf("got %v, want ErrTooManyProjections", err)
	}
}

func TestCodes_Deterministic(t *testing.T) {
	ctx := context.Background()
	m := testMatrix(t, 30, 50, 6, 7)

	for _, workers := range []int{1, 4} {
		g1, err := New(50, 4, 16, 42)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		c1, err := g1.Codes(ctx, m, workers)
		if err != nil {
			t.Fatalf("Codes failed: %v", err)
		}

		g2, err := New(50, 4, 16, 42)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		c2, err := g2.Codes(ctx, m, 1)
		if err != nil {
			t.Fatalf("Codes failed: %v", err)
		}

		for i := range c1 {
			for band := range c1[i] {
				if c1[i][band] != c2[i][band] {
					t.Fatalf("workers=%d: codes differ at item %d band %d", workers, i, band)
				}
			}
		}
	}
}

func TestCodes_SeedChangesCodes(t *testing.T) {
	ctx := context.Background()
	m := testMatrix(t, 10, 50, 6, 7)

	g1, _ := New(50, 4, 16, 1)
	g2, _ := New(50, 4, 16, 2)

	c1, err := g1.Codes(ctx, m, 1)
	if err != nil {
		t.Fatalf("Codes failed: %v", err)
	}
	c2, err := g2.Codes(ctx, m, 1)
	if err != nil {
		t.Fatalf("Codes failed: %v", err)
	}

	same := true
	for i := range c1 {
		for band := range c1[i] {
			if c1[i][band] != c2[i][band] {
				same = false
			}
		}
	}
	if same {
		t.Error("different seeds produced identical codes for all items")
	}
}

func TestCodes_IdenticalRowsShareCodes(t *testing.T) {
	ctx := context.Background()

	rng := testutil.NewRNG(3)
	base := rng.SparseVector(40, 8)
	rows := []sparse.Vector{base, rng.SparseVector(40, 8), testutil.Scale(base, 2.5)}

	m, err := sparse.FromRows(40, rows)
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}

	g, err := New(40, 6, 12, 99)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	codes, err := g.Codes(ctx, m, 2)
	if err != nil {
		t.Fatalf("Codes failed: %v", err)
	}

	// Positive scaling preserves projection signs, so row 2 must share
	// every band code with row 0.
	for band := 0; band < g.Bands(); band++ {
		if codes[0][band] != codes[2][band] {
			t.Errorf("band %d: identical-direction rows differ: %x vs %x", band, codes[0][band], codes[2][band])
		}
	}
}

func TestCodes_ZeroVectorAllBitsSet(t *testing.T) {
	ctx := context.Background()

	m, err := sparse.FromRows(10, []sparse.Vector{{}})
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}

	g, err := New(10, 3, 5, 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	codes, err := g.Codes(ctx, m, 1)
	if err != nil {
		t.Fatalf("Codes failed: %v", err)
	}

	// All projections of the zero vector are 0 and the sign convention
	// counts 0 as positive.
	want := uint64(1<<5) - 1
	for band, code := range codes[0] {
		if code != want {
			t.Errorf("band %d: zero vector code = %x, want %x", band, code, want)
		}
	}
}

func TestCodes_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	m := testMatrix(t, 5, 30, 4, 1)

	g, err := New(31, 2, 8, 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = g.Codes(ctx, m, 1)
	var dimErr *ErrDimensionMismatch
	if !errors.As(err, &dimErr) {
		t.Fatalf("got %v, want ErrDimensionMismatch", err)
	}
	if dimErr.Expected != 31 || dimErr.Actual != 30 {
		t.Errorf("unexpected mismatch detail: %+v", dimErr)
	}
}

// Growing r must extend each band's planes in place: the r-bit code is
// the low bits of the (r+k)-bit code. Candidate monotonicity in r rests
// on this.
func TestCodes_RowPrefixProperty(t *testing.T) {
	ctx := context.Background()
	m := testMatrix(t, 25, 60, 7, 11)

	gSmall, _ := New(60, 5, 8, 21)
	gLarge, _ := New(60, 5, 12, 21)

	small, err := gSmall.Codes(ctx, m, 2)
	if err != nil {
		t.Fatalf("Codes failed: %v", err)
	}
	large, err := gLarge.Codes(ctx, m, 2)
	if err != nil {
		t.Fatalf("Codes failed: %v", err)
	}

	mask := uint64(1<<8) - 1
	for i := range small {
		for band := range small[i] {
			if small[i][band] != large[i][band]&mask {
				t.Fatalf("item %d band %d: %x is not the low bits of %x", i, band, small[i][band], large[i][band])
			}
		}
	}
}

// Growing b must append bands without disturbing existing ones.
// Candidate monotonicity in b rests on this.
func TestCodes_BandExtensionProperty(t *testing.T) {
	ctx := context.Background()
	m := testMatrix(t, 25, 60, 7, 13)

	gSmall, _ := New(60, 3, 10, 5)
	gLarge, _ := New(60, 6, 10, 5)

	small, err := gSmall.Codes(ctx, m, 2)
	if err != nil {
		t.Fatalf("Codes failed: %v", err)
	}
	large, err := gLarge.Codes(ctx, m, 2)
	if err != nil {
		t.Fatalf("Codes failed: %v", err)
	}

	for i := range small {
		for band := 0; band < 3; band++ {
			if small[i][band] != large[i][band] {
				t.Fatalf("item %d band %d moved when bands grew: %x vs %x", i, band, small[i][band], large[i][band])
			}
		}
	}
}
