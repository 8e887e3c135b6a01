// Package corpus loads raw document records and turns them into the
// sparse bag-of-words matrix the detection pipeline consumes.
//
// The on-disk format is JSON Lines, one record per line, optionally
// compressed (.gz, .zst or .lz4, chosen by file extension). The core
// pipeline never touches this package; it exists for callers that start
// from raw text.
package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/neardup/sparse"
)

// Record is one raw document.
type Record struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ReadRecords reads JSONL records from path, transparently decompressing
// .gz, .zst and .lz4 files.
func ReadRecords(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, closeFn, err := wrapReader(f, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	defer closeFn()

	return DecodeRecords(r)
}

// DecodeRecords decodes a stream of JSONL records.
func DecodeRecords(r io.Reader) ([]Record, error) {
	var records []Record

	dec := json.NewDecoder(r)
	for {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("corpus: decode record %d: %w", len(records), err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func wrapReader(f *os.File, ext string) (io.Reader, func(), error) {
	switch ext {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, nil, err
		}
		return zr, func() { zr.Close() }, nil
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	case ".lz4":
		return lz4.NewReader(f), func() {}, nil
	default:
		return f, func() {}, nil
	}
}

// Vocabulary maps terms to matrix columns and back. Terms are assigned
// columns in sorted order, so the same corpus always produces the same
// matrix.
type Vocabulary struct {
	terms []string
	index map[string]int32
}

// Size returns the number of distinct terms D.
func (v *Vocabulary) Size() int { return len(v.terms) }

// Term returns the term at column i.
func (v *Vocabulary) Term(i int32) string { return v.terms[i] }

// Index returns the column of term, or -1 if unknown.
func (v *Vocabulary) Index(term string) int32 {
	if i, ok := v.index[term]; ok {
		return i
	}
	return -1
}

// Tokenize lowercases text and splits it on anything that is not a letter
// or digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Build tokenizes the records and assembles the bag-of-words matrix
// (term counts as weights) together with its vocabulary. Row i of the
// matrix corresponds to records[i].
func Build(records []Record) (*sparse.Matrix, *Vocabulary, error) {
	if len(records) == 0 {
		return nil, nil, errors.New("corpus: no records")
	}

	counts := make([]map[string]int, len(records))
	seen := make(map[string]struct{})
	for i, rec := range records {
		tf := make(map[string]int)
		for _, tok := range Tokenize(rec.Text) {
			tf[tok]++
			seen[tok] = struct{}{}
		}
		counts[i] = tf
	}

	if len(seen) == 0 {
		return nil, nil, errors.New("corpus: no terms in any record")
	}

	vocab := &Vocabulary{
		terms: make([]string, 0, len(seen)),
		index: make(map[string]int32, len(seen)),
	}
	for term := range seen {
		vocab.terms = append(vocab.terms, term)
	}
	slices.Sort(vocab.terms)
	for i, term := range vocab.terms {
		vocab.index[term] = int32(i)
	}

	rows := make([]sparse.Vector, len(records))
	for i, tf := range counts {
		cols := make([]int32, 0, len(tf))
		for term := range tf {
			cols = append(cols, vocab.index[term])
		}
		slices.Sort(cols)

		vals := make([]float64, len(cols))
		for j, c := range cols {
			vals[j] = float64(tf[vocab.terms[c]])
		}
		rows[i] = sparse.Vector{Indices: cols, Values: vals}
	}

	m, err := sparse.FromRows(vocab.Size(), rows)
	if err != nil {
		return nil, nil, err
	}

	return m, vocab, nil
}

// SharedTerms returns the terms that rows i and j of m both contain, in
// vocabulary order. Used to highlight why a pair was reported.
func SharedTerms(m *sparse.Matrix, i, j int, vocab *Vocabulary) []string {
	a, b := m.Row(i), m.Row(j)

	var shared []string
	x, y := 0, 0
	for x < len(a.Indices) && y < len(b.Indices) {
		switch {
		case a.Indices[x] < b.Indices[y]:
			x++
		case a.Indices[x] > b.Indices[y]:
			y++
		default:
			shared = append(shared, vocab.Term(a.Indices[x]))
			x++
			y++
		}
	}
	return shared
}
