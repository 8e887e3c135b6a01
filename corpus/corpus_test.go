package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("Hello, World! hello-again 42")
	require.Equal(t, []string{"hello", "world", "hello", "again", "42"}, got)

	require.Empty(t, Tokenize("!!! ..."))
}

func TestBuild(t *testing.T) {
	records := []Record{
		{ID: "a", Text: "the cat sat"},
		{ID: "b", Text: "the cat sat the"},
		{ID: "c", Text: "dog"},
	}

	m, vocab, err := Build(records)
	require.NoError(t, err)

	// Vocabulary is sorted: cat dog sat the.
	require.Equal(t, 4, vocab.Size())
	require.Equal(t, "cat", vocab.Term(0))
	require.Equal(t, int32(3), vocab.Index("the"))
	require.Equal(t, int32(-1), vocab.Index("unknown"))

	require.Equal(t, 3, m.Rows())
	require.Equal(t, 4, m.Dim())

	// Row 1 counts "the" twice.
	r1 := m.Row(1)
	require.Equal(t, []int32{0, 2, 3}, r1.Indices)
	require.Equal(t, []float64{1, 1, 2}, r1.Values)

	_, _, err = Build(nil)
	require.Error(t, err)

	_, _, err = Build([]Record{{Text: "..."}})
	require.Error(t, err)
}

func TestBuild_Deterministic(t *testing.T) {
	records := []Record{
		{Text: "alpha beta gamma"},
		{Text: "gamma delta"},
	}

	m1, v1, err := Build(records)
	require.NoError(t, err)
	m2, v2, err := Build(records)
	require.NoError(t, err)

	require.Equal(t, v1.Size(), v2.Size())
	for i := 0; i < m1.Rows(); i++ {
		require.Equal(t, m1.Row(i), m2.Row(i))
	}
}

func TestSharedTerms(t *testing.T) {
	records := []Record{
		{Text: "the cat sat on the mat"},
		{Text: "the dog sat"},
	}

	m, vocab, err := Build(records)
	require.NoError(t, err)

	require.Equal(t, []string{"sat", "the"}, SharedTerms(m, 0, 1, vocab))
}

func TestReadRecords(t *testing.T) {
	const body = `{"id":"a","text":"hello world"}
{"id":"b","text":"goodbye world"}
`

	writePlain := func(path string) {
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	}
	writeGzip := func(path string) {
		f, err := os.Create(path)
		require.NoError(t, err)
		zw := gzip.NewWriter(f)
		_, err = zw.Write([]byte(body))
		require.NoError(t, err)
		require.NoError(t, zw.Close())
		require.NoError(t, f.Close())
	}
	writeZstd := func(path string) {
		f, err := os.Create(path)
		require.NoError(t, err)
		zw, err := zstd.NewWriter(f)
		require.NoError(t, err)
		_, err = zw.Write([]byte(body))
		require.NoError(t, err)
		require.NoError(t, zw.Close())
		require.NoError(t, f.Close())
	}
	writeLZ4 := func(path string) {
		f, err := os.Create(path)
		require.NoError(t, err)
		zw := lz4.NewWriter(f)
		_, err = zw.Write([]byte(body))
		require.NoError(t, err)
		require.NoError(t, zw.Close())
		require.NoError(t, f.Close())
	}

	dir := t.TempDir()
	files := map[string]func(string){
		"corpus.jsonl":     writePlain,
		"corpus.jsonl.gz":  writeGzip,
		"corpus.jsonl.zst": writeZstd,
		"corpus.jsonl.lz4": writeLZ4,
	}

	for name, write := range files {
		path := filepath.Join(dir, name)
		write(path)

		records, err := ReadRecords(path)
		require.NoError(t, err, name)
		require.Len(t, records, 2, name)
		require.Equal(t, "a", records[0].ID, name)
		require.Equal(t, "goodbye world", records[1].Text, name)
	}
}

func TestReadRecords_Missing(t *testing.T) {
	_, err := ReadRecords(filepath.Join(t.TempDir(), "nope.jsonl"))
	require.Error(t, err)
}
