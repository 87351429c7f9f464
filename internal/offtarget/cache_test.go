package offtarget

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, runner Runner) (*AnnotationCache, Layout) {
	t.Helper()
	layout := Layout{Root: t.TempDir()}
	return NewAnnotationCache(layout, NewIndexManager(layout, runner, time.Minute)), layout
}

func TestAnnotationCache_PutGet(t *testing.T) {
	runner := &fakeRunner{}
	cache, layout := newTestCache(t, runner)
	rec := readTestRecord(t)

	_, err := cache.Get("TST000001")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, cache.Put(context.Background(), "TST000001", rec))
	assert.FileExists(t, layout.RecordPath("TST000001"))
	assert.FileExists(t, layout.SequencePath("TST000001"))
	assert.True(t, layout.IndexExists("TST000001"))
	assert.Equal(t, 1, runner.callCount())

	n, err := countFasta(layout.SequencePath("TST000001"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := cache.Get("TST000001")
	require.NoError(t, err)
	assert.Equal(t, rec.Accession, got.Accession)
	assert.Equal(t, rec.Seq, got.Seq)
	assert.Equal(t, rec.Features, got.Features)

	// stored under the requested id, even if it differs from the record's own
	require.NoError(t, cache.Put(context.Background(), "TST000001.1", rec))
	got, err = cache.Get("TST000001.1")
	require.NoError(t, err)
	assert.Equal(t, "TST000001", got.Accession)
}

func TestAnnotationCache_Put_failures(t *testing.T) {
	t.Run("no genbank text", func(t *testing.T) {
		cache, _ := newTestCache(t, &fakeRunner{})
		err := cache.Put(context.Background(), "TST000001", &Record{Accession: "TST000001", Seq: "ACGT"})
		assert.Error(t, err)
	})

	t.Run("index build fails", func(t *testing.T) {
		cache, layout := newTestCache(t, &fakeRunner{err: &ToolError{Tool: bowtieBuildTool, ExitCode: 1}})
		err := cache.Put(context.Background(), "TST000001", readTestRecord(t))

		var buildErr *IndexBuildError
		require.True(t, errors.As(err, &buildErr), err)
		assert.False(t, layout.IndexExists("TST000001"))

		// the record itself is kept
		_, err = cache.Get("TST000001")
		assert.NoError(t, err)
	})

	t.Run("invalid accession", func(t *testing.T) {
		cache, _ := newTestCache(t, &fakeRunner{})
		assert.ErrorIs(t, cache.Put(context.Background(), "a/b", readTestRecord(t)), ErrInvalidAccession)
		_, err := cache.Get("..")
		assert.ErrorIs(t, err, ErrInvalidAccession)
	})
}

func TestAnnotationCache_Get_malformed(t *testing.T) {
	cache, layout := newTestCache(t, &fakeRunner{})
	require.NoError(t, os.MkdirAll(layout.Dir("TST000001"), 0755))
	require.NoError(t, os.WriteFile(layout.RecordPath("TST000001"), []byte("not genbank"), 0644))

	_, err := cache.Get("TST000001")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestAnnotationCache_ListDelete(t *testing.T) {
	cache, layout := newTestCache(t, &fakeRunner{})
	rec := readTestRecord(t)

	entries, err := cache.List()
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, cache.Put(context.Background(), "TST000002", rec))
	require.NoError(t, cache.Put(context.Background(), "TST000001", rec))
	require.NoError(t, os.WriteFile(layout.ReportPath("TST000001", "guides.fa"), nil, 0644))
	// directories without a record are not accessions
	require.NoError(t, os.MkdirAll(filepath.Join(layout.Root, "scratch"), 0755))

	entries, err = cache.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "TST000001", entries[0].Accession)
	assert.Equal(t, "TST000002", entries[1].Accession)
	assert.True(t, entries[0].Indexed)
	assert.Len(t, entries[0].Reports, 1)
	assert.Empty(t, entries[1].Reports)
	assert.Positive(t, entries[0].RecordSize)

	require.NoError(t, cache.Delete("TST000001"))
	assert.NoDirExists(t, layout.Dir("TST000001"))
	_, err = cache.Get("TST000001")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, cache.Delete("TST000001"), ErrNotFound)
}

func TestAnnotationCache_List_noRoot(t *testing.T) {
	cache := NewAnnotationCache(Layout{Root: filepath.Join(t.TempDir(), "missing")}, nil)
	entries, err := cache.List()
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func Test_writeFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	err := writeFileAtomic(path, func(w io.Writer) error {
		w.Write([]byte("partial"))
		return errors.New("disk full")
	})
	require.Error(t, err)

	contents, _ := os.ReadFile(path)
	assert.Equal(t, "old", string(contents))
	files, _ := os.ReadDir(dir)
	assert.Len(t, files, 1)
}
