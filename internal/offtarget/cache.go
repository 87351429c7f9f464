package offtarget

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/multierr"
)

// IndexBuilder makes sure an accession's alignment index exists.
type IndexBuilder interface {
	EnsureBuilt(ctx context.Context, accession string) error
}

// AnnotationCache stores fetched GenBank records on disk, one directory per accession.
//
// Storing a record also stores its plain sequence and builds its alignment index,
// so any accession that is cached can be searched.
type AnnotationCache struct {
	layout  Layout
	indexer IndexBuilder
}

// NewAnnotationCache returns a cache rooted at layout that builds indexes with indexer.
func NewAnnotationCache(layout Layout, indexer IndexBuilder) *AnnotationCache {
	return &AnnotationCache{
		layout:  layout,
		indexer: indexer,
	}
}

// Get returns the cached record of an accession, or ErrNotFound.
// A cached file that cannot be read or parsed is an error, not a miss.
func (c *AnnotationCache) Get(accession string) (*Record, error) {
	if err := checkAccession(accession); err != nil {
		return nil, err
	}

	path := c.layout.RecordPath(accession)
	contents, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cacheLookups.WithLabelValues("miss").Inc()
		return nil, ErrNotFound
	} else if err != nil {
		cacheLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to read cached record %s: %w", path, err)
	}

	rec, err := ParseGenbank(contents)
	if err != nil {
		cacheLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("cached record %s is malformed: %w", path, err)
	}
	cacheLookups.WithLabelValues("hit").Inc()
	rlog.Debugw("cache hit", "accession", accession, "path", path)
	return rec, nil
}

// Put stores a record and its plain sequence under accession, then builds the
// accession's alignment index. Index failures are returned as *IndexBuildError;
// the record stays cached and the index can be rebuilt later.
func (c *AnnotationCache) Put(ctx context.Context, accession string, rec *Record) error {
	if err := checkAccession(accession); err != nil {
		return err
	}
	if len(rec.raw) == 0 {
		return fmt.Errorf("record %s has no GenBank text to store", accession)
	}
	if err := os.MkdirAll(c.layout.Dir(accession), 0755); err != nil {
		return err
	}

	err := writeFileAtomic(c.layout.RecordPath(accession), func(w io.Writer) error {
		_, err := w.Write(rec.raw)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to cache record %s: %w", accession, err)
	}

	err = writeFileAtomic(c.layout.SequencePath(accession), func(w io.Writer) error {
		return writeFasta(w, accession, rec.Definition, rec.Seq)
	})
	if err != nil {
		return fmt.Errorf("failed to cache sequence %s: %w", accession, err)
	}
	rlog.Infow("cached genbank record", "accession", accession, "dir", c.layout.Dir(accession))

	return c.indexer.EnsureBuilt(ctx, accession)
}

// CacheEntry describes one cached accession.
type CacheEntry struct {
	Accession  string
	RecordSize int64
	CachedAt   time.Time
	Indexed    bool
	Reports    []string
}

// List returns the cached accessions sorted by name.
func (c *AnnotationCache) List() ([]CacheEntry, error) {
	dirs, err := os.ReadDir(c.layout.Root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var entries []CacheEntry
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		info, err := os.Stat(c.layout.RecordPath(d.Name()))
		if err != nil {
			continue // not a cached accession
		}
		reports, _ := filepath.Glob(filepath.Join(c.layout.Dir(d.Name()), "*"+reportSuffix))
		entries = append(entries, CacheEntry{
			Accession:  d.Name(),
			RecordSize: info.Size(),
			CachedAt:   info.ModTime(),
			Indexed:    c.layout.IndexExists(d.Name()),
			Reports:    reports,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Accession < entries[j].Accession
	})
	return entries, nil
}

// Delete removes everything cached for an accession: record, sequence, index and reports.
func (c *AnnotationCache) Delete(accession string) error {
	if err := checkAccession(accession); err != nil {
		return err
	}
	dir := c.layout.Dir(accession)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w for %s", ErrNotFound, accession)
	}
	rlog.Debugf("Delete %s", dir)
	return os.RemoveAll(dir)
}

// writeFileAtomic writes path through a temporary file in the same directory
// so readers never see a partial file.
func writeFileAtomic(path string, write func(w io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, os.Remove(tmp.Name()))
		}
	}()

	if err = write(tmp); err != nil {
		return multierr.Append(err, tmp.Close())
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
