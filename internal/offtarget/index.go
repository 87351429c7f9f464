package offtarget

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"
)

// IndexManager builds and locates the bowtie2 index of each accession.
//
// At most one index is built per accession. Concurrent callers in one process share
// a build, and separate processes serialize on a lock file in the accession directory.
type IndexManager struct {
	layout  Layout
	runner  Runner
	timeout time.Duration
	flight  singleflight.Group
}

// NewIndexManager returns an IndexManager whose builds are bounded by timeout (0 means none).
func NewIndexManager(layout Layout, runner Runner, timeout time.Duration) *IndexManager {
	return &IndexManager{
		layout:  layout,
		runner:  runner,
		timeout: timeout,
	}
}

// Exists reports whether an index artifact is present for the accession.
func (m *IndexManager) Exists(accession string) bool {
	return m.layout.IndexExists(accession)
}

// EnsureBuilt builds the accession's index from its stored sequence unless one exists.
// It blocks until bowtie2-build exits and returns an *IndexBuildError on failure.
func (m *IndexManager) EnsureBuilt(ctx context.Context, accession string) error {
	if err := checkAccession(accession); err != nil {
		return err
	}
	if m.Exists(accession) {
		rlog.Debugw("alignment index exists", "accession", accession)
		return nil
	}

	// the shared build outlives any one caller; each caller only stops waiting
	// when its own ctx ends
	buildCtx := context.WithoutCancel(ctx)
	ch := m.flight.DoChan(accession, func() (interface{}, error) {
		return nil, m.build(buildCtx, accession)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *IndexManager) build(ctx context.Context, accession string) (err error) {
	dir := m.layout.Dir(accession)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &IndexBuildError{Accession: accession, Err: err}
	}

	lock, err := lockFile(filepath.Join(dir, indexLockFile))
	if err != nil {
		return &IndexBuildError{Accession: accession, Err: fmt.Errorf("failed to lock %s: %v", dir, err)}
	}
	defer func() {
		err = multierr.Append(err, lock.unlock())
	}()

	// another process may have finished the build while we waited on the lock
	if m.Exists(accession) {
		return nil
	}

	seqPath := m.layout.SequencePath(accession)
	if _, err := os.Stat(seqPath); err != nil {
		return &IndexBuildError{Accession: accession, Err: fmt.Errorf("no sequence to index: %v", err)}
	}

	// build beside the final location and move the marker in last, so Exists
	// never sees a partial index
	tmpDir, err := os.MkdirTemp(dir, "index-build-*")
	if err != nil {
		return &IndexBuildError{Accession: accession, Err: err}
	}
	defer func() {
		err = multierr.Append(err, os.RemoveAll(tmpDir))
	}()
	tmpPrefix := filepath.Join(tmpDir, indexName)

	rlog.Infow("building alignment index", "accession", accession, "sequence", seqPath)
	runCtx, cancel := withTimeout(ctx, m.timeout)
	defer cancel()
	if err := m.runner.Run(runCtx, BowtieBuildExecutable(), "-q", seqPath, tmpPrefix); err != nil {
		return &IndexBuildError{Accession: accession, Err: err}
	}

	if err := m.install(tmpPrefix, m.layout.IndexPrefix(accession)); err != nil {
		return &IndexBuildError{Accession: accession, Err: err}
	}
	rlog.Infow("built alignment index", "accession", accession, "prefix", m.layout.IndexPrefix(accession))
	return nil
}

// install moves the artifacts at tmpPrefix to prefix with the marker file last.
// On failure the artifacts already moved are removed again.
func (m *IndexManager) install(tmpPrefix, prefix string) (err error) {
	artifacts, err := filepath.Glob(tmpPrefix + ".*")
	if err != nil {
		return err
	}

	var marker string
	var rest []string
	for _, a := range artifacts {
		if marker == "" && isIndexMarker(tmpPrefix, a) {
			marker = a
		} else {
			rest = append(rest, a)
		}
	}
	if marker == "" {
		return fmt.Errorf("%s produced no index artifacts at %s", bowtieBuildTool, tmpPrefix)
	}

	var installed []string
	defer func() {
		if err == nil {
			return
		}
		for _, dst := range installed {
			err = multierr.Append(err, os.Remove(dst))
		}
	}()
	for _, a := range append(rest, marker) {
		dst := prefix + strings.TrimPrefix(a, tmpPrefix)
		if err := os.Rename(a, dst); err != nil {
			return err
		}
		installed = append(installed, dst)
	}
	return nil
}

// isIndexMarker reports whether path is the forward index file at tmpPrefix.
// The reverse index (.rev.1.bt2) is not a marker.
func isIndexMarker(tmpPrefix, path string) bool {
	for _, ext := range indexMarkers {
		if path == tmpPrefix+ext {
			return true
		}
	}
	return false
}
