package offtarget

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type runnerCall struct {
	name string
	args []string
}

// fakeRunner stands in for bowtie2. Builds write empty index files at the
// prefix given as the last argument; searches write an empty report after -S.
type fakeRunner struct {
	mu    sync.Mutex
	calls []runnerCall

	err        error
	delay      time.Duration
	noArtifact bool
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	r.mu.Lock()
	r.calls = append(r.calls, runnerCall{name: name, args: args})
	r.mu.Unlock()

	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if r.err != nil {
		return r.err
	}

	switch {
	case strings.HasSuffix(name, bowtieBuildTool):
		if r.noArtifact {
			return nil
		}
		prefix := args[len(args)-1]
		for _, ext := range []string{".1.bt2", ".2.bt2", ".3.bt2", ".4.bt2", ".rev.1.bt2", ".rev.2.bt2"} {
			if err := os.WriteFile(prefix+ext, nil, 0644); err != nil {
				return err
			}
		}
	case strings.HasSuffix(name, bowtieAlignTool):
		for i, a := range args {
			if a == "-S" && i+1 < len(args) {
				return os.WriteFile(args[i+1], []byte("@HD\tVN:1.0\n"), 0644)
			}
		}
	}
	return nil
}

func (r *fakeRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *fakeRunner) lastCall() runnerCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}

// seedSequence stores a FASTA sequence for accession, as the cache would.
func seedSequence(t *testing.T, layout Layout, accession string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(layout.Dir(accession), 0755))
	f, err := os.Create(layout.SequencePath(accession))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, writeFasta(f, accession, "test sequence", "ACGTACGTTTGACCA"))
}

// writeCandidates writes a FASTA file of n short candidates and returns its path.
func writeCandidates(t *testing.T, dir, name string, n int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	for i := 0; i < n; i++ {
		require.NoError(t, writeFasta(f, "candidate_"+string(rune('a'+i)), "", "TTGACCAGTACGATCGATCG"))
	}
	return path
}
