package offtarget

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by the cache when nothing is stored for an accession.
	// It is a normal outcome: the caller fetches from Entrez instead.
	ErrNotFound = errors.New("no cached annotation")

	// ErrInvalidAccession rejects ids that cannot name a cache directory.
	ErrInvalidAccession = errors.New("invalid accession id")

	// ErrIndexMissing marks a search that failed because the accession has no index.
	ErrIndexMissing = errors.New("alignment index not built")
)

// FetchError is a failed or unusable response from the remote annotation source.
type FetchError struct {
	Accession string
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Accession, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ToolError is an external process that could not start, exited nonzero,
// or was stopped by its context.
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Output   string
	Err      error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s failed (exit %d): %v", e.Tool, e.ExitCode, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + lastLines(out, 5)
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// IndexBuildError is an index build that failed or left no index behind.
type IndexBuildError struct {
	Accession string
	Err       error
}

func (e *IndexBuildError) Error() string {
	return fmt.Sprintf("failed to build alignment index for %s: %v", e.Accession, e.Err)
}

func (e *IndexBuildError) Unwrap() error { return e.Err }

// SearchError is a failed off-target search. errors.Is(err, ErrIndexMissing)
// tells an absent index apart from an aligner crash.
type SearchError struct {
	Accession string
	Err       error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("off-target search against %s failed: %v", e.Accession, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// lastLines keeps tool output readable in an error message
func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
