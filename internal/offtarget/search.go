package offtarget

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

const (
	// bowtie2's end-to-end mode costs at most 6 per mismatch
	mismatchPenalty = 6

	// seeds must match exactly over 5bp, one seed every 6bp, at most 6 failed extensions
	seedLength         = 5
	seedMismatches     = 0
	seedInterval       = "S,6,0"
	seedExtendAttempts = 6

	// ambiguous bases (N) cost nothing, but no more than 5 are allowed per alignment
	ambiguousPenalty = 0
	maxAmbiguous     = 5
)

// ScoringParams are the bowtie2 settings of an off-target search.
type ScoringParams struct {
	// MinScore is the constant alignment score floor (--score-min L,MinScore,0)
	MinScore int

	SeedLength         int
	SeedMismatches     int
	SeedInterval       string
	SeedExtendAttempts int
	AmbiguousPenalty   int
	MaxAmbiguous       int

	// ReportAll asks for every alignment instead of the best one
	ReportAll bool
}

// ScoringFor derives search settings from a mismatch threshold: the score floor
// sits one point below mismatchThreshold maximum-penalty mismatches, so alignments
// with up to mismatchThreshold mismatches are reported and no more.
// Everything else is fixed.
func ScoringFor(mismatchThreshold int) ScoringParams {
	return ScoringParams{
		MinScore:           -(mismatchPenalty*mismatchThreshold + 1),
		SeedLength:         seedLength,
		SeedMismatches:     seedMismatches,
		SeedInterval:       seedInterval,
		SeedExtendAttempts: seedExtendAttempts,
		AmbiguousPenalty:   ambiguousPenalty,
		MaxAmbiguous:       maxAmbiguous,
		ReportAll:          true,
	}
}

// args renders the parameters as bowtie2 flags.
func (p ScoringParams) args() []string {
	args := []string{
		"--no-1mm-upfront",
		"--np", strconv.Itoa(p.AmbiguousPenalty),
		"--n-ceil", strconv.Itoa(p.MaxAmbiguous),
		"--score-min", fmt.Sprintf("L,%d,0", p.MinScore),
		"-N", strconv.Itoa(p.SeedMismatches),
		"-L", strconv.Itoa(p.SeedLength),
		"-i", p.SeedInterval,
		"-D", strconv.Itoa(p.SeedExtendAttempts),
	}
	if p.ReportAll {
		args = append([]string{"-a"}, args...)
	}
	return args
}

// OffTargetJob is one search of a candidate FASTA file against an accession's index.
type OffTargetJob struct {
	ID                string
	Accession         string
	Candidates        string
	MismatchThreshold int
}

// NewOffTargetJob returns a job with a fresh id.
func NewOffTargetJob(accession, candidates string, mismatchThreshold int) OffTargetJob {
	return OffTargetJob{
		ID:                uuid.NewString()[:8],
		Accession:         accession,
		Candidates:        candidates,
		MismatchThreshold: mismatchThreshold,
	}
}

// Searcher runs bowtie2 against prebuilt indexes. It never builds an index itself.
type Searcher struct {
	layout  Layout
	runner  Runner
	timeout time.Duration

	// cpus reports available processing units, one of which is left to this process
	cpus func() int
}

// NewSearcher returns a Searcher whose runs are bounded by timeout (0 means none).
func NewSearcher(layout Layout, runner Runner, timeout time.Duration) *Searcher {
	return &Searcher{
		layout:  layout,
		runner:  runner,
		timeout: timeout,
		cpus:    runtime.NumCPU,
	}
}

func (s *Searcher) threads() int {
	threads := s.cpus() - 1
	if threads < 1 {
		threads = 1
	}
	return threads
}

// Search aligns every candidate in the job's FASTA file against the accession's
// index and returns the path of the SAM match report. The report is not inspected.
//
// Failures are *SearchError. When bowtie2 fails and the accession has no index,
// the error also matches ErrIndexMissing.
func (s *Searcher) Search(ctx context.Context, job OffTargetJob) (string, error) {
	if err := checkAccession(job.Accession); err != nil {
		return "", err
	}
	log := rlog.With("job", job.ID, "accession", job.Accession)

	count, err := countFasta(job.Candidates)
	if err != nil {
		return "", &SearchError{Accession: job.Accession, Err: err}
	}

	dir := s.layout.Dir(job.Accession)
	_, statErr := os.Stat(dir)
	created := os.IsNotExist(statErr)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &SearchError{Accession: job.Accession, Err: err}
	}
	report := s.layout.ReportPath(job.Accession, job.Candidates)

	args := []string{
		"-x", s.layout.IndexPrefix(job.Accession),
		"-f",
		"-t",
		"-U", job.Candidates,
		"-p", strconv.Itoa(s.threads()),
		"-S", report,
	}
	args = append(args, ScoringFor(job.MismatchThreshold).args()...)

	log.Infow("searching off-targets", "candidates", job.Candidates, "sequences", count,
		"mismatches", job.MismatchThreshold)
	runCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.runner.Run(runCtx, BowtieExecutable(), args...); err != nil {
		if !s.layout.IndexExists(job.Accession) {
			err = fmt.Errorf("%w: %w", ErrIndexMissing, err)
			// leave nothing behind for an accession that was never cached
			if created {
				err = multierr.Append(err, os.RemoveAll(dir))
			}
		}
		return "", &SearchError{Accession: job.Accession, Err: err}
	}

	log.Infow("wrote off-target matches", "report", report)
	return report, nil
}
