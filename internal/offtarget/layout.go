package offtarget

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	recordFile    = "record.gb"
	sequenceFile  = "sequence.fasta"
	indexName     = "index"
	indexLockFile = "index.lock"
	reportSuffix  = "-offtarget-matches.sam"
)

// bowtie2-build writes index.1.bt2 for small genomes and index.1.bt2l for large ones
var indexMarkers = []string{".1.bt2", ".1.bt2l"}

// accessionPattern covers GenBank/RefSeq accessions with an optional version (NC_000913.3)
var accessionPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// Layout maps an accession to its files. Every accession gets its own directory
// holding the GenBank record, the plain sequence, the bowtie2 index and match reports,
// so accessions never collide.
type Layout struct {
	Root string
}

// Dir is the accession's cache directory.
func (l Layout) Dir(accession string) string {
	return filepath.Join(l.Root, accession)
}

// RecordPath is the stored GenBank text.
func (l Layout) RecordPath(accession string) string {
	return filepath.Join(l.Dir(accession), recordFile)
}

// SequencePath is the FASTA file handed to bowtie2-build.
func (l Layout) SequencePath(accession string) string {
	return filepath.Join(l.Dir(accession), sequenceFile)
}

// IndexPrefix is the bowtie2 index basename.
func (l Layout) IndexPrefix(accession string) string {
	return filepath.Join(l.Dir(accession), indexName)
}

// IndexExists reports whether the index marker is present. The marker is
// the last artifact put in place by a build.
func (l Layout) IndexExists(accession string) bool {
	prefix := l.IndexPrefix(accession)
	for _, ext := range indexMarkers {
		if _, err := os.Stat(prefix + ext); err == nil {
			return true
		}
	}
	return false
}

// ReportPath names the match report for a candidate file: the part of its
// base name before the first "." plus a fixed suffix.
func (l Layout) ReportPath(accession, candidates string) string {
	base := filepath.Base(candidates)
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return filepath.Join(l.Dir(accession), base+reportSuffix)
}

func checkAccession(accession string) error {
	if accession == "." || accession == ".." || !accessionPattern.MatchString(accession) {
		return fmt.Errorf("%w: %q", ErrInvalidAccession, accession)
	}
	return nil
}
