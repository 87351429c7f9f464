package offtarget

import (
	"fmt"
	"io"
	"os"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

const fastaLineWidth = 60

// writeFasta writes a single-entry FASTA file, the plain sequence bowtie2-build indexes.
func writeFasta(w io.Writer, id, desc, seq string) error {
	s := linear.NewSeq(id, alphabet.BytesToLetters([]byte(seq)), alphabet.DNAredundant)
	s.Desc = desc

	if _, err := fasta.NewWriter(w, fastaLineWidth).Write(s); err != nil {
		return fmt.Errorf("failed to write FASTA entry %s: %v", id, err)
	}
	return nil
}

// countFasta returns the number of entries in a FASTA file.
func countFasta(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	template := linear.NewSeq("", nil, alphabet.DNAredundant)
	scanner := seqio.NewScanner(fasta.NewReader(f, template))

	n := 0
	for scanner.Next() {
		n++
	}
	if err := scanner.Error(); err != nil {
		return n, fmt.Errorf("failed to read FASTA file %s: %v", path, err)
	}
	return n, nil
}
