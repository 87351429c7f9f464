package offtarget

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Strand is the orientation of a feature on the record's sequence.
type Strand int

const (
	StrandReverse Strand = -1
	StrandUnknown Strand = 0
	StrandForward Strand = 1
)

// Location is a feature's extent in 0-based, half-open coordinates: a GenBank
// "10..20" is Start 9, End 20. Joined locations collapse to their outer bounds.
type Location struct {
	Start  int
	End    int
	Strand Strand
}

// Feature is one entry of a GenBank feature table.
type Feature struct {
	Type       string
	Location   Location
	Qualifiers map[string][]string
}

// Qualifier returns the first non-empty value of a qualifier, or "".
func (f Feature) Qualifier(key string) string {
	for _, v := range f.Qualifiers[key] {
		if v != "" {
			return v
		}
	}
	return ""
}

// Record is a parsed GenBank entry. It is never modified after it is read.
type Record struct {
	Accession  string
	Definition string
	Seq        string
	Features   []Feature

	// the text the record was parsed from, persisted as-is by the cache
	raw []byte
}

var (
	locationNumber = regexp.MustCompile(`\d+`)

	// references into other records, eg "J00194.1:100..202", carry no coordinates on this one
	remoteLocation = regexp.MustCompile(`[^,(\s]+:[<>]?\d+(\.\.[<>]?\d+)?`)
)

// parseLocation reads a GenBank location string such as "complement(join(<1..20,30..>45))".
func parseLocation(s string) (Location, error) {
	local := remoteLocation.ReplaceAllString(s, "")
	nums := locationNumber.FindAllString(local, -1)
	if len(nums) == 0 {
		return Location{}, fmt.Errorf("no coordinates in location %q", s)
	}

	lo, hi := -1, -1
	for _, n := range nums {
		v, err := strconv.Atoi(n)
		if err != nil {
			return Location{}, fmt.Errorf("bad coordinate in location %q: %v", s, err)
		}
		if lo == -1 || v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	loc := Location{Start: lo - 1, End: hi, Strand: StrandForward}
	if strings.Contains(local, "complement(") {
		loc.Strand = StrandReverse
	}
	return loc, nil
}

// genbankReader accumulates one record while scanning its lines.
type genbankReader struct {
	rec     *Record
	locus   string
	section string

	feature  *Feature
	location strings.Builder

	qualKey   string
	qualValue strings.Builder
	inQuote   bool

	seq      strings.Builder
	complete bool
}

// ParseGenbank reads the first record in a GenBank flat file.
func ParseGenbank(contents []byte) (*Record, error) {
	r := &genbankReader{rec: &Record{raw: contents}}

	scanner := bufio.NewScanner(bytes.NewReader(contents))
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() && !r.complete {
		if err := r.line(strings.TrimRight(scanner.Text(), "\r")); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := r.flushFeature(); err != nil {
		return nil, err
	}

	if r.rec.Accession == "" {
		r.rec.Accession = r.locus
	}
	switch {
	case r.rec.Accession == "":
		return nil, fmt.Errorf("failed to parse genbank record: no LOCUS or ACCESSION")
	case r.section != "ORIGIN":
		return nil, fmt.Errorf("failed to parse genbank record %s: no ORIGIN section", r.rec.Accession)
	}
	r.rec.Seq = r.seq.String()
	return r.rec, nil
}

func (r *genbankReader) line(line string) error {
	if strings.HasPrefix(line, "//") {
		r.complete = true
		return nil
	}

	if r.section == "ORIGIN" {
		for _, c := range line {
			if unicode.IsLetter(c) {
				r.seq.WriteRune(unicode.ToUpper(c))
			}
		}
		return nil
	}

	// a keyword in the first column starts a new section
	if line != "" && line[0] != ' ' {
		if err := r.flushFeature(); err != nil {
			return err
		}
		fields := strings.Fields(line)
		r.section = fields[0]
		switch r.section {
		case "LOCUS":
			if len(fields) > 1 {
				r.locus = fields[1]
			}
		case "ACCESSION":
			if len(fields) > 1 {
				r.rec.Accession = fields[1]
			}
		case "DEFINITION":
			r.rec.Definition = strings.TrimSpace(strings.TrimPrefix(line, "DEFINITION"))
		}
		return nil
	}

	switch r.section {
	case "DEFINITION":
		r.rec.Definition += " " + strings.TrimSpace(line)
	case "FEATURES":
		return r.featureLine(line)
	}
	return nil
}

func (r *genbankReader) featureLine(line string) error {
	// feature keys start in column 6, qualifiers and continuations in column 22
	if len(line) > 5 && strings.HasPrefix(line, "     ") && line[5] != ' ' {
		if err := r.flushFeature(); err != nil {
			return err
		}
		fields := strings.Fields(line)
		r.feature = &Feature{Type: fields[0], Qualifiers: map[string][]string{}}
		if len(fields) > 1 {
			r.location.WriteString(strings.Join(fields[1:], ""))
		}
		return nil
	}

	if r.feature == nil {
		return nil // the "Location/Qualifiers" header
	}

	text := strings.TrimSpace(line)
	switch {
	case r.inQuote:
		sep := " "
		if r.qualKey == "translation" {
			sep = ""
		}
		r.qualValue.WriteString(sep + text)
		if strings.HasSuffix(text, `"`) {
			r.inQuote = false
		}
	case strings.HasPrefix(text, "/"):
		r.flushQualifier()
		key, value, hasValue := strings.Cut(text[1:], "=")
		r.qualKey = key
		r.qualValue.WriteString(value)
		r.inQuote = hasValue && strings.HasPrefix(value, `"`) && !(len(value) >= 2 && strings.HasSuffix(value, `"`))
	case r.qualKey == "":
		r.location.WriteString(text)
	}
	return nil
}

func (r *genbankReader) flushQualifier() {
	if r.qualKey != "" {
		value := strings.Trim(r.qualValue.String(), `"`)
		r.feature.Qualifiers[r.qualKey] = append(r.feature.Qualifiers[r.qualKey], value)
	}
	r.qualKey = ""
	r.qualValue.Reset()
	r.inQuote = false
}

func (r *genbankReader) flushFeature() error {
	if r.feature == nil {
		return nil
	}
	r.flushQualifier()

	loc, err := parseLocation(r.location.String())
	if err != nil {
		return fmt.Errorf("failed to parse %s feature: %v", r.feature.Type, err)
	}
	r.feature.Location = loc
	r.rec.Features = append(r.rec.Features, *r.feature)

	r.feature = nil
	r.location.Reset()
	return nil
}
