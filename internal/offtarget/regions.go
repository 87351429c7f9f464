package offtarget

import (
	"fmt"
	"strconv"
)

// Direction is the reading direction of a region relative to the record.
type Direction string

const (
	Forward Direction = "fw"
	Reverse Direction = "rv"

	// noDirection is only carried by the sentinel that precedes the first gene
	noDirection Direction = "none"
)

// Region is a named span in 1-based, inclusive coordinates with Start <= End.
type Region struct {
	Name      string    `json:"name"`
	Start     int       `json:"start"`
	End       int       `json:"end"`
	Direction Direction `json:"direction"`
}

// Gene is a gene feature normalized so that Start <= End regardless of strand.
type Gene Region

// NoncodingRegion is the span between two consecutive genes. It carries no strand
// and is always reported Forward.
type NoncodingRegion Region

// RegionKind selects which regions of a record are reported.
type RegionKind string

const (
	// Coding reports the genes themselves
	Coding RegionKind = "coding"

	// Noncoding reports every intergenic region long enough
	Noncoding RegionKind = "noncoding"

	// Nonessential reports only intergenic regions between convergent genes
	// (forward then reverse), where both genes' C-termini face the region
	Nonessential RegionKind = "nonessential"
)

// ParseRegionKind validates a user supplied region kind.
func ParseRegionKind(s string) (RegionKind, error) {
	switch k := RegionKind(s); k {
	case Coding, Noncoding, Nonessential:
		return k, nil
	}
	return "", fmt.Errorf("unknown region kind %q: use %s, %s or %s", s, Coding, Noncoding, Nonessential)
}

// ExtractGenes converts every "gene" feature to a Gene, preserving feature order.
//
// Coordinates move from the 0-based half-open feature location to 1-based inclusive.
// Genes without a locus_tag are named Unknown_Name_<start>; two unnamed genes
// sharing a start coordinate get the same name.
func ExtractGenes(features []Feature) []Gene {
	genes := []Gene{}
	for _, f := range features {
		if f.Type != "gene" {
			continue
		}
		genes = append(genes, geneFromFeature(f))
	}
	return genes
}

func geneFromFeature(f Feature) Gene {
	start := f.Location.Start + 1
	end := f.Location.End
	if start > end {
		start, end = end, start
	}

	direction := Reverse
	if f.Location.Strand == StrandForward {
		direction = Forward
	}

	name := f.Qualifier("locus_tag")
	if name == "" {
		name = "Unknown_Name_" + strconv.Itoa(start)
	}

	return Gene{
		Name:      name,
		Start:     start,
		End:       end,
		Direction: direction,
	}
}

// ExtractNoncodingRegions walks consecutive genes and emits the gap between each pair
// when it is longer than minLength. With essentialOnly, a gap is only emitted when
// the gene before it is Forward and the gene after it is Reverse.
//
// A sentinel gene ending at -1 precedes the first gene so the sequence before it
// is considered too. The sequence after the last gene is not. Genes must already be
// in ascending coordinate order; nothing is sorted or validated here.
func ExtractNoncodingRegions(genes []Gene, minLength int, essentialOnly bool) []NoncodingRegion {
	regions := []NoncodingRegion{}

	prev := Gene{End: -1, Direction: noDirection}
	for _, next := range genes {
		if next.Start-prev.End > minLength {
			if !essentialOnly || (prev.Direction == Forward && next.Direction == Reverse) {
				start := prev.End + 1
				end := next.Start - 1
				regions = append(regions, NoncodingRegion{
					Name:      fmt.Sprintf("noncoding_%d-%d-%d", len(regions)+1, start, end),
					Start:     start,
					End:       end,
					Direction: Forward,
				})
			}
		}
		prev = next
	}
	return regions
}

// Regions selects the genes or intergenic regions of a record.
func Regions(rec *Record, kind RegionKind, minLength int) ([]Region, error) {
	genes := ExtractGenes(rec.Features)

	var regions []Region
	switch kind {
	case Coding:
		regions = make([]Region, 0, len(genes))
		for _, g := range genes {
			regions = append(regions, Region(g))
		}
	case Noncoding, Nonessential:
		noncoding := ExtractNoncodingRegions(genes, minLength, kind == Nonessential)
		regions = make([]Region, 0, len(noncoding))
		for _, r := range noncoding {
			regions = append(regions, Region(r))
		}
	default:
		return nil, fmt.Errorf("unknown region kind %q", kind)
	}
	return regions, nil
}
