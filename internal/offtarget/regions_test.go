package offtarget

import (
	"reflect"
	"testing"
)

func Test_geneFromFeature(t *testing.T) {
	tests := []struct {
		name    string
		feature Feature
		want    Gene
	}{
		{
			name: "forward gene with locus tag",
			feature: Feature{
				Type:       "gene",
				Location:   Location{Start: 9, End: 20, Strand: StrandForward},
				Qualifiers: map[string][]string{"locus_tag": {"b0001"}},
			},
			want: Gene{Name: "b0001", Start: 10, End: 20, Direction: Forward},
		},
		{
			name: "reverse gene keeps ascending coordinates",
			feature: Feature{
				Type:       "gene",
				Location:   Location{Start: 299, End: 500, Strand: StrandReverse},
				Qualifiers: map[string][]string{"locus_tag": {"b0002"}},
			},
			want: Gene{Name: "b0002", Start: 300, End: 500, Direction: Reverse},
		},
		{
			name: "inverted bounds are swapped",
			feature: Feature{
				Type:       "gene",
				Location:   Location{Start: 500, End: 300, Strand: StrandReverse},
				Qualifiers: map[string][]string{"locus_tag": {"b0003"}},
			},
			want: Gene{Name: "b0003", Start: 300, End: 501, Direction: Reverse},
		},
		{
			name: "unknown strand is reverse",
			feature: Feature{
				Type:       "gene",
				Location:   Location{Start: 0, End: 30},
				Qualifiers: map[string][]string{"locus_tag": {"b0004"}},
			},
			want: Gene{Name: "b0004", Start: 1, End: 30, Direction: Reverse},
		},
		{
			name: "missing locus tag",
			feature: Feature{
				Type:       "gene",
				Location:   Location{Start: 41, End: 90, Strand: StrandForward},
				Qualifiers: map[string][]string{"gene": {"thrL"}},
			},
			want: Gene{Name: "Unknown_Name_42", Start: 42, End: 90, Direction: Forward},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := geneFromFeature(tt.feature); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("geneFromFeature() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func Test_ExtractGenes(t *testing.T) {
	features := []Feature{
		{Type: "source", Location: Location{Start: 0, End: 1000, Strand: StrandForward}},
		{Type: "gene", Location: Location{Start: 9, End: 20, Strand: StrandForward}, Qualifiers: map[string][]string{"locus_tag": {"a"}}},
		{Type: "CDS", Location: Location{Start: 9, End: 20, Strand: StrandForward}, Qualifiers: map[string][]string{"locus_tag": {"a"}}},
		{Type: "gene", Location: Location{Start: 99, End: 200, Strand: StrandReverse}, Qualifiers: map[string][]string{"locus_tag": {"b"}}},
	}

	want := []Gene{
		{Name: "a", Start: 10, End: 20, Direction: Forward},
		{Name: "b", Start: 100, End: 200, Direction: Reverse},
	}
	if got := ExtractGenes(features); !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractGenes() = %+v, want %+v", got, want)
	}

	if got := ExtractGenes(nil); len(got) != 0 {
		t.Errorf("ExtractGenes(nil) = %+v, want none", got)
	}
}

func Test_ExtractNoncodingRegions(t *testing.T) {
	type args struct {
		genes         []Gene
		minLength     int
		essentialOnly bool
	}
	tests := []struct {
		name string
		args args
		want []NoncodingRegion
	}{
		{
			name: "gap longer than minimum",
			args: args{
				genes: []Gene{
					{Name: "g1", Start: 1, End: 100, Direction: Forward},
					{Name: "g2", Start: 150, End: 300, Direction: Reverse},
				},
				minLength: 10,
			},
			want: []NoncodingRegion{
				{Name: "noncoding_1-101-149", Start: 101, End: 149, Direction: Forward},
			},
		},
		{
			name: "gap shorter than minimum",
			args: args{
				genes: []Gene{
					{Name: "g1", Start: 1, End: 100, Direction: Forward},
					{Name: "g2", Start: 150, End: 300, Direction: Reverse},
				},
				minLength: 60,
			},
			want: []NoncodingRegion{},
		},
		{
			name: "gap equal to minimum is dropped",
			args: args{
				genes: []Gene{
					{Name: "g1", Start: 1, End: 100, Direction: Forward},
					{Name: "g2", Start: 150, End: 300, Direction: Reverse},
				},
				minLength: 50,
			},
			want: []NoncodingRegion{},
		},
		{
			name: "sequence before the first gene",
			args: args{
				genes: []Gene{
					{Name: "g1", Start: 40, End: 100, Direction: Reverse},
				},
				minLength: 10,
			},
			want: []NoncodingRegion{
				{Name: "noncoding_1-0-39", Start: 0, End: 39, Direction: Forward},
			},
		},
		{
			name: "essential filter rejects divergent genes",
			args: args{
				genes: []Gene{
					{Name: "g1", Start: 1, End: 100, Direction: Reverse},
					{Name: "g2", Start: 150, End: 300, Direction: Forward},
				},
				minLength:     10,
				essentialOnly: true,
			},
			want: []NoncodingRegion{},
		},
		{
			name: "essential filter keeps convergent genes",
			args: args{
				genes: []Gene{
					{Name: "g1", Start: 1, End: 100, Direction: Forward},
					{Name: "g2", Start: 150, End: 300, Direction: Reverse},
				},
				minLength:     10,
				essentialOnly: true,
			},
			want: []NoncodingRegion{
				{Name: "noncoding_1-101-149", Start: 101, End: 149, Direction: Forward},
			},
		},
		{
			name: "ordinals count emitted regions only",
			args: args{
				genes: []Gene{
					{Name: "g1", Start: 1, End: 100, Direction: Forward},
					{Name: "g2", Start: 200, End: 300, Direction: Reverse},
					{Name: "g3", Start: 305, End: 400, Direction: Forward},
					{Name: "g4", Start: 500, End: 600, Direction: Reverse},
				},
				minLength: 10,
			},
			want: []NoncodingRegion{
				{Name: "noncoding_1-101-199", Start: 101, End: 199, Direction: Forward},
				{Name: "noncoding_2-401-499", Start: 401, End: 499, Direction: Forward},
			},
		},
		{
			name: "no genes",
			args: args{minLength: 10},
			want: []NoncodingRegion{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractNoncodingRegions(tt.args.genes, tt.args.minLength, tt.args.essentialOnly)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractNoncodingRegions() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func Test_Regions(t *testing.T) {
	rec := readTestRecord(t)

	tests := []struct {
		name      string
		kind      RegionKind
		minLength int
		want      []Region
	}{
		{
			name: "coding",
			kind: Coding,
			want: []Region{
				{Name: "TST_0001", Start: 10, End: 60, Direction: Forward},
				{Name: "TST_0002", Start: 120, End: 200, Direction: Reverse},
				{Name: "Unknown_Name_250", Start: 250, End: 290, Direction: Forward},
			},
		},
		{
			name:      "noncoding",
			kind:      Noncoding,
			minLength: 10,
			want: []Region{
				{Name: "noncoding_1-0-9", Start: 0, End: 9, Direction: Forward},
				{Name: "noncoding_2-61-119", Start: 61, End: 119, Direction: Forward},
				{Name: "noncoding_3-201-249", Start: 201, End: 249, Direction: Forward},
			},
		},
		{
			name:      "noncoding with a larger minimum",
			kind:      Noncoding,
			minLength: 50,
			want: []Region{
				{Name: "noncoding_1-61-119", Start: 61, End: 119, Direction: Forward},
			},
		},
		{
			name:      "nonessential",
			kind:      Nonessential,
			minLength: 10,
			want: []Region{
				{Name: "noncoding_1-61-119", Start: 61, End: 119, Direction: Forward},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Regions(rec, tt.kind, tt.minLength)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Regions() = %+v, want %+v", got, tt.want)
			}
		})
	}

	if _, err := Regions(rec, RegionKind("intronic"), 10); err == nil {
		t.Error("Regions() accepted an unknown kind")
	}
}

func Test_ParseRegionKind(t *testing.T) {
	for _, s := range []string{"coding", "noncoding", "nonessential"} {
		if k, err := ParseRegionKind(s); err != nil || string(k) != s {
			t.Errorf("ParseRegionKind(%q) = %q, %v", s, k, err)
		}
	}
	if _, err := ParseRegionKind("essential"); err == nil {
		t.Error("ParseRegionKind(essential) should fail")
	}
}
