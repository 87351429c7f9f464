package offtarget

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

// output formats for regions
const (
	FormatCSV  = "CSV"
	FormatJSON = "JSON"
)

// WriteRegions writes regions as CSV (with a header row) or as a JSON array.
func WriteRegions(w io.Writer, regions []Region, format string) error {
	switch strings.ToUpper(format) {
	case FormatJSON:
		out, err := json.MarshalIndent(regions, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case FormatCSV, "":
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"name", "start", "end", "direction"}); err != nil {
			return err
		}
		for _, r := range regions {
			row := []string{r.Name, strconv.Itoa(r.Start), strconv.Itoa(r.End), string(r.Direction)}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}
	return fmt.Errorf("unknown output format %q", format)
}

// WriteCacheEntries lists cached accessions as an aligned table.
func WriteCacheEntries(w io.Writer, entries []CacheEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', tabwriter.TabIndent)
	fmt.Fprintf(tw, "accession\trecord\tindexed\treports\tcached\n")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%d\t%s\n",
			e.Accession, humanize.Bytes(uint64(e.RecordSize)), e.Indexed, len(e.Reports), humanize.Time(e.CachedAt))
	}
	return tw.Flush()
}
