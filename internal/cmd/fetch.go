package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

// fetchCmd retrieves records into the cache, building their alignment indexes
var fetchCmd = &cobra.Command{
	Use:                        "fetch [accession]...",
	Short:                      "Fetch, cache and index GenBank records",
	Run:                        runFetchCmd,
	SuggestionsMinimumDistance: 2,
	Long: `Fetch annotated GenBank records from NCBI Entrez by accession.
Each record is cached with its plain sequence and a bowtie2 index is built
for it, so it can be passed to 'offtarget regions' and 'offtarget search'.

Accessions that are already cached are not fetched again.`,
	Example: "  offtarget fetch NC_000913.3 NC_002695.2",
	Aliases: []string{"get", "retrieve"},
	Args:    cobra.MinimumNArgs(1),
}

func init() {
	RootCmd.AddCommand(fetchCmd)
}

func runFetchCmd(cmd *cobra.Command, args []string) {
	conf := loadConfig(cmd)
	s := newServices(conf)

	var errs error
	for _, accession := range extractAccessions(args) {
		rec, err := s.annotations.Retrieve(cmd.Context(), accession)
		if err != nil {
			rlog.Errorw("failed to retrieve record", "accession", accession, "error", err)
			errs = multierr.Append(errs, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s bp\t%d features\t%s\n",
			accession, humanize.Comma(int64(len(rec.Seq))), len(rec.Features), rec.Definition)
	}

	if errs != nil {
		fatal(conf, errs)
	}
}
