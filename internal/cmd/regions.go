package cmd

import (
	"strings"

	"github.com/Lattice-Automation/offtarget/internal/offtarget"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

// regionsCmd lists the genes or the intergenic regions of a record
var regionsCmd = &cobra.Command{
	Use:                        "regions [accession]",
	Short:                      "List the coding or noncoding regions of a genome",
	Run:                        runRegionsCmd,
	SuggestionsMinimumDistance: 2,
	Long: `List regions of an annotated genome in 1-based, inclusive coordinates.

  coding        every gene, named by its locus tag
  noncoding     every gap between consecutive genes longer than --min-length
  nonessential  only gaps between a forward gene and a following reverse gene

The record is fetched and cached first if it is not already.`,
	Example: "  offtarget regions NC_000913.3 --region nonessential --min-length 100 -f json",
	Args:    cobra.ExactArgs(1),
}

func init() {
	regionsCmd.Flags().StringP("region", "r", string(offtarget.Noncoding), "region kind; valid values [coding, noncoding, nonessential]")
	regionsCmd.Flags().IntP("min-length", "l", 0, "gaps must be longer than this to be reported (default from config)")
	regionsCmd.Flags().StringP("out", "o", "", "output file name (default stdout)")
	regionsCmd.Flags().StringP("out-fmt", "f", offtarget.FormatCSV, "output file format; valid values [JSON, CSV]")

	RootCmd.AddCommand(regionsCmd)
}

func runRegionsCmd(cmd *cobra.Command, args []string) {
	conf := loadConfig(cmd)

	regionFlag, _ := cmd.Flags().GetString("region")
	kind, err := offtarget.ParseRegionKind(strings.ToLower(regionFlag))
	if err != nil {
		helpAndFatal(cmd, "%v", err)
	}

	s := newServices(conf)
	rec, err := s.annotations.Retrieve(cmd.Context(), args[0])
	if err != nil {
		fatal(conf, err)
	}

	regions, err := offtarget.Regions(rec, kind, conf.MinimumIntergenicLength)
	if err != nil {
		fatal(conf, err)
	}
	rlog.Debugw("selected regions", "accession", args[0], "kind", kind, "count", len(regions))

	out, err := extractOutput(cmd)
	if err != nil {
		fatal(conf, err)
	}
	err = offtarget.WriteRegions(out, regions, extractOutputFormat(cmd))
	if err = multierr.Append(err, out.Close()); err != nil {
		fatal(conf, err)
	}
}
