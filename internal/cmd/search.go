package cmd

import (
	"errors"
	"fmt"

	"github.com/Lattice-Automation/offtarget/internal/offtarget"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

// searchCmd aligns candidate sequences against a genome
var searchCmd = &cobra.Command{
	Use:                        "search [accession] [candidates]...",
	Short:                      "Search candidate sequences for off-target matches",
	Run:                        runSearchCmd,
	SuggestionsMinimumDistance: 2,
	Long: `Align every sequence of each candidate FASTA file against the bowtie2 index
of an accession, reporting all alignments with up to --mismatches mismatches.

Candidates may be files, directories of FASTA files or glob patterns. One SAM
report is written per candidate file, next to the accession's index, and its
path is printed. The accession must have been indexed with 'offtarget fetch'
or 'offtarget index'.`,
	Example: "  offtarget search NC_000913.3 ./guides.fa --mismatches 3",
	Aliases: []string{"align"},
	Args:    cobra.MinimumNArgs(2),
}

func init() {
	searchCmd.Flags().IntP("mismatches", "m", 0, "maximum mismatches of a reported alignment (default from config)")
	searchCmd.Flags().DurationP("timeout", "t", 0, "bound on each bowtie2 run (default from config)")

	RootCmd.AddCommand(searchCmd)
}

func runSearchCmd(cmd *cobra.Command, args []string) {
	conf := loadConfig(cmd)
	accession := args[0]

	candidateFiles, err := offtarget.CollectCandidateFiles(args[1:])
	if err != nil {
		fatal(conf, fmt.Errorf("failed to collect candidate files from %v: %w", args[1:], err))
	}
	if len(candidateFiles) == 0 {
		helpAndFatal(cmd, "no candidate files found in %v", args[1:])
	}

	s := newServices(conf)
	var errs error
	for _, candidates := range candidateFiles {
		job := offtarget.NewOffTargetJob(accession, candidates, conf.MismatchThreshold)
		report, err := s.searcher.Search(cmd.Context(), job)
		if errors.Is(err, offtarget.ErrIndexMissing) {
			fatal(conf, fmt.Errorf("%w\nrun 'offtarget index %s' first", err, accession))
		} else if err != nil {
			rlog.Errorw("off-target search failed", "job", job.ID, "candidates", candidates, "error", err)
			errs = multierr.Append(errs, err)
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), report)
	}

	if errs != nil {
		fatal(conf, errs)
	}
}
