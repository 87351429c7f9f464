package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

// indexCmd makes sure an accession can be searched
var indexCmd = &cobra.Command{
	Use:                        "index [accession]...",
	Short:                      "Build the bowtie2 index of a cached genome",
	Run:                        runIndexCmd,
	SuggestionsMinimumDistance: 2,
	Long: `Build the bowtie2 index of each accession unless it already exists.
Records that are not cached are fetched first. Use this to repair an
accession whose index build failed during 'offtarget fetch'.`,
	Example: "  offtarget index NC_000913.3",
	Args:    cobra.MinimumNArgs(1),
}

func init() {
	RootCmd.AddCommand(indexCmd)
}

func runIndexCmd(cmd *cobra.Command, args []string) {
	conf := loadConfig(cmd)
	s := newServices(conf)

	var errs error
	for _, accession := range extractAccessions(args) {
		if _, err := s.annotations.Retrieve(cmd.Context(), accession); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if err := s.indexes.EnsureBuilt(cmd.Context(), accession); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), s.layout.IndexPrefix(accession))
	}

	if errs != nil {
		fatal(conf, errs)
	}
}
