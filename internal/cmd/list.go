package cmd

import (
	"github.com/Lattice-Automation/offtarget/internal/offtarget"
	"github.com/spf13/cobra"
)

// listCmd is for listing the cached accessions
var listCmd = &cobra.Command{
	Use:                        "list",
	Short:                      "List cached genomes",
	Run:                        runListCmd,
	SuggestionsMinimumDistance: 2,
	Example:                    "  offtarget list",
	Long: `List every cached accession with the size of its GenBank record, whether
its bowtie2 index is built, how many match reports it holds and when it was cached.`,
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
}

func init() {
	RootCmd.AddCommand(listCmd)
}

func runListCmd(cmd *cobra.Command, args []string) {
	conf := loadConfig(cmd)
	cache := offtarget.NewAnnotationCache(offtarget.Layout{Root: conf.DataDir}, nil)

	entries, err := cache.List()
	if err != nil {
		fatal(conf, err)
	}
	if err := offtarget.WriteCacheEntries(cmd.OutOrStdout(), entries); err != nil {
		fatal(conf, err)
	}
}
