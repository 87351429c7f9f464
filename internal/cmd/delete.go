package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

// deleteCmd is for removing cached accessions
var deleteCmd = &cobra.Command{
	Use:                        "delete [accession]...",
	Short:                      "Delete cached genomes",
	Run:                        runDeleteCmd,
	SuggestionsMinimumDistance: 2,
	Example:                    "  offtarget delete NC_000913.3",
	Long: `Delete everything cached for an accession: its GenBank record, plain sequence,
bowtie2 index and match reports. A later command on it fetches it again.`,
	Aliases: []string{"rm", "remove"},
	Args:    cobra.MinimumNArgs(1),
}

func init() {
	RootCmd.AddCommand(deleteCmd)
}

func runDeleteCmd(cmd *cobra.Command, args []string) {
	conf := loadConfig(cmd)
	s := newServices(conf)

	var errs error
	for _, accession := range extractAccessions(args) {
		if err := s.cache.Delete(accession); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		rlog.Infow("deleted cached accession", "accession", accession)
	}

	if errs != nil {
		fatal(conf, errs)
	}
}
