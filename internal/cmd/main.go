package cmd

import (
	"github.com/Lattice-Automation/offtarget/internal/config"
	"github.com/Lattice-Automation/offtarget/internal/offtarget"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rlog = offtarget.Logger()

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use: "offtarget",
	Short: `offtarget

Find the genes and intergenic regions of a GenBank genome and search
candidate sequences against it for off-target matches with bowtie2`,
	Version: "0.1.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("verbose") {
			offtarget.SetVerboseLogging()
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		writeMetrics(config.New())
	},
}

func init() {
	// config is an optional parameter for a settings file (that overrides defaults)
	RootCmd.PersistentFlags().StringP("config", "c", "", "User defined config file that may override all or some default settings")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "log every external command and cache lookup")
	must(viper.BindPFlag("config", RootCmd.PersistentFlags().Lookup("config")))
	must(viper.BindPFlag("verbose", RootCmd.PersistentFlags().Lookup("verbose")))
}
