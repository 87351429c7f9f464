package cmd

import (
	"io"
	"os"
	"strings"

	"github.com/Lattice-Automation/offtarget/internal/config"
	"github.com/Lattice-Automation/offtarget/internal/offtarget"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

// services are the domain objects a command works with, all built from one config.
type services struct {
	conf        *config.Config
	layout      offtarget.Layout
	indexes     *offtarget.IndexManager
	cache       *offtarget.AnnotationCache
	annotations *offtarget.Annotations
	searcher    *offtarget.Searcher
}

func newServices(conf *config.Config) *services {
	layout := offtarget.Layout{Root: conf.DataDir}
	runner := offtarget.ExecRunner{}

	indexes := offtarget.NewIndexManager(layout, runner, conf.IndexBuildTimeout)
	cache := offtarget.NewAnnotationCache(layout, indexes)
	entrez := offtarget.NewEntrezClient(offtarget.EntrezConfig{
		Email:             conf.EntrezEmail,
		APIKey:            conf.EntrezAPIKey,
		RequestsPerSecond: conf.EntrezRequestsPerSecond,
		Timeout:           conf.FetchTimeout,
	})

	return &services{
		conf:        conf,
		layout:      layout,
		indexes:     indexes,
		cache:       cache,
		annotations: offtarget.NewAnnotations(cache, entrez),
		searcher:    offtarget.NewSearcher(layout, runner, conf.SearchTimeout),
	}
}

// loadConfig reads the settings files and applies the command's flag overrides
// to a copy of them.
func loadConfig(cmd *cobra.Command) *config.Config {
	conf := config.New().Clone()

	if cmd.Flags().Changed("min-length") {
		conf.MinimumIntergenicLength = extractInt(cmd, "min-length")
	}
	if cmd.Flags().Changed("mismatches") {
		conf.MismatchThreshold = extractInt(cmd, "mismatches")
	}
	if cmd.Flags().Changed("timeout") {
		timeout, err := cmd.Flags().GetDuration("timeout")
		if err != nil {
			helpAndFatal(cmd, "failed to parse timeout arg: %v", err)
		}
		conf.SearchTimeout = timeout
	}

	if err := conf.Validate(); err != nil {
		helpAndFatal(cmd, "%v", err)
	}
	return conf
}

func extractInt(cmd *cobra.Command, name string) int {
	value, err := cmd.Flags().GetInt(name)
	if err != nil {
		helpAndFatal(cmd, "failed to parse %s arg: %v", name, err)
	}
	return value
}

// extractAccessions accepts accessions as separate arguments or comma separated.
func extractAccessions(args []string) []string {
	var accessions []string
	for _, a := range args {
		accessions = append(accessions, splitStringOn(a, []rune{' ', ','})...)
	}
	return accessions
}

func extractOutputFormat(cmd *cobra.Command) string {
	outputFormat, err := cmd.Flags().GetString("out-fmt")
	if err != nil {
		rlog.Warnf("failed to parse output format arg: %v - will use CSV", err)
		return offtarget.FormatCSV
	}
	outputFormat = strings.ToUpper(outputFormat)

	if outputFormat == offtarget.FormatJSON || outputFormat == offtarget.FormatCSV {
		return outputFormat
	}
	rlog.Warnf("unknown output format: %s - will use CSV", outputFormat)
	return offtarget.FormatCSV
}

// extractOutput opens the --out file, or stdout when there is none.
func extractOutput(cmd *cobra.Command) (io.WriteCloser, error) {
	out, _ := cmd.Flags().GetString("out")
	if out == "" || out == "-" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	return os.Create(out)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func splitStringOn(s string, separators []rune) []string {
	splitFunc := func(c rune) bool {
		return slices.Contains(separators, c)
	}

	return strings.FieldsFunc(s, splitFunc)
}

// writeMetrics exports this run's metrics when a textfile is configured.
func writeMetrics(conf *config.Config) {
	if conf.MetricsTextfile == "" {
		return
	}
	if err := offtarget.WriteMetrics(conf.MetricsTextfile); err != nil {
		rlog.Warnf("failed to write metrics to %s: %v", conf.MetricsTextfile, err)
	}
}

// fatal exits nonzero after flushing metrics, which PersistentPostRun would otherwise skip.
func fatal(conf *config.Config, err error) {
	writeMetrics(conf)
	rlog.Fatal(err)
}

func helpAndFatal(cmd *cobra.Command, format string, args ...interface{}) {
	if helperr := cmd.Help(); helperr != nil {
		rlog.Fatal(helperr)
	}
	rlog.Fatalf(format, args...)
}

func must(err error) {
	if err != nil {
		rlog.Fatal(err)
	}
}
