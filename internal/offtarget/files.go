package offtarget

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// extensions of candidate files picked up from directories
var fastaExtensions = []string{".fa", ".fasta", ".fna", ".ffn", ".fas"}

// CollectCandidateFiles expands globs and directories into a sorted, deduplicated list of
// candidate FASTA files. Files named explicitly are kept whatever their extension;
// files found in directories must have a FASTA extension.
func CollectCandidateFiles(locations []string) ([]string, error) {
	var allErrs error
	var expandedLocations []string

	for _, l := range locations {
		if strings.TrimSpace(l) == "" {
			continue
		}
		paths, err := filepath.Glob(l)
		if err != nil {
			rlog.Infof("Error expanding %s: %v", l, err)
			continue
		}
		if len(paths) == 0 {
			// not a pattern, or a pattern with no match: let Stat report it
			paths = []string{l}
		}
		expandedLocations = append(expandedLocations, paths...)
	}

	allFiles := map[string]string{}
	for _, l := range expandedLocations {
		files, err := candidateFilesAt(l)
		if err != nil {
			allErrs = multierr.Append(allErrs, err)
			continue
		}
		for _, f := range files {
			allFiles[f] = f
		}
	}

	allFilePaths := maps.Values(allFiles)
	slices.Sort(allFilePaths)
	return allFilePaths, allErrs
}

func candidateFilesAt(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		return []string{abs}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !slices.Contains(fastaExtensions, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		abs, err := filepath.Abs(filepath.Join(path, e.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, abs)
	}
	return files, nil
}
