package github

import (
	"fmt"
	"os"

	"github.com/bulwark-sec/bulwark/internal/ghclient"
)

// validateAnalyzeArgs validates the arguments provided to the analyze command.
func validateAnalyzeArgs(options *RunOptionsAnalyze, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("positional arguments are not supported, use the 'url' or 'repo' flag")
	}

	switch {
	case options.URL == "" && options.Repository == "":
		return fmt.Errorf("one of the 'url' or 'repo' flags must be specified")
	case options.URL != "" && options.Repository != "":
		return fmt.Errorf("you cannot use both 'url' and 'repo' flags at the same time")
	case options.URL != "":
		if _, _, err := ghclient.ParseRepoURL(options.URL); err != nil {
			return err
		}
	default:
		if _, _, err := splitRepository(options.Repository); err != nil {
			return err
		}
	}

	modes := 0
	for _, set := range []bool{options.ListOnly, options.All, len(options.Selected) > 0} {
		if set {
			modes++
		}
	}
	if modes == 0 {
		return fmt.Errorf("one of the 'list', 'all' or 'select' flags must be specified")
	}
	if modes > 1 {
		return fmt.Errorf("the 'list', 'all' and 'select' flags are mutually exclusive")
	}

	if options.OutputPath != "" {
		if info, err := os.Stat(options.OutputPath); err == nil && !info.IsDir() {
			return fmt.Errorf("the 'output' path %q is a file, expected a folder", options.OutputPath)
		}
	}
	return nil
}
