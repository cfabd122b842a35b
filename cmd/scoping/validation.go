package scoping

import (
	"fmt"
	"os"
	"strings"

	"github.com/bulwark-sec/bulwark/internal/ghclient"
)

// validateScopingArgs validates the arguments provided to the scoping command.
func validateScopingArgs(options *RunOptionsScoping, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("positional arguments are not supported, use the 'repo-url' flag")
	}

	if options.RepositoryURL == "" {
		return fmt.Errorf("the 'repo-url' flag must be specified")
	}
	if _, _, err := ghclient.ParseRepoURL(options.RepositoryURL); err != nil {
		return err
	}
	if strings.ContainsAny(options.Branch, " \t\n") {
		return fmt.Errorf("invalid branch name %q", options.Branch)
	}
	for _, p := range options.Selected {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("selected paths cannot be blank")
		}
	}

	if options.OutputPath != "" {
		if info, err := os.Stat(options.OutputPath); err == nil && !info.IsDir() {
			return fmt.Errorf("the 'output' path %q is a file, expected a folder", options.OutputPath)
		}
	}
	return nil
}
