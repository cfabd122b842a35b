package upload

import (
	"fmt"
	"os"

	"github.com/bulwark-sec/bulwark/pkg/shared"
)

// validateUploadArgs validates the arguments provided to the upload command.
func validateUploadArgs(options *RunOptionsUpload, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("positional arguments are not supported, use the 'archive' flag")
	}

	if options.ArchivePath == "" {
		return fmt.Errorf("the 'archive' flag must be specified")
	}
	if err := shared.ValidateArchive(shared.Archive{Path: options.ArchivePath}); err != nil {
		return err
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
