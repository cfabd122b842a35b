package reports

import (
	"fmt"
	"strings"
)

// validateGetArgs validates the arguments provided to the get command.
func validateGetArgs(options *RunOptionsGet) error {
	if len(options.IDs) == 0 {
		return fmt.Errorf("at least one report id must be specified")
	}
	for _, id := range options.IDs {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("report ids cannot be blank")
		}
	}
	if options.SARIF && !options.Save {
		return fmt.Errorf("the 'sarif' flag requires the 'save' flag")
	}
	if options.JSON && options.HTML {
		return fmt.Errorf("the 'json' and 'html' flags are mutually exclusive")
	}
	if (options.JSON || options.HTML) && options.Save {
		return fmt.Errorf("the 'save' flag cannot be combined with 'json' or 'html'")
	}
	return nil
}

// validateExportArgs validates the arguments provided to the export command.
func validateExportArgs(options *RunOptionsExport, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("positional arguments are not supported, use the 'id' flag")
	}
	for _, id := range options.IDs {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("report ids cannot be blank")
		}
	}
	for _, f := range options.Factors {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("factor names cannot be blank")
		}
	}
	return nil
}
