package shared

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

// HasFlags reports whether any flag of the set was set on the command line.
func HasFlags(flags *pflag.FlagSet) bool {
	changed := false
	flags.Visit(func(*pflag.Flag) {
		changed = true
	})
	return changed
}

// PrintResultAsJSON writes result to stdout as indented JSON.
func PrintResultAsJSON(result interface{}) error {
	return WriteResultAsJSON(os.Stdout, result)
}

// WriteResultAsJSON writes result to w as indented JSON.
func WriteResultAsJSON(w io.Writer, result interface{}) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
