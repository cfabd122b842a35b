package auth

import "fmt"

// validateLoginArgs validates the arguments provided to the login command.
func validateLoginArgs(options *RunOptionsLogin, stdinIsTerminal bool) error {
	if !options.TokenStdin && !stdinIsTerminal {
		return fmt.Errorf("standard input is not a terminal, use the 'token-stdin' flag to pipe a token")
	}
	return nil
}
