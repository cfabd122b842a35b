package auth

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/bulwark-sec/bulwark/internal/backend"
	"github.com/bulwark-sec/bulwark/pkg/shared"
	"github.com/bulwark-sec/bulwark/pkg/shared/errors"
)

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// readToken prompts for a token without echo on a terminal, or reads the first line of in.
func readToken(in io.Reader, prompt io.Writer, fromStdin bool) (string, error) {
	if f, ok := in.(*os.File); ok && !fromStdin && isTerminal(f) {
		fmt.Fprint(prompt, "Paste the GitHub token: ")
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return normalizeToken(string(raw))
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return normalizeToken(line)
}

func normalizeToken(raw string) (string, error) {
	token := strings.TrimSpace(raw)
	if token == "" {
		return "", errors.NewInputError("token", "must not be empty")
	}
	if strings.ContainsAny(token, " \t") {
		return "", errors.NewInputError("token", "must not contain whitespace")
	}
	return token, nil
}

// authFailureMessage returns the text shown when authentication does not succeed.
func authFailureMessage(v *backend.TokenValidation, err error) string {
	if err != nil {
		return errors.UserMessage(err)
	}
	if v != nil && v.Error != "" {
		return v.Error
	}
	return errors.DefaultAuthErrorMessage
}

func describeUser(u shared.GitHubUser) string {
	if u.Name != "" {
		return fmt.Sprintf("%s (%s)", u.Login, u.Name)
	}
	return u.Login
}
