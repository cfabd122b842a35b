package auth

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/bulwark-sec/bulwark/internal/backend"
	"github.com/bulwark-sec/bulwark/internal/session"
	"github.com/bulwark-sec/bulwark/pkg/shared/config"
	"github.com/bulwark-sec/bulwark/pkg/shared/errors"
)

// RunOptionsLogin holds the arguments of auth login.
type RunOptionsLogin struct {
	SkipURL    bool
	TokenStdin bool
}

// RunOptionsStatus holds the arguments of auth status.
type RunOptionsStatus struct {
	Validate bool
}

var (
	AppConfig     *config.Config
	logger        hclog.Logger
	loginOptions  RunOptionsLogin
	statusOptions RunOptionsStatus

	exampleLoginUsage = `  # Open the OAuth page, then paste the token it returns
  bulwark auth login

  # Store a token obtained elsewhere
  echo "$GITHUB_TOKEN" | bulwark auth login --skip-url --token-stdin`
)

// AuthCmd groups the session commands.
var AuthCmd = &cobra.Command{
	Use:                   "auth [command]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Manage the GitHub session used by the github and scoping commands",
}

// LoginCmd stores a validated GitHub token.
var LoginCmd = &cobra.Command{
	Use:                   "login [--skip-url] [--token-stdin]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Args:                  cobra.NoArgs,
	Example:               exampleLoginUsage,
	Short:                 "Authenticate with GitHub through the audit service",
	RunE:                  runLoginCommand,
}

// LogoutCmd clears the stored session.
var LogoutCmd = &cobra.Command{
	Use:                   "logout",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Args:                  cobra.NoArgs,
	Short:                 "Forget the stored GitHub session",
	RunE:                  runLogoutCommand,
}

// StatusCmd prints the stored session.
var StatusCmd = &cobra.Command{
	Use:                   "status [--validate]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Args:                  cobra.NoArgs,
	Short:                 "Show the stored GitHub session",
	RunE:                  runStatusCommand,
}

// Init initializes the global configuration and logger.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runLoginCommand(cmd *cobra.Command, args []string) error {
	if err := validateLoginArgs(&loginOptions, isTerminal(os.Stdin)); err != nil {
		logger.Error("invalid login arguments", "error", err)
		return errors.NewCommandError(loginOptions, fmt.Errorf("invalid login arguments: %w", err), 1)
	}

	ctx := cmd.Context()
	client, err := backend.New(AppConfig, logger)
	if err != nil {
		return errors.NewCommandError(loginOptions, fmt.Errorf("failed to initialize backend client: %w", err), 2)
	}
	watcher, store, err := session.Open(AppConfig, logger)
	if err != nil {
		return errors.NewCommandError(loginOptions, err, 2)
	}
	defer store.Close()

	if !loginOptions.SkipURL {
		authURL, err := client.GetGitHubAuthURL(ctx)
		if err != nil {
			logger.Error("failed to get the authorization url", "error", err)
			return errors.NewCommandError(loginOptions, fmt.Errorf("failed to get the authorization url: %s", errors.UserMessage(err)), 2)
		}
		if err := watcher.MarkResumeFlow(ctx); err != nil {
			return errors.NewCommandError(loginOptions, err, 2)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Open the following URL to authorize Bulwark:\n\n  %s\n\n", authURL)
	}

	token, err := readToken(cmd.InOrStdin(), cmd.ErrOrStderr(), loginOptions.TokenStdin)
	if err != nil {
		return errors.NewCommandError(loginOptions, err, 1)
	}

	validation, err := client.ValidateToken(ctx, token)
	if err != nil {
		logger.Error("token validation failed", "error", err)
		return errors.NewCommandError(loginOptions, fmt.Errorf("%s", authFailureMessage(nil, err)), 2)
	}
	if !validation.Valid {
		return errors.NewCommandError(loginOptions, fmt.Errorf("%s", authFailureMessage(validation, nil)), 2)
	}

	s := session.Session{Token: token, User: *validation.User}
	if err := watcher.SaveSession(ctx, s); err != nil {
		return errors.NewCommandError(loginOptions, fmt.Errorf("failed to save session: %w", err), 2)
	}

	// The authorization round trip is finished, so the resume flag set above is spent.
	resumed, err := watcher.ConsumeResumeFlag(ctx)
	if err != nil {
		return errors.NewCommandError(loginOptions, err, 2)
	}
	logger.Debug("login complete", "login", s.User.Login, "resume_flag", resumed)

	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", describeUser(s.User))
	return nil
}

func runLogoutCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	watcher, store, err := session.Open(AppConfig, logger)
	if err != nil {
		return errors.NewCommandError(nil, err, 2)
	}
	defer store.Close()

	if err := watcher.ClearSession(ctx); err != nil {
		return errors.NewCommandError(nil, fmt.Errorf("failed to clear session: %w", err), 2)
	}
	if _, err := watcher.ConsumeResumeFlag(ctx); err != nil {
		return errors.NewCommandError(nil, err, 2)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}

func runStatusCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	watcher, store, err := session.Open(AppConfig, logger)
	if err != nil {
		return errors.NewCommandError(statusOptions, err, 2)
	}
	defer store.Close()

	s, err := watcher.LoadSession(ctx)
	if err != nil {
		return errors.NewCommandError(statusOptions, err, 2)
	}
	if s == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
		return nil
	}

	if statusOptions.Validate {
		client, err := backend.New(AppConfig, logger)
		if err != nil {
			return errors.NewCommandError(statusOptions, err, 2)
		}
		validation, err := client.ValidateToken(ctx, s.Token)
		if err != nil {
			return errors.NewCommandError(statusOptions, fmt.Errorf("%s", authFailureMessage(nil, err)), 2)
		}
		if !validation.Valid {
			if err := watcher.ClearSession(ctx); err != nil {
				return errors.NewCommandError(statusOptions, err, 2)
			}
			return errors.NewCommandError(statusOptions, fmt.Errorf("stored token is no longer valid: %s", authFailureMessage(validation, nil)), 2)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", describeUser(s.User))
	return nil
}

func init() {
	LoginCmd.Flags().BoolVar(&loginOptions.SkipURL, "skip-url", false, "Do not request the OAuth URL; only read and store a token.")
	LoginCmd.Flags().BoolVar(&loginOptions.TokenStdin, "token-stdin", false, "Read the token from standard input instead of prompting.")
	StatusCmd.Flags().BoolVar(&statusOptions.Validate, "validate", false, "Check the stored token with the audit service and drop it when invalid.")

	AuthCmd.AddCommand(LoginCmd)
	AuthCmd.AddCommand(LogoutCmd)
	AuthCmd.AddCommand(StatusCmd)
}
