package scoping

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/bulwark-sec/bulwark/internal/backend"
	cmdutil "github.com/bulwark-sec/bulwark/internal/cmd"
	"github.com/bulwark-sec/bulwark/internal/report"
	"github.com/bulwark-sec/bulwark/internal/session"
	"github.com/bulwark-sec/bulwark/pkg/shared"
	"github.com/bulwark-sec/bulwark/pkg/shared/config"
	"github.com/bulwark-sec/bulwark/pkg/shared/errors"
)

// RunOptionsScoping holds the arguments of the scoping command.
type RunOptionsScoping struct {
	RepositoryURL string   `json:"repository_url,omitempty"`
	Branch        string   `json:"branch,omitempty"`
	Selected      []string `json:"selected,omitempty"`
	OutputPath    string   `json:"output_path,omitempty"`
}

var (
	AppConfig      *config.Config
	logger         hclog.Logger
	scopingOptions RunOptionsScoping

	exampleScopingUsage = `  # Generate a pre-audit report for the default branch
  bulwark scoping --repo-url https://github.com/acme/vault

  # Scope selected files of a branch and keep the report in a folder
  bulwark scoping --repo-url https://github.com/acme/vault --branch audit --select programs/vault/src/lib.rs -o ./reports`
)

// ScopingCmd generates pre-audit scoping reports.
var ScopingCmd = &cobra.Command{
	Use:                   "scoping --repo-url URL [--branch NAME] [--select PATH...] [--output/-o DIR]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleScopingUsage,
	Short:                 "Generate a pre-audit scoping report for a GitHub repository",
	RunE:                  runScopingCommand,
}

// Init initializes the global configuration and logger.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runScopingCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	if err := validateScopingArgs(&scopingOptions, args); err != nil {
		logger.Error("invalid scoping arguments", "error", err)
		return errors.NewCommandError(scopingOptions, fmt.Errorf("invalid scoping arguments: %w", err), 1)
	}

	ctx := cmd.Context()
	client, err := backend.New(AppConfig, logger)
	if err != nil {
		return errors.NewCommandError(scopingOptions, fmt.Errorf("failed to initialize backend client: %w", err), 2)
	}

	token, err := sessionToken(ctx)
	if err != nil {
		return errors.NewCommandError(scopingOptions, err, 2)
	}

	logger.Info("generating scoping report", "repository", scopingOptions.RepositoryURL, "authenticated", token != "")
	scoped, err := client.GenerateReport(ctx, backend.GenerateReportRequest{
		RepositoryURL: scopingOptions.RepositoryURL,
		AccessToken:   token,
		Branch:        scopingOptions.Branch,
		SelectedFiles: scopingOptions.Selected,
	})
	if err != nil {
		logger.Error("scoping failed", "error", err)
		return errors.NewCommandError(scopingOptions, fmt.Errorf("scoping failed: %s", errors.UserMessage(err)), cmdutil.ExitCode(err))
	}

	r := report.NewScoping(scoped)
	if err := r.Validate(); err != nil {
		return errors.NewCommandError(scopingOptions, err, 2)
	}
	if err := report.Render(cmd.OutOrStdout(), r); err != nil {
		return err
	}

	saved, err := cmdutil.PersistReport(ctx, cmdutil.WithOutputFolder(AppConfig, scopingOptions.OutputPath), logger, "scoping", r, false)
	if err != nil {
		logger.Error("failed to write artifact", "error", err)
		return errors.NewCommandError(scopingOptions, fmt.Errorf("failed to write artifact: %w", err), 2)
	}
	for _, p := range saved {
		fmt.Fprintf(os.Stderr, "Saved %s\n", p)
	}
	logger.Info("scoping command completed successfully", "report", r.ID())
	return nil
}

// sessionToken returns the stored GitHub token, or an empty string when nobody is logged in.
func sessionToken(ctx context.Context) (string, error) {
	watcher, store, err := session.Open(AppConfig, logger)
	if err != nil {
		return "", err
	}
	defer store.Close()

	s, err := watcher.LoadSession(ctx)
	if err != nil || s == nil {
		return "", err
	}
	return s.Token, nil
}

func init() {
	ScopingCmd.Flags().StringVar(&scopingOptions.RepositoryURL, "repo-url", "", "URL of the GitHub repository to scope.")
	ScopingCmd.Flags().StringVar(&scopingOptions.Branch, "branch", "", "Branch to scope (default is the repository's default branch).")
	ScopingCmd.Flags().StringSliceVarP(&scopingOptions.Selected, "select", "s", nil, "Path of a file to include. Can be repeated. Defaults to every file.")
	ScopingCmd.Flags().StringVarP(&scopingOptions.OutputPath, "output", "o", "", "Folder where report artifacts are written (default is the artifacts folder).")
	ScopingCmd.Flags().BoolP("help", "h", false, "Show help for the scoping command.")
}
