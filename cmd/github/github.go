package github

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/bulwark-sec/bulwark/internal/backend"
	cmdutil "github.com/bulwark-sec/bulwark/internal/cmd"
	"github.com/bulwark-sec/bulwark/internal/flow"
	"github.com/bulwark-sec/bulwark/internal/ghclient"
	"github.com/bulwark-sec/bulwark/internal/report"
	"github.com/bulwark-sec/bulwark/internal/session"
	"github.com/bulwark-sec/bulwark/internal/track"
	"github.com/bulwark-sec/bulwark/pkg/shared"
	"github.com/bulwark-sec/bulwark/pkg/shared/config"
	"github.com/bulwark-sec/bulwark/pkg/shared/errors"
)

// RunOptionsAnalyze holds the arguments of github analyze.
type RunOptionsAnalyze struct {
	URL        string   `json:"url,omitempty"`
	Repository string   `json:"repository,omitempty"`
	Selected   []string `json:"selected,omitempty"`
	All        bool     `json:"all,omitempty"`
	ListOnly   bool     `json:"list_only,omitempty"`
	OutputPath string   `json:"output_path,omitempty"`
	SARIF      bool     `json:"sarif,omitempty"`
}

var (
	AppConfig      *config.Config
	logger         hclog.Logger
	analyzeOptions RunOptionsAnalyze

	exampleAnalyzeUsage = `  # Analyze every Rust file of a public repository without logging in
  bulwark github analyze --url https://github.com/solana-labs/example-helloworld --all

  # List the contract files of one of your repositories
  bulwark github analyze --repo octo/vault --list

  # Analyze selected files of one of your repositories
  bulwark github analyze --repo octo/vault --select programs/vault/src/lib.rs --sarif`
)

// GithubCmd groups the GitHub commands.
var GithubCmd = &cobra.Command{
	Use:                   "github [command]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Analyze contracts stored in GitHub repositories",
}

// ReposCmd lists the repositories of the logged-in user.
var ReposCmd = &cobra.Command{
	Use:                   "repos",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Args:                  cobra.NoArgs,
	Short:                 "List your GitHub repositories",
	RunE:                  runReposCommand,
}

// AnalyzeCmd runs the GitHub flow.
var AnalyzeCmd = &cobra.Command{
	Use:                   "analyze {--url URL | --repo OWNER/NAME} {--list | --all | --select PATH...} [--output/-o DIR] [--sarif]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleAnalyzeUsage,
	Short:                 "Analyze contract files of a GitHub repository",
	RunE:                  runAnalyzeCommand,
}

// Init initializes the global configuration and logger.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runReposCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := requireSession(ctx)
	if err != nil {
		return err
	}

	gh, err := ghclient.New(AppConfig, logger, s.Token)
	if err != nil {
		return errors.NewCommandError(nil, err, 2)
	}
	repos, err := gh.ListUserRepositories(ctx)
	if err != nil {
		logger.Error("failed to list repositories", "error", err)
		return errors.NewCommandError(nil, fmt.Errorf("failed to list repositories: %w", err), 2)
	}
	return report.RenderRepositories(cmd.OutOrStdout(), repos)
}

func runAnalyzeCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	if err := validateAnalyzeArgs(&analyzeOptions, args); err != nil {
		logger.Error("invalid analyze arguments", "error", err)
		return errors.NewCommandError(analyzeOptions, fmt.Errorf("invalid analyze arguments: %w", err), 1)
	}

	ctx := cmd.Context()
	client, err := backend.New(AppConfig, logger)
	if err != nil {
		return errors.NewCommandError(analyzeOptions, fmt.Errorf("failed to initialize backend client: %w", err), 2)
	}
	watcher, store, err := session.Open(AppConfig, logger)
	if err != nil {
		return errors.NewCommandError(analyzeOptions, err, 2)
	}
	defer store.Close()

	githubFlow := flow.NewGitHubFlow(client, logger, track.New(logger))
	s, err := watcher.Watch(ctx, githubFlow)
	if err != nil {
		return errors.NewCommandError(analyzeOptions, err, 2)
	}

	switch determineSource(&analyzeOptions) {
	case SourcePublicURL:
		err = selectPublicRepository(ctx, githubFlow, analyzeOptions.URL)
	case SourceUserRepository:
		if s == nil {
			return errors.NewCommandError(analyzeOptions, fmt.Errorf("not logged in, run 'bulwark auth login' first"), 1)
		}
		err = selectUserRepository(ctx, githubFlow, s.Token, analyzeOptions.Repository)
	}
	if err != nil {
		logger.Error("failed to resolve repository", "error", err)
		return errors.NewCommandError(analyzeOptions, fmt.Errorf("%s", errors.UserMessage(err)), cmdutil.ExitCode(err))
	}

	out := cmd.OutOrStdout()
	if err := report.RenderFiles(out, githubFlow.ContractFiles()); err != nil {
		return err
	}
	if analyzeOptions.ListOnly {
		return nil
	}

	selected, err := cmdutil.ResolveSelection(githubFlow.ContractFiles(), analyzeOptions.Selected, cmdutil.DetermineMode(analyzeOptions.All))
	if err != nil {
		return errors.NewCommandError(analyzeOptions, fmt.Errorf("invalid selection: %w", err), 1)
	}

	logger.Info("running analysis", "files", len(selected))
	if err := githubFlow.RunAnalysis(ctx, selected); err != nil {
		logger.Error("analysis failed", "error", err)
		return errors.NewCommandError(analyzeOptions, fmt.Errorf("analysis failed: %s", githubFlow.Err()), 2)
	}

	viewer, err := report.NewViewer(report.DefaultViewerHistory)
	if err != nil {
		return err
	}
	opened, err := flow.OpenResults(githubFlow, viewer)
	if err != nil {
		return errors.NewCommandError(analyzeOptions, err, 2)
	}
	githubFlow.ResetFlow()

	if err := report.Render(out, opened); err != nil {
		return err
	}

	saved, err := cmdutil.PersistReport(ctx, cmdutil.WithOutputFolder(AppConfig, analyzeOptions.OutputPath), logger, "github", opened, analyzeOptions.SARIF)
	if err != nil {
		logger.Error("failed to write artifact", "error", err)
		return errors.NewCommandError(analyzeOptions, fmt.Errorf("failed to write artifact: %w", err), 2)
	}
	for _, p := range saved {
		fmt.Fprintf(os.Stderr, "Saved %s\n", p)
	}
	logger.Info("github analyze completed successfully", "report", opened.ID())
	return nil
}

func requireSession(ctx context.Context) (*session.Session, error) {
	watcher, store, err := session.Open(AppConfig, logger)
	if err != nil {
		return nil, errors.NewCommandError(nil, err, 2)
	}
	defer store.Close()

	s, err := watcher.LoadSession(ctx)
	if err != nil {
		return nil, errors.NewCommandError(nil, err, 2)
	}
	if s == nil {
		return nil, errors.NewCommandError(nil, fmt.Errorf("not logged in, run 'bulwark auth login' first"), 1)
	}
	return s, nil
}

func init() {
	AnalyzeCmd.Flags().StringVar(&analyzeOptions.URL, "url", "", "URL of a public GitHub repository.")
	AnalyzeCmd.Flags().StringVar(&analyzeOptions.Repository, "repo", "", "One of your repositories as OWNER/NAME. Requires 'bulwark auth login'.")
	AnalyzeCmd.Flags().StringSliceVarP(&analyzeOptions.Selected, "select", "s", nil, "Path of a contract file to analyze. Can be repeated.")
	AnalyzeCmd.Flags().BoolVar(&analyzeOptions.All, "all", false, "Analyze every contract file found.")
	AnalyzeCmd.Flags().BoolVar(&analyzeOptions.ListOnly, "list", false, "Only list the contract files found.")
	AnalyzeCmd.Flags().StringVarP(&analyzeOptions.OutputPath, "output", "o", "", "Folder where report artifacts are written (default is the artifacts folder).")
	AnalyzeCmd.Flags().BoolVar(&analyzeOptions.SARIF, "sarif", false, "Also write the report in SARIF format.")
	AnalyzeCmd.Flags().BoolP("help", "h", false, "Show help for the analyze command.")

	GithubCmd.AddCommand(ReposCmd)
	GithubCmd.AddCommand(AnalyzeCmd)
}
