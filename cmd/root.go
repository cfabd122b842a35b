package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bulwark-sec/bulwark/cmd/auth"
	"github.com/bulwark-sec/bulwark/cmd/github"
	"github.com/bulwark-sec/bulwark/cmd/health"
	"github.com/bulwark-sec/bulwark/cmd/reports"
	"github.com/bulwark-sec/bulwark/cmd/scoping"
	"github.com/bulwark-sec/bulwark/cmd/upload"
	"github.com/bulwark-sec/bulwark/cmd/version"
	"github.com/bulwark-sec/bulwark/pkg/shared/config"
	bwerrors "github.com/bulwark-sec/bulwark/pkg/shared/errors"
	"github.com/bulwark-sec/bulwark/pkg/shared/logger"
)

var (
	cfgFile   string
	AppConfig *config.Config
	Logger    hclog.Logger
	rootCmd   = &cobra.Command{
		Use:                   "bulwark [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "Bulwark is a command-line client for the Bulwark smart-contract audit service.",
		Long: `Bulwark uploads smart-contract sources or points the audit service at a GitHub
	repository, runs static analysis on the selected Rust and Solidity files and renders the reports.
	`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $BULWARK_HOME/config.yml)")
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(health.HealthCmd)
	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(upload.UploadCmd)
	rootCmd.AddCommand(github.GithubCmd)
	rootCmd.AddCommand(reports.ReportsCmd)
	rootCmd.AddCommand(scoping.ScopingCmd)
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		var cmdErr *bwerrors.CommandError
		if errors.As(err, &cmdErr) {
			return cmdErr.ExitCode
		}
		return 1
	}
	return 0
}

func initConfig() error {
	var err error

	if cfgFile == "" {
		cfgFile = defaultConfigPath()
	}
	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		return bwerrors.NewCommandError(cfgFile, fmt.Errorf("initializing config file function is crashed: %w", err), 1)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		return bwerrors.NewCommandError(cfgFile, err, 1)
	}

	Logger = logger.NewLogger(AppConfig, "core")
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}

	version.Init(AppConfig)
	health.Init(AppConfig, Logger.Named("health"))
	auth.Init(AppConfig, Logger.Named("auth"))
	upload.Init(AppConfig, Logger.Named("upload"))
	github.Init(AppConfig, Logger.Named("github"))
	reports.Init(AppConfig, Logger.Named("reports"))
	scoping.Init(AppConfig, Logger.Named("scoping"))
	return nil
}

func defaultConfigPath() string {
	if p := os.Getenv("BULWARK_CONFIG"); p != "" {
		return p
	}
	if home := os.Getenv("BULWARK_HOME"); home != "" {
		return filepath.Join(home, "config.yml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".bulwark", "config.yml")
	}
	return "config.yml"
}
