package upload

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/bulwark-sec/bulwark/internal/backend"
	cmdutil "github.com/bulwark-sec/bulwark/internal/cmd"
	"github.com/bulwark-sec/bulwark/internal/flow"
	"github.com/bulwark-sec/bulwark/internal/report"
	"github.com/bulwark-sec/bulwark/internal/track"
	"github.com/bulwark-sec/bulwark/pkg/shared"
	"github.com/bulwark-sec/bulwark/pkg/shared/config"
	"github.com/bulwark-sec/bulwark/pkg/shared/errors"
)

// RunOptionsUpload holds the arguments of the upload command.
type RunOptionsUpload struct {
	ArchivePath string   `json:"archive_path,omitempty"`
	Selected    []string `json:"selected,omitempty"`
	All         bool     `json:"all,omitempty"`
	ListOnly    bool     `json:"list_only,omitempty"`
	OutputPath  string   `json:"output_path,omitempty"`
	SARIF       bool     `json:"sarif,omitempty"`
}

var (
	AppConfig     *config.Config
	logger        hclog.Logger
	uploadOptions RunOptionsUpload

	exampleUploadUsage = `  # List the contract files found in an archive
  bulwark upload --archive ./contracts.zip --list

  # Analyze every discovered file and keep a SARIF copy of the report
  bulwark upload --archive ./contracts.zip --all --sarif

  # Analyze selected files and write the report artifacts to a folder
  bulwark upload --archive ./contracts.tar.gz --select programs/vault/src/lib.rs -o ./reports`
)

// UploadCmd runs the direct-upload flow.
var UploadCmd = &cobra.Command{
	Use:                   "upload --archive PATH {--list | --all | --select PATH...} [--output/-o DIR] [--sarif]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleUploadUsage,
	Short:                 "Upload an archive of contract sources and analyze the selected files",
	RunE:                  runUploadCommand,
}

// Init initializes the global configuration and logger.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runUploadCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	if err := validateUploadArgs(&uploadOptions, args); err != nil {
		logger.Error("invalid upload arguments", "error", err)
		return errors.NewCommandError(uploadOptions, fmt.Errorf("invalid upload arguments: %w", err), 1)
	}

	ctx := cmd.Context()
	client, err := backend.New(AppConfig, logger)
	if err != nil {
		return errors.NewCommandError(uploadOptions, fmt.Errorf("failed to initialize backend client: %w", err), 2)
	}

	uploadFlow := flow.NewUploadFlow(client, logger, track.New(logger))
	if err := uploadFlow.ChooseSource(); err != nil {
		return errors.NewCommandError(uploadOptions, err, 2)
	}

	archive := shared.Archive{Path: uploadOptions.ArchivePath}
	logger.Info("uploading archive for discovery", "archive", archive.Name())
	if err := uploadFlow.StartFileSelect(ctx, archive); err != nil {
		logger.Error("file discovery failed", "error", err)
		return errors.NewCommandError(uploadOptions, fmt.Errorf("file discovery failed: %s", uploadFlow.Err()), cmdutil.ExitCode(err))
	}

	out := cmd.OutOrStdout()
	if err := report.RenderFiles(out, uploadFlow.ContractFiles()); err != nil {
		return err
	}
	if uploadOptions.ListOnly {
		return nil
	}

	selected, err := cmdutil.ResolveSelection(uploadFlow.ContractFiles(), uploadOptions.Selected, cmdutil.DetermineMode(uploadOptions.All))
	if err != nil {
		return errors.NewCommandError(uploadOptions, fmt.Errorf("invalid selection: %w", err), 1)
	}

	logger.Info("running analysis", "files", len(selected))
	if err := uploadFlow.RunAnalysis(ctx, selected); err != nil {
		logger.Error("analysis failed", "error", err)
		return errors.NewCommandError(uploadOptions, fmt.Errorf("analysis failed: %s", uploadFlow.Err()), 2)
	}

	viewer, err := report.NewViewer(report.DefaultViewerHistory)
	if err != nil {
		return err
	}
	opened, err := flow.OpenResults(uploadFlow, viewer)
	if err != nil {
		return errors.NewCommandError(uploadOptions, err, 2)
	}
	uploadFlow.ResetFlow()

	if err := report.Render(out, opened); err != nil {
		return err
	}

	saved, err := cmdutil.PersistReport(ctx, cmdutil.WithOutputFolder(AppConfig, uploadOptions.OutputPath), logger, "upload", opened, uploadOptions.SARIF)
	if err != nil {
		logger.Error("failed to write artifact", "error", err)
		return errors.NewCommandError(uploadOptions, fmt.Errorf("failed to write artifact: %w", err), 2)
	}
	for _, p := range saved {
		fmt.Fprintf(os.Stderr, "Saved %s\n", p)
	}
	logger.Info("upload command completed successfully", "report", opened.ID())
	return nil
}

func init() {
	UploadCmd.Flags().StringVarP(&uploadOptions.ArchivePath, "archive", "a", "", "Path to a .zip, .tar, .tar.gz or .tgz archive with contract sources.")
	UploadCmd.Flags().StringSliceVarP(&uploadOptions.Selected, "select", "s", nil, "Path of a discovered file to analyze. Can be repeated.")
	UploadCmd.Flags().BoolVar(&uploadOptions.All, "all", false, "Analyze every discovered contract file.")
	UploadCmd.Flags().BoolVar(&uploadOptions.ListOnly, "list", false, "Only list the discovered contract files.")
	UploadCmd.Flags().StringVarP(&uploadOptions.OutputPath, "output", "o", "", "Folder where report artifacts are written (default is the artifacts folder).")
	UploadCmd.Flags().BoolVar(&uploadOptions.SARIF, "sarif", false, "Also write the report in SARIF format.")
	UploadCmd.Flags().BoolP("help", "h", false, "Show help for the upload command.")
}
