package reports

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/bulwark-sec/bulwark/internal/backend"
	cmdutil "github.com/bulwark-sec/bulwark/internal/cmd"
	"github.com/bulwark-sec/bulwark/internal/report"
	"github.com/bulwark-sec/bulwark/pkg/shared"
	"github.com/bulwark-sec/bulwark/pkg/shared/config"
	"github.com/bulwark-sec/bulwark/pkg/shared/errors"
	"github.com/bulwark-sec/bulwark/pkg/shared/files"
)

// RunOptionsGet holds the arguments of reports get.
type RunOptionsGet struct {
	IDs   []string `json:"ids,omitempty"`
	JSON  bool     `json:"json,omitempty"`
	HTML  bool     `json:"html,omitempty"`
	Save  bool     `json:"save,omitempty"`
	SARIF bool     `json:"sarif,omitempty"`
}

// RunOptionsExport holds the arguments of reports export.
type RunOptionsExport struct {
	IDs        []string `json:"ids,omitempty"`
	Factors    []string `json:"factors,omitempty"`
	OutputPath string   `json:"output_path,omitempty"`
}

var (
	AppConfig     *config.Config
	logger        hclog.Logger
	getOptions    RunOptionsGet
	exportOptions RunOptionsExport

	exampleExportUsage = `  # Export every stored report with every factor
  bulwark reports export

  # Export two reports restricted to a few factors into a folder
  bulwark reports export --id 9f1c --id 77ab --factor critical_count --factor total_findings -o ./exports`
)

// ReportsCmd groups the commands working on stored static-analysis reports.
var ReportsCmd = &cobra.Command{
	Use:                   "reports [command]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Browse and export stored static-analysis reports",
}

// ListCmd lists every stored report.
var ListCmd = &cobra.Command{
	Use:                   "list",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Args:                  cobra.NoArgs,
	Short:                 "List stored reports",
	RunE:                  runListCommand,
}

// GetCmd shows stored reports by id.
var GetCmd = &cobra.Command{
	Use:                   "get ID... [--json | --html] [--save [--sarif]]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Show stored reports",
	RunE:                  runGetCommand,
}

// FactorsCmd lists the factors available for export.
var FactorsCmd = &cobra.Command{
	Use:                   "factors",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Args:                  cobra.NoArgs,
	Short:                 "List the factors available for CSV export",
	RunE:                  runFactorsCommand,
}

// ExportCmd exports reports as CSV.
var ExportCmd = &cobra.Command{
	Use:                   "export [--id ID]... [--factor NAME]... [--output/-o PATH]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleExportUsage,
	Short:                 "Export reports to a CSV file",
	RunE:                  runExportCommand,
}

// Init initializes the global configuration and logger.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runListCommand(cmd *cobra.Command, args []string) error {
	client, err := backend.New(AppConfig, logger)
	if err != nil {
		return errors.NewCommandError(nil, fmt.Errorf("failed to initialize backend client: %w", err), 2)
	}

	all, err := client.GetAllReports(cmd.Context())
	if err != nil {
		logger.Error("failed to list reports", "error", err)
		return errors.NewCommandError(nil, fmt.Errorf("failed to list reports: %s", errors.UserMessage(err)), 2)
	}
	return report.RenderReportList(cmd.OutOrStdout(), all)
}

func runGetCommand(cmd *cobra.Command, args []string) error {
	getOptions.IDs = args
	if err := validateGetArgs(&getOptions); err != nil {
		logger.Error("invalid get arguments", "error", err)
		return errors.NewCommandError(getOptions, fmt.Errorf("invalid get arguments: %w", err), 1)
	}

	ctx := cmd.Context()
	client, err := backend.New(AppConfig, logger)
	if err != nil {
		return errors.NewCommandError(getOptions, fmt.Errorf("failed to initialize backend client: %w", err), 2)
	}
	viewer, err := report.NewViewer(report.DefaultViewerHistory)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, id := range getOptions.IDs {
		opened, err := openReport(ctx, client, viewer, id)
		if err != nil {
			logger.Error("failed to get report", "id", id, "error", err)
			return errors.NewCommandError(getOptions, fmt.Errorf("failed to get report %q: %s", id, errors.UserMessage(err)), cmdutil.ExitCode(err))
		}

		switch {
		case getOptions.JSON:
			err = shared.WriteResultAsJSON(out, opened.StaticAnalysis)
		case getOptions.HTML:
			err = report.RenderHTML(out, opened)
		default:
			err = report.Render(out, opened)
		}
		if err != nil {
			return err
		}

		if getOptions.Save {
			saved, err := cmdutil.PersistReport(ctx, AppConfig, logger, "reports", opened, getOptions.SARIF)
			if err != nil {
				return errors.NewCommandError(getOptions, fmt.Errorf("failed to write artifact: %w", err), 2)
			}
			for _, p := range saved {
				fmt.Fprintf(os.Stderr, "Saved %s\n", p)
			}
		}
	}
	logger.Debug("reports opened", "recent", viewer.Recent())
	return nil
}

func runFactorsCommand(cmd *cobra.Command, args []string) error {
	client, err := backend.New(AppConfig, logger)
	if err != nil {
		return errors.NewCommandError(nil, fmt.Errorf("failed to initialize backend client: %w", err), 2)
	}

	groups, err := client.GetAvailableFactors(cmd.Context())
	if err != nil {
		logger.Error("failed to get factors", "error", err)
		return errors.NewCommandError(nil, fmt.Errorf("failed to get factors: %s", errors.UserMessage(err)), 2)
	}
	return report.RenderFactors(cmd.OutOrStdout(), groups)
}

func runExportCommand(cmd *cobra.Command, args []string) error {
	if err := validateExportArgs(&exportOptions, args); err != nil {
		logger.Error("invalid export arguments", "error", err)
		return errors.NewCommandError(exportOptions, fmt.Errorf("invalid export arguments: %w", err), 1)
	}

	client, err := backend.New(AppConfig, logger)
	if err != nil {
		return errors.NewCommandError(exportOptions, fmt.Errorf("failed to initialize backend client: %w", err), 2)
	}

	result, err := client.ExportReportsCSV(cmd.Context(), exportOptions.IDs, exportOptions.Factors)
	if err != nil {
		logger.Error("export failed", "error", err)
		return errors.NewCommandError(exportOptions, fmt.Errorf("export failed: %s", errors.UserMessage(err)), 2)
	}

	target, err := exportTarget(exportOptions.OutputPath, result.Filename)
	if err != nil {
		return errors.NewCommandError(exportOptions, err, 2)
	}
	if err := files.WriteFile(target, result.Data); err != nil {
		logger.Error("failed to write export", "path", target, "error", err)
		return errors.NewCommandError(exportOptions, fmt.Errorf("failed to write export: %w", err), 2)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bytes to %s\n", len(result.Data), target)
	logger.Info("reports export completed successfully", "path", target)
	return nil
}

// exportTarget resolves where the exported CSV is written. The artifacts home is used
// when output is empty, and a folder output receives the server-provided file name.
func exportTarget(output, filename string) (string, error) {
	if output == "" {
		output = config.GetArtifactsHome(AppConfig)
	}
	fullPath, _, err := files.DetermineFileFullPath(output, filename)
	if err != nil {
		return "", err
	}
	return fullPath, nil
}

func init() {
	GetCmd.Flags().BoolVar(&getOptions.JSON, "json", false, "Print the raw report as JSON.")
	GetCmd.Flags().BoolVar(&getOptions.HTML, "html", false, "Print the report as a standalone HTML page.")
	GetCmd.Flags().BoolVar(&getOptions.Save, "save", false, "Save each report as an artifact.")
	GetCmd.Flags().BoolVar(&getOptions.SARIF, "sarif", false, "Also save each report in SARIF format. Requires --save.")

	ExportCmd.Flags().StringSliceVar(&exportOptions.IDs, "id", nil, "Id of a report to export. Can be repeated. Defaults to every report.")
	ExportCmd.Flags().StringSliceVar(&exportOptions.Factors, "factor", nil, "Factor to include. Can be repeated. Defaults to every factor.")
	ExportCmd.Flags().StringVarP(&exportOptions.OutputPath, "output", "o", "", "File or folder for the CSV export (default is the artifacts folder).")

	ReportsCmd.AddCommand(ListCmd)
	ReportsCmd.AddCommand(GetCmd)
	ReportsCmd.AddCommand(FactorsCmd)
	ReportsCmd.AddCommand(ExportCmd)
}
