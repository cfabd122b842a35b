package health

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/bulwark-sec/bulwark/internal/backend"
	"github.com/bulwark-sec/bulwark/pkg/shared"
	"github.com/bulwark-sec/bulwark/pkg/shared/config"
	"github.com/bulwark-sec/bulwark/pkg/shared/errors"
)

var (
	AppConfig *config.Config
	logger    hclog.Logger
)

// HealthCmd probes the audit service.
var HealthCmd = &cobra.Command{
	Use:                   "health",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Args:                  cobra.NoArgs,
	Short:                 "Check that the audit service is reachable",
	RunE:                  runHealthCommand,
}

// Init initializes the global configuration and logger.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runHealthCommand(cmd *cobra.Command, args []string) error {
	client, err := backend.New(AppConfig, logger)
	if err != nil {
		return errors.NewCommandError(nil, fmt.Errorf("failed to initialize backend client: %w", err), 2)
	}

	status, err := client.Health(cmd.Context())
	if err != nil {
		logger.Error("health check failed", "url", AppConfig.Backend.URL, "error", err)
		return errors.NewCommandError(nil, fmt.Errorf("health check failed: %s", errors.UserMessage(err)), 2)
	}

	logger.Info("audit service is reachable", "url", AppConfig.Backend.URL)
	return shared.PrintResultAsJSON(status)
}
