package artifacts

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/bulwark-sec/bulwark/pkg/shared/config"
	"github.com/bulwark-sec/bulwark/pkg/shared/files"
)

// Extension marks files written by bulwark commands.
const Extension = ".bulwark-artifact"

// Name builds an artifact name.
// Example: upload_3f2a9c_2025-09-15T08:28:46Z.bulwark-artifact.
func Name(command, id string, t time.Time) string {
	if id == "" {
		id = "none"
	}
	return fmt.Sprintf("%s_%s_%s%s", command, id, t.UTC().Format(time.RFC3339), Extension)
}

// SaveJSON writes v to <artifacts>/<name>.json and returns the full path.
func SaveJSON(cfg *config.Config, logger hclog.Logger, command, id string, v interface{}) (string, error) {
	path := filepath.Join(config.GetArtifactsHome(cfg), Name(command, id, time.Now())+".json")

	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return path, fmt.Errorf("error marshaling the result data: %w", err)
	}
	if err := files.WriteFile(path, data); err != nil {
		return path, fmt.Errorf("error writing artifact: %w", err)
	}
	logger.Info("artifact saved to file", "path", path)
	return path, nil
}

// SaveSARIF writes r to <artifacts>/<name>.sarif and returns the full path.
func SaveSARIF(cfg *config.Config, logger hclog.Logger, command, id string, r *sarif.Report) (string, error) {
	path := filepath.Join(config.GetArtifactsHome(cfg), Name(command, id, time.Now())+".sarif")
	if r == nil {
		return path, fmt.Errorf("sarif report is nil")
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return path, fmt.Errorf("error marshaling the sarif report: %w", err)
	}
	if err := files.WriteFile(path, data); err != nil {
		return path, fmt.Errorf("error writing sarif artifact: %w", err)
	}
	logger.Info("sarif artifact saved to file", "path", path)
	return path, nil
}
