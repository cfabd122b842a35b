// Package cmd holds helpers shared by the bulwark subcommands.
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/bulwark-sec/bulwark/internal/report"
	"github.com/bulwark-sec/bulwark/pkg/shared"
	"github.com/bulwark-sec/bulwark/pkg/shared/artifacts"
	"github.com/bulwark-sec/bulwark/pkg/shared/config"
	bwerrors "github.com/bulwark-sec/bulwark/pkg/shared/errors"
)

// Selection mode constants
const (
	ModeAll      = "all"
	ModeExplicit = "explicit"
)

// DetermineMode determines the selection mode based on the provided flags.
func DetermineMode(all bool) string {
	if all {
		return ModeAll
	}
	return ModeExplicit
}

// ResolveSelection returns the paths to analyze: every discovered file in ModeAll,
// otherwise the explicit selection after checking it against the discovered files.
func ResolveSelection(files []shared.ContractFile, selected []string, mode string) ([]string, error) {
	switch mode {
	case ModeAll:
		if len(files) == 0 {
			return nil, fmt.Errorf("no contract files to select")
		}
		return shared.ContractPaths(files), nil
	case ModeExplicit:
		if err := shared.ValidateSelection(files, selected); err != nil {
			return nil, err
		}
		return selected, nil
	default:
		return nil, fmt.Errorf("invalid selection mode: %q", mode)
	}
}

// PersistReport saves r as a JSON artifact, plus a SARIF artifact for static-analysis
// reports when withSARIF is set, and copies them to S3 when enabled.
func PersistReport(ctx context.Context, cfg *config.Config, logger hclog.Logger, command string, r report.Report, withSARIF bool) ([]string, error) {
	var saved []string

	p, err := artifacts.SaveJSON(cfg, logger, command, r.ID(), r)
	if err != nil {
		return saved, err
	}
	saved = append(saved, p)

	if withSARIF && r.Kind == report.KindStaticAnalysis {
		sarifReport, err := report.ToSARIF(r.StaticAnalysis)
		if err != nil {
			return saved, err
		}
		p, err := artifacts.SaveSARIF(cfg, logger, command, r.ID(), sarifReport)
		if err != nil {
			return saved, err
		}
		saved = append(saved, p)
	}

	uploader, err := artifacts.NewS3Uploader(cfg, logger)
	if err != nil {
		return saved, err
	}
	if uploader == nil {
		return saved, nil
	}
	for _, p := range saved {
		if _, err := uploader.Upload(ctx, p); err != nil {
			return saved, err
		}
	}
	return saved, nil
}

// ExitCode maps malformed input to 1 and every other failure to 2.
func ExitCode(err error) int {
	var inputErr *bwerrors.InputError
	if errors.As(err, &inputErr) {
		return 1
	}
	return 2
}

// WithOutputFolder returns cfg with the artifacts folder replaced by output, when set.
func WithOutputFolder(cfg *config.Config, output string) *config.Config {
	if output == "" {
		return cfg
	}
	cp := *cfg
	cp.Artifacts.Folder = output
	return &cp
}
