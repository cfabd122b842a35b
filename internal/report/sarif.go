package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"
)

const (
	sarifToolName = "Bulwark Static Analyzer"
	sarifToolURI  = "https://github.com/bulwark-sec/bulwark"
)

// ToSARIF converts a static-analysis report into a SARIF 2.1.0 log.
func ToSARIF(r *StaticAnalysisReport) (*sarif.Report, error) {
	if r == nil {
		return nil, fmt.Errorf("static-analysis report is nil")
	}

	reportSarif, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(sarifToolName, sarifToolURI)
	for _, finding := range r.Findings {
		ruleID := finding.ID
		if ruleID == "" {
			ruleID = ruleIDFromTitle(finding.Title)
		}

		rule := run.AddRule(ruleID).
			WithDescription(finding.Title).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{
				Level: toSarifLevel(finding.Severity),
			})
		if finding.Recommendation != "" {
			rule.WithHelp(sarif.NewMultiformatMessageString(finding.Recommendation))
		}

		region := sarif.NewRegion()
		if finding.Line > 0 {
			region.WithStartLine(finding.Line)
		}
		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(finding.File)).
				WithRegion(region),
		)

		message := finding.Description
		if message == "" {
			message = finding.Title
		}
		result := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(message)).
			WithLevel(toSarifLevel(finding.Severity)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}
	reportSarif.AddRun(run)

	return reportSarif, nil
}

// WriteSARIF converts r and writes it to w as indented JSON.
func WriteSARIF(w io.Writer, r *StaticAnalysisReport) error {
	reportSarif, err := ToSARIF(r)
	if err != nil {
		return err
	}
	return reportSarif.PrettyWrite(w)
}

func ruleIDFromTitle(title string) string {
	id := strings.ToLower(strings.TrimSpace(title))
	id = strings.Join(strings.Fields(id), "-")
	if id == "" {
		return "bulwark-finding"
	}
	return id
}
