package report

import (
	"strings"

	"github.com/fatih/color"
)

var (
	criticalColor = color.New(color.FgRed, color.Bold)
	highColor     = color.New(color.FgYellow, color.Bold)
	mediumColor   = color.New(color.FgYellow)
	lowColor      = color.New(color.FgGreen)
	infoColor     = color.New(color.FgHiBlack)
)

// NormalizeSeverity lowercases severity and maps unknown values to info.
func NormalizeSeverity(severity string) string {
	s := strings.ToLower(strings.TrimSpace(severity))
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return s
	case "informational", "note":
		return SeverityInfo
	case "moderate":
		return SeverityMedium
	default:
		return SeverityInfo
	}
}

// severityRank orders severities from most to least severe.
func severityRank(severity string) int {
	switch NormalizeSeverity(severity) {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	default:
		return 4
	}
}

// colorSeverity returns the upper-cased severity label with its console color.
func colorSeverity(severity string) string {
	s := NormalizeSeverity(severity)
	label := strings.ToUpper(s)
	switch s {
	case SeverityCritical:
		return criticalColor.Sprint(label)
	case SeverityHigh:
		return highColor.Sprint(label)
	case SeverityMedium:
		return mediumColor.Sprint(label)
	case SeverityLow:
		return lowColor.Sprint(label)
	default:
		return infoColor.Sprint(label)
	}
}

// toSarifLevel maps a finding severity onto a SARIF result level.
func toSarifLevel(severity string) string {
	switch NormalizeSeverity(severity) {
	case SeverityCritical, SeverityHigh:
		return "error"
	case SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}
