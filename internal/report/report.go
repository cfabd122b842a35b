// Package report models the analysis results returned by the audit service.
//
// A Report is a tagged union over the two result kinds the service produces: a
// pre-audit scoping report and a static-analysis report. Exactly one payload is set,
// selected by Kind.
package report

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind discriminates the report payload.
type Kind string

const (
	KindScoping        Kind = "scoping"
	KindStaticAnalysis Kind = "static-analysis"
)

// Severity levels used by static-analysis findings.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
	SeverityInfo     = "info"
)

// Report is an immutable analysis result.
type Report struct {
	Kind           Kind                  `json:"kind"`
	Scoping        *ScopingReport        `json:"scoping,omitempty"`
	StaticAnalysis *StaticAnalysisReport `json:"static_analysis,omitempty"`
}

// NewScoping wraps a scoping report.
func NewScoping(r *ScopingReport) Report {
	return Report{Kind: KindScoping, Scoping: r}
}

// NewStaticAnalysis wraps a static-analysis report.
func NewStaticAnalysis(r *StaticAnalysisReport) Report {
	return Report{Kind: KindStaticAnalysis, StaticAnalysis: r}
}

// Validate checks that exactly the payload named by Kind is set.
func (r Report) Validate() error {
	switch r.Kind {
	case KindScoping:
		if r.Scoping == nil || r.StaticAnalysis != nil {
			return fmt.Errorf("scoping report must carry only a scoping payload")
		}
	case KindStaticAnalysis:
		if r.StaticAnalysis == nil || r.Scoping != nil {
			return fmt.Errorf("static-analysis report must carry only a static-analysis payload")
		}
	default:
		return fmt.Errorf("unknown report kind %q", r.Kind)
	}
	return nil
}

// IsZero reports whether no report is held.
func (r Report) IsZero() bool {
	return r.Kind == "" && r.Scoping == nil && r.StaticAnalysis == nil
}

// ID returns the backend identifier of the payload, if any.
func (r Report) ID() string {
	switch r.Kind {
	case KindScoping:
		if r.Scoping != nil {
			return r.Scoping.ID
		}
	case KindStaticAnalysis:
		if r.StaticAnalysis != nil {
			return r.StaticAnalysis.ID
		}
	}
	return ""
}

// Clone returns a deep copy of r.
func (r Report) Clone() (Report, error) {
	if r.IsZero() {
		return Report{}, nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return Report{}, fmt.Errorf("failed to copy report: %w", err)
	}
	var out Report
	if err := json.Unmarshal(data, &out); err != nil {
		return Report{}, fmt.Errorf("failed to copy report: %w", err)
	}
	return out, nil
}

// StaticAnalysisReport is produced by the static-analysis endpoints.
type StaticAnalysisReport struct {
	ID            string          `json:"id"`
	RepositoryURL string          `json:"repositoryUrl,omitempty"`
	ContractName  string          `json:"contractName,omitempty"`
	Language      string          `json:"language,omitempty"`
	Status        string          `json:"status,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	AnalyzedFiles []string        `json:"analyzedFiles,omitempty"`
	Summary       Summary         `json:"summary"`
	Findings      []Finding       `json:"findings"`
	Metrics       json.RawMessage `json:"metrics,omitempty"`
}

// Summary counts findings by severity.
type Summary struct {
	TotalFindings int     `json:"totalFindings"`
	Critical      int     `json:"critical"`
	High          int     `json:"high"`
	Medium        int     `json:"medium"`
	Low           int     `json:"low"`
	Info          int     `json:"info"`
	RiskScore     float64 `json:"riskScore,omitempty"`
}

// Finding is a single static-analysis issue.
type Finding struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Severity       string `json:"severity"`
	Category       string `json:"category,omitempty"`
	File           string `json:"file"`
	Line           int    `json:"line,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
}

// ScopingReport is the pre-audit scoping report.
type ScopingReport struct {
	ID              string          `json:"id"`
	RepositoryURL   string          `json:"repositoryUrl"`
	Summary         string          `json:"summary"`
	Complexity      string          `json:"complexity,omitempty"`
	TotalFiles      int             `json:"totalFiles"`
	TotalLines      int             `json:"totalLines"`
	EstimatedHours  float64         `json:"estimatedHours,omitempty"`
	EstimatedCost   float64         `json:"estimatedCost,omitempty"`
	Recommendations []string        `json:"recommendations,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	Details         json.RawMessage `json:"details,omitempty"`
}

// CountBySeverity recomputes the summary counters from the findings.
func CountBySeverity(findings []Finding) Summary {
	var s Summary
	for _, f := range findings {
		s.TotalFindings++
		switch NormalizeSeverity(f.Severity) {
		case SeverityCritical:
			s.Critical++
		case SeverityHigh:
			s.High++
		case SeverityMedium:
			s.Medium++
		case SeverityLow:
			s.Low++
		default:
			s.Info++
		}
	}
	return s
}
