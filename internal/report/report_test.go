package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStatic() *StaticAnalysisReport {
	return &StaticAnalysisReport{
		ID:            "rep-1",
		RepositoryURL: "https://github.com/acme/widget",
		CreatedAt:     time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		AnalyzedFiles: []string{"src/lib.rs"},
		Findings: []Finding{
			{ID: "BW-001", Title: "Missing signer check", Severity: "High", File: "src/lib.rs", Line: 42, Recommendation: "Require the authority to sign."},
			{ID: "BW-002", Title: "Unchecked arithmetic", Severity: "medium", File: "src/lib.rs", Line: 77},
			{Title: "Debug log left in", Severity: "info", File: "src/main.rs"},
		},
	}
}

func TestReportValidate(t *testing.T) {
	tests := []struct {
		name    string
		report  Report
		wantErr bool
	}{
		{name: "static", report: NewStaticAnalysis(sampleStatic())},
		{name: "scoping", report: NewScoping(&ScopingReport{ID: "scope-1"})},
		{name: "static without payload", report: Report{Kind: KindStaticAnalysis}, wantErr: true},
		{name: "both payloads", report: Report{Kind: KindScoping, Scoping: &ScopingReport{}, StaticAnalysis: &StaticAnalysisReport{}}, wantErr: true},
		{name: "unknown kind", report: Report{Kind: "other"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.report.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReportCloneIsIndependent(t *testing.T) {
	orig := NewStaticAnalysis(sampleStatic())
	cp, err := orig.Clone()
	require.NoError(t, err)
	assert.Equal(t, orig, cp)

	cp.StaticAnalysis.Findings[0].Title = "changed"
	assert.Equal(t, "Missing signer check", orig.StaticAnalysis.Findings[0].Title)
}

func TestCountBySeverity(t *testing.T) {
	s := CountBySeverity(sampleStatic().Findings)
	assert.Equal(t, Summary{TotalFindings: 3, High: 1, Medium: 1, Info: 1}, s)
}

func TestViewerHoldsIndependentCopies(t *testing.T) {
	v, err := NewViewer(2)
	require.NoError(t, err)

	_, ok := v.Current()
	assert.False(t, ok)

	static := sampleStatic()
	require.NoError(t, v.Open(NewStaticAnalysis(static)))
	static.Findings = nil

	current, ok := v.Current()
	require.True(t, ok)
	assert.Len(t, current.StaticAnalysis.Findings, 3)

	v.Close()
	_, ok = v.Current()
	assert.False(t, ok)

	kept, ok := v.Lookup("rep-1")
	require.True(t, ok)
	assert.Equal(t, "rep-1", kept.ID())
}

func TestViewerHistoryIsBounded(t *testing.T) {
	v, err := NewViewer(2)
	require.NoError(t, err)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, v.Open(NewScoping(&ScopingReport{ID: id})))
	}
	assert.Equal(t, []string{"b", "c"}, v.Recent())
	_, ok := v.Lookup("a")
	assert.False(t, ok)
}

func TestViewerShowReopensRemembered(t *testing.T) {
	v, err := NewViewer(2)
	require.NoError(t, err)
	require.NoError(t, v.Open(NewScoping(&ScopingReport{ID: "a"})))
	require.NoError(t, v.Open(NewScoping(&ScopingReport{ID: "b"})))

	shown, ok := v.Show("a")
	require.True(t, ok)
	assert.Equal(t, "a", shown.ID())
	current, ok := v.Current()
	require.True(t, ok)
	assert.Equal(t, "a", current.ID())

	_, ok = v.Show("missing")
	assert.False(t, ok)
	current, _ = v.Current()
	assert.Equal(t, "a", current.ID())
}

func TestViewerRejectsInvalidReport(t *testing.T) {
	v, err := NewViewer(0)
	require.NoError(t, err)
	assert.Error(t, v.Open(Report{Kind: KindStaticAnalysis}))
}

func TestToSARIF(t *testing.T) {
	rs, err := ToSARIF(sampleStatic())
	require.NoError(t, err)
	require.Len(t, rs.Runs, 1)

	run := rs.Runs[0]
	require.Len(t, run.Results, 3)
	assert.Equal(t, "BW-001", *run.Results[0].RuleID)
	assert.Equal(t, "error", *run.Results[0].Level)
	assert.Equal(t, "warning", *run.Results[1].Level)
	assert.Equal(t, "note", *run.Results[2].Level)
	assert.Equal(t, "debug-log-left-in", *run.Results[2].RuleID)

	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, sampleStatic()))
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "2.1.0", decoded["version"])

	_, err = ToSARIF(nil)
	assert.Error(t, err)
}

func TestRenderStaticAnalysis(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, NewStaticAnalysis(sampleStatic())))

	out := buf.String()
	assert.Contains(t, out, "Report rep-1 (https://github.com/acme/widget)")
	assert.Contains(t, out, "Findings: 3 total, 0 critical, 1 high, 1 medium, 0 low, 1 info")
	assert.Contains(t, out, "Missing signer check")
	assert.Contains(t, out, "src/lib.rs:42")
}

func TestRenderEmptyStaticAnalysis(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderStaticAnalysis(&buf, &StaticAnalysisReport{ID: "rep-2", ContractName: "vault"}))
	assert.Contains(t, buf.String(), "No findings.")
}

func TestNormalizeSeverity(t *testing.T) {
	assert.Equal(t, SeverityCritical, NormalizeSeverity(" CRITICAL "))
	assert.Equal(t, SeverityMedium, NormalizeSeverity("Moderate"))
	assert.Equal(t, SeverityInfo, NormalizeSeverity("weird"))
}
