package flow

import (
	"context"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bulwark-sec/bulwark/internal/report"
)

func TestOpenResultsSurvivesReset(t *testing.T) {
	b := &fakeUploadBackend{
		discover: discovered("a.rs"),
		analysis: &report.StaticAnalysisReport{ID: "r1", Findings: []report.Finding{{ID: "f1", Severity: "high"}}},
	}
	f := NewUploadFlow(b, hclog.NewNullLogger(), nil)
	ctx := context.Background()
	require.NoError(t, f.StartFileSelect(ctx, testArchive(t)))
	require.NoError(t, f.RunAnalysis(ctx, []string{"a.rs"}))

	viewer, err := report.NewViewer(4)
	require.NoError(t, err)

	opened, err := OpenResults(f, viewer)
	require.NoError(t, err)
	assert.Equal(t, "r1", opened.ID())

	f.ResetFlow()
	b.analysis.Findings[0].Severity = "low"

	current, ok := viewer.Current()
	require.True(t, ok)
	assert.Equal(t, "high", current.StaticAnalysis.Findings[0].Severity)
}

func TestOpenResultsWithoutReport(t *testing.T) {
	viewer, err := report.NewViewer(0)
	require.NoError(t, err)

	_, err = OpenResults(NewGitHubFlow(&fakeAnalyzer{}, hclog.NewNullLogger(), nil), viewer)
	assert.ErrorIs(t, err, ErrPrecondition)
}
