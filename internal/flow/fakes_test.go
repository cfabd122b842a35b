package flow

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bulwark-sec/bulwark/internal/backend"
	"github.com/bulwark-sec/bulwark/internal/report"
	"github.com/bulwark-sec/bulwark/pkg/shared"
)

type fakeUploadBackend struct {
	discover    *backend.DiscoverResult
	discoverErr error
	analysis    *report.StaticAnalysisReport
	analysisErr error
	release     chan struct{}

	discoverCalls int
	gotPath       string
	gotSelected   []string
}

func (f *fakeUploadBackend) DiscoverFiles(ctx context.Context, archive shared.Archive) (*backend.DiscoverResult, error) {
	f.discoverCalls++
	return f.discover, f.discoverErr
}

func (f *fakeUploadBackend) AnalyzeUploadedContracts(ctx context.Context, extractedPath string, selected []string) (*report.StaticAnalysisReport, error) {
	f.gotPath = extractedPath
	f.gotSelected = selected
	if f.release != nil {
		<-f.release
	}
	return f.analysis, f.analysisErr
}

type fakeAnalyzer struct {
	res     *report.StaticAnalysisReport
	err     error
	release chan struct{}
	got     backend.AnalyzeRustContractRequest
}

func (f *fakeAnalyzer) AnalyzeRustContract(ctx context.Context, req backend.AnalyzeRustContractRequest) (*report.StaticAnalysisReport, error) {
	f.got = req
	if f.release != nil {
		<-f.release
	}
	return f.res, f.err
}

func testArchive(t *testing.T) shared.Archive {
	t.Helper()
	p := filepath.Join(t.TempDir(), "src.zip")
	require.NoError(t, os.WriteFile(p, []byte("PK"), 0o600))
	return shared.Archive{Path: p}
}

func discovered(paths ...string) *backend.DiscoverResult {
	files := make([]shared.ContractFile, 0, len(paths))
	for _, p := range paths {
		files = append(files, shared.NewContractFile(p, 10))
	}
	return &backend.DiscoverResult{ExtractedPath: "/tmp/extract-1", ContractFiles: files}
}
