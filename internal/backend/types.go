package backend

import (
	"github.com/bulwark-sec/bulwark/pkg/shared"
)

// GenerateReportRequest asks for a pre-audit scoping report.
type GenerateReportRequest struct {
	RepositoryURL string   `json:"repositoryUrl"`
	AccessToken   string   `json:"accessToken,omitempty"`
	Branch        string   `json:"branch,omitempty"`
	SelectedFiles []string `json:"selectedFiles,omitempty"`
}

// AnalyzeRustContractRequest asks for static analysis of files in a GitHub repository.
type AnalyzeRustContractRequest struct {
	RepositoryURL string   `json:"repositoryUrl"`
	RepositoryID  int64    `json:"repositoryId,omitempty"`
	FullName      string   `json:"fullName,omitempty"`
	SelectedFiles []string `json:"selectedFiles"`
	AccessToken   string   `json:"accessToken,omitempty"`
}

// AnalysisOptions tunes the uploaded-contract analysis.
type AnalysisOptions struct {
	IncludeTests        bool   `json:"includeTests"`
	IncludeDependencies bool   `json:"includeDependencies"`
	Depth               string `json:"depth"`
}

// DefaultAnalysisOptions matches the options the service expects for uploads.
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		IncludeTests:        false,
		IncludeDependencies: true,
		Depth:               "deep",
	}
}

type analyzeUploadedRequest struct {
	ExtractedPath   string          `json:"extractedPath"`
	SelectedFiles   []string        `json:"selectedFiles"`
	AnalysisOptions AnalysisOptions `json:"analysisOptions"`
}

// ContentItem is a node of the extracted archive tree returned by discovery.
type ContentItem struct {
	Name     string        `json:"name"`
	Path     string        `json:"path"`
	Type     string        `json:"type"`
	Size     int64         `json:"size"`
	Contents []ContentItem `json:"contents,omitempty"`
}

type discoverResponse struct {
	ExtractedPath string        `json:"extractedPath"`
	ContractFiles []string      `json:"contract_files"`
	Contents      []ContentItem `json:"contents"`
}

// DiscoverResult is the outcome of uploading an archive for discovery.
type DiscoverResult struct {
	ExtractedPath string
	ContractFiles []shared.ContractFile
}

// ExportResult is a CSV export ready to be written to disk.
type ExportResult struct {
	Filename string
	Data     []byte
}

// TokenValidation is the response of the token validation endpoint.
type TokenValidation struct {
	Valid bool               `json:"valid"`
	User  *shared.GitHubUser `json:"user,omitempty"`
	Error string             `json:"error,omitempty"`
}
