package backend

import (
	"context"
	"errors"
	"net/http"

	"github.com/bulwark-sec/bulwark/internal/report"
	"github.com/bulwark-sec/bulwark/pkg/shared"
	bwerrors "github.com/bulwark-sec/bulwark/pkg/shared/errors"
)

// DiscoverFiles uploads an archive and returns the contract files found inside it.
func (c *Client) DiscoverFiles(ctx context.Context, archive shared.Archive) (*DiscoverResult, error) {
	const op = "discover files"
	if err := shared.ValidateArchive(archive); err != nil {
		return nil, bwerrors.NewInputError("archive", err.Error())
	}

	resp, err := c.upload(ctx, op, "/uploads/discover-files", "file", archive.Path)
	if err != nil {
		return nil, err
	}

	var out discoverResponse
	if err := unmarshalResponse(op, resp, &out); err != nil {
		return nil, err
	}
	if out.ExtractedPath == "" {
		return nil, &bwerrors.ResponseShapeError{Op: op, Reason: "missing extractedPath"}
	}

	files := make([]shared.ContractFile, 0, len(out.ContractFiles))
	for _, p := range out.ContractFiles {
		f := shared.NewContractFile(p, lookupSize(out.Contents, p))
		if err := f.Validate(); err != nil {
			return nil, &bwerrors.ResponseShapeError{Op: op, Reason: err.Error()}
		}
		files = append(files, f)
	}

	c.Logger.Debug("discovered contract files", "count", len(files), "extractedPath", out.ExtractedPath)
	return &DiscoverResult{ExtractedPath: out.ExtractedPath, ContractFiles: files}, nil
}

// AnalyzeUploadedContracts runs static analysis on files of a previously discovered upload.
// A 404 or 410 from the service means the extracted upload is gone.
func (c *Client) AnalyzeUploadedContracts(ctx context.Context, extractedPath string, selectedFiles []string) (*report.StaticAnalysisReport, error) {
	const op = "analyze uploaded contracts"
	if extractedPath == "" {
		return nil, bwerrors.NewInputError("extracted path", "must not be empty")
	}
	if len(selectedFiles) == 0 {
		return nil, bwerrors.NewInputError("selected files", "at least one file must be selected")
	}

	body := analyzeUploadedRequest{
		ExtractedPath:   extractedPath,
		SelectedFiles:   selectedFiles,
		AnalysisOptions: DefaultAnalysisOptions(),
	}
	resp, err := c.post(ctx, op, "/static-analysis/analyze-uploaded-contract", body)
	if err != nil {
		var be *bwerrors.BackendError
		if errors.As(err, &be) && (be.StatusCode == http.StatusNotFound || be.StatusCode == http.StatusGone) {
			return nil, &bwerrors.UploadExpiredError{ExtractedPath: extractedPath}
		}
		return nil, err
	}

	var out report.StaticAnalysisReport
	if err := unmarshalResponse(op, resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// lookupSize walks the extracted tree for the file at p. Unknown files report size 0.
func lookupSize(items []ContentItem, p string) int64 {
	if item := findContent(items, p); item != nil {
		return item.Size
	}
	return 0
}

func findContent(items []ContentItem, p string) *ContentItem {
	for i := range items {
		if items[i].Path == p && items[i].Type == "file" {
			return &items[i]
		}
		if found := findContent(items[i].Contents, p); found != nil {
			return found
		}
	}
	return nil
}
