package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bulwark-sec/bulwark/internal/report"
	bwerrors "github.com/bulwark-sec/bulwark/pkg/shared/errors"
)

// AnalyzeRustContract runs static analysis on files of a GitHub repository.
func (c *Client) AnalyzeRustContract(ctx context.Context, req AnalyzeRustContractRequest) (*report.StaticAnalysisReport, error) {
	const op = "analyze rust contract"
	resp, err := c.post(ctx, op, "/static-analysis/analyze-rust-contract", req)
	if err != nil {
		return nil, err
	}

	var out report.StaticAnalysisReport
	if err := unmarshalResponse(op, resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAllReports lists stored static-analysis reports.
func (c *Client) GetAllReports(ctx context.Context) ([]report.StaticAnalysisReport, error) {
	const op = "list reports"
	resp, err := c.post(ctx, op, "/static-analysis/reports", nil)
	if err != nil {
		return nil, err
	}

	var out []report.StaticAnalysisReport
	if err := unmarshalResponse(op, resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetReportByID fetches a single static-analysis report.
func (c *Client) GetReportByID(ctx context.Context, id string) (*report.StaticAnalysisReport, error) {
	const op = "get report"
	if strings.TrimSpace(id) == "" {
		return nil, bwerrors.NewInputError("report id", "must not be empty")
	}

	resp, err := c.get(ctx, op, "/static-analysis/reports/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var out report.StaticAnalysisReport
	if err := unmarshalResponse(op, resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAvailableFactors enumerates the metrics that can be exported to CSV.
func (c *Client) GetAvailableFactors(ctx context.Context) (map[string]report.FactorGroup, error) {
	const op = "list available factors"
	resp, err := c.post(ctx, op, "/static-analysis/available-factors", map[string]interface{}{})
	if err != nil {
		return nil, err
	}

	out := map[string]report.FactorGroup{}
	if err := unmarshalResponse(op, resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExportReportsCSV exports reports to CSV. Empty ids or factors select everything.
// The service answers with {csv, filename} JSON; a non-JSON body is taken as the CSV itself.
func (c *Client) ExportReportsCSV(ctx context.Context, reportIDs, factors []string) (*ExportResult, error) {
	const op = "export reports csv"

	body := map[string][]string{}
	if len(reportIDs) > 0 {
		body["reportIds"] = reportIDs
	}
	if len(factors) > 0 {
		body["factors"] = factors
	}

	resp, err := c.HTTPClient.RestyClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(c.resolveURL("/static-analysis/export-csv"))
	if _, err := checkResponse(op, resp, err); err != nil {
		return nil, err
	}

	return parseExport(op, resp.Header().Get("Content-Type"), resp.Body(), time.Now())
}

func parseExport(op, contentType string, body []byte, now time.Time) (*ExportResult, error) {
	if isJSONExport(contentType, body) {
		var payload struct {
			CSV      *string `json:"csv"`
			Filename *string `json:"filename"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, &bwerrors.ResponseShapeError{Op: op, Reason: err.Error()}
		}
		if payload.CSV == nil || payload.Filename == nil || *payload.Filename == "" {
			return nil, &bwerrors.ResponseShapeError{Op: op, Reason: "missing csv or filename"}
		}
		return &ExportResult{Filename: *payload.Filename, Data: []byte(*payload.CSV)}, nil
	}

	if len(body) == 0 {
		return nil, &bwerrors.ResponseShapeError{Op: op, Reason: "empty body"}
	}
	return &ExportResult{
		Filename: fmt.Sprintf("analysis-reports-%s.csv", now.UTC().Format("2006-01-02")),
		Data:     body,
	}, nil
}

// isJSONExport trusts an explicit content type. Without one, only a JSON object body is
// treated as the wrapped export.
func isJSONExport(contentType string, body []byte) bool {
	if contentType != "" {
		return strings.Contains(contentType, "json")
	}
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed)
}
