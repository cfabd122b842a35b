package backend

import (
	"context"

	"github.com/bulwark-sec/bulwark/internal/report"
)

// Health probes the liveness of the service.
func (c *Client) Health(ctx context.Context) (map[string]interface{}, error) {
	const op = "health"
	resp, err := c.post(ctx, op, "/scoping/health", nil)
	if err != nil {
		return nil, err
	}

	status := map[string]interface{}{}
	if len(resp.Body()) == 0 {
		return status, nil
	}
	if err := unmarshalResponse(op, resp, &status); err != nil {
		return nil, err
	}
	return status, nil
}

// GenerateReport requests a pre-audit scoping report.
func (c *Client) GenerateReport(ctx context.Context, req GenerateReportRequest) (*report.ScopingReport, error) {
	const op = "generate scoping report"
	resp, err := c.post(ctx, op, "/scoping/generate-report", req)
	if err != nil {
		return nil, err
	}

	var out report.ScopingReport
	if err := unmarshalResponse(op, resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
