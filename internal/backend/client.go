// Package backend is the HTTP client for the Bulwark audit service.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/bulwark-sec/bulwark/pkg/shared/config"
	bwerrors "github.com/bulwark-sec/bulwark/pkg/shared/errors"
	"github.com/bulwark-sec/bulwark/pkg/shared/httpclient"
)

// Client talks to the audit service endpoints.
type Client struct {
	HTTPClient *httpclient.Client
	BaseURL    string
	Logger     hclog.Logger
}

// New initializes a backend client from the global configuration.
func New(globalConfig *config.Config, logger hclog.Logger) (*Client, error) {
	httpClient, err := httpclient.New(logger, globalConfig)
	if err != nil {
		logger.Error("failed to initialize HTTP client", "error", err)
		return nil, err
	}

	return &Client{
		HTTPClient: httpClient,
		BaseURL:    strings.TrimRight(globalConfig.Backend.URL, "/"),
		Logger:     logger,
	}, nil
}

// resolveURL constructs the full URL by checking if the path is absolute or relative.
func (c *Client) resolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.BaseURL + path
}

// headersBuilder returns a request with the JSON headers every call shares.
func (c *Client) headersBuilder(ctx context.Context) *resty.Request {
	return c.HTTPClient.RestyClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
}

// get sends a GET request using the client's base URL, path, and query parameters provided.
func (c *Client) get(ctx context.Context, op, path string, queryParams map[string]string) (*resty.Response, error) {
	c.Logger.Debug("sending request", "op", op, "method", http.MethodGet, "path", path)
	resp, err := c.headersBuilder(ctx).
		SetQueryParams(queryParams).
		Get(c.resolveURL(path))
	return checkResponse(op, resp, err)
}

// post sends a POST request using the client's base URL, path, and body provided.
func (c *Client) post(ctx context.Context, op, path string, body interface{}) (*resty.Response, error) {
	c.Logger.Debug("sending request", "op", op, "method", http.MethodPost, "path", path)
	req := c.headersBuilder(ctx)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Post(c.resolveURL(path))
	return checkResponse(op, resp, err)
}

// upload sends a multipart form-data request carrying a single file under field.
func (c *Client) upload(ctx context.Context, op, path, field, filePath string) (*resty.Response, error) {
	c.Logger.Debug("uploading file", "op", op, "path", path, "file", filePath)
	resp, err := c.HTTPClient.RestyClient.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetFile(field, filePath).
		Post(c.resolveURL(path))
	return checkResponse(op, resp, err)
}

// checkResponse turns transport failures and non-success statuses into BackendError.
func checkResponse(op string, resp *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return resp, &bwerrors.BackendError{Op: op, Err: err}
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return resp, &bwerrors.BackendError{
			Op:         op,
			StatusCode: resp.StatusCode(),
			Body:       apiErrorMessage(resp.Body()),
		}
	}
	return resp, nil
}

// apiErrorMessage extracts the "message" or "error" field of an error payload, falling back to the raw body.
func apiErrorMessage(body []byte) string {
	var payload struct {
		Message interface{} `json:"message"`
		Error   string      `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch m := payload.Message.(type) {
		case string:
			if m != "" {
				return m
			}
		case []interface{}:
			parts := make([]string, 0, len(m))
			for _, p := range m {
				parts = append(parts, fmt.Sprint(p))
			}
			if len(parts) > 0 {
				return strings.Join(parts, "; ")
			}
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(body))
}

// unmarshalResponse is a generic function to parse JSON body from response into the provided type.
func unmarshalResponse[T any](op string, resp *resty.Response, out *T) error {
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &bwerrors.ResponseShapeError{Op: op, Reason: err.Error()}
	}
	return nil
}
