package backend

import (
	"context"
	"strings"

	bwerrors "github.com/bulwark-sec/bulwark/pkg/shared/errors"
)

// GetGitHubAuthURL returns the OAuth authorization URL to send the user to.
func (c *Client) GetGitHubAuthURL(ctx context.Context) (string, error) {
	const op = "get github auth url"
	resp, err := c.get(ctx, op, "/auth/github/url", nil)
	if err != nil {
		return "", err
	}

	var out struct {
		AuthURL string `json:"authUrl"`
	}
	if err := unmarshalResponse(op, resp, &out); err != nil {
		return "", err
	}
	if out.AuthURL == "" {
		return "", &bwerrors.ResponseShapeError{Op: op, Reason: "missing authUrl"}
	}
	return out.AuthURL, nil
}

// ValidateToken asks the service whether token is a usable GitHub token.
func (c *Client) ValidateToken(ctx context.Context, token string) (*TokenValidation, error) {
	const op = "validate token"
	if strings.TrimSpace(token) == "" {
		return nil, bwerrors.NewInputError("token", "must not be empty")
	}

	resp, err := c.get(ctx, op, "/auth/validate", map[string]string{"token": token})
	if err != nil {
		return nil, err
	}

	var out TokenValidation
	if err := unmarshalResponse(op, resp, &out); err != nil {
		return nil, err
	}
	if out.Valid && out.User == nil {
		return nil, &bwerrors.ResponseShapeError{Op: op, Reason: "valid token without user"}
	}
	return &out, nil
}
