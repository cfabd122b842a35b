// Package ghclient reads repositories and contract sources from the GitHub REST API.
package ghclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/google/go-github/v47/github"
	"github.com/hashicorp/go-hclog"

	"github.com/bulwark-sec/bulwark/pkg/shared"
	"github.com/bulwark-sec/bulwark/pkg/shared/config"
	"github.com/bulwark-sec/bulwark/pkg/shared/httpclient"
)

// maxContentDepth bounds the recursive contents walk.
const maxContentDepth = 12

// Client wraps a go-github client pointed at the configured API.
type Client struct {
	gh     *github.Client
	logger hclog.Logger
}

// bearerTransport adds an Authorization header to every request.
type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(r)
}

// New builds a GitHub client. An empty token yields an unauthenticated client.
func New(cfg *config.Config, logger hclog.Logger, token string) (*Client, error) {
	httpClient, err := httpclient.New(logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize HTTP client: %w", err)
	}

	hc := *httpClient.RestyClient.GetClient()
	if hc.Transport == nil {
		hc.Transport = http.DefaultTransport
	}
	if token != "" {
		hc.Transport = &bearerTransport{token: token, base: hc.Transport}
	}

	gh := github.NewClient(&hc)
	apiURL := cfg.Github.APIURL
	if apiURL == "" {
		apiURL = config.DefaultGithubAPIURL
	}
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	base, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid github api url %q: %w", apiURL, err)
	}
	gh.BaseURL = base

	return &Client{gh: gh, logger: logger}, nil
}

// AuthenticatedUser returns the profile of the token owner.
func (c *Client) AuthenticatedUser(ctx context.Context) (shared.GitHubUser, error) {
	u, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return shared.GitHubUser{}, fmt.Errorf("failed to get authenticated user: %w", err)
	}
	return shared.GitHubUser{
		ID:        u.GetID(),
		Login:     u.GetLogin(),
		Name:      u.GetName(),
		Email:     u.GetEmail(),
		AvatarURL: u.GetAvatarURL(),
	}, nil
}

// ListUserRepositories lists repositories of the token owner, most recently updated first.
func (c *Client) ListUserRepositories(ctx context.Context) ([]shared.Repository, error) {
	opts := &github.RepositoryListOptions{
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	repos, _, err := c.gh.Repositories.List(ctx, "", opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	out := make([]shared.Repository, 0, len(repos))
	for _, r := range repos {
		out = append(out, toRepository(r))
	}
	c.logger.Debug("listed repositories", "count", len(out))
	return out, nil
}

// GetRepository fetches a single repository by owner and name.
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (shared.Repository, error) {
	r, _, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return shared.Repository{}, fmt.Errorf("failed to get repository %s/%s: %w", owner, repo, err)
	}
	return toRepository(r), nil
}

// ListContractFiles walks the repository contents and returns Rust and Solidity sources.
func (c *Client) ListContractFiles(ctx context.Context, owner, repo string) ([]shared.ContractFile, error) {
	var files []shared.ContractFile
	if err := c.walkContents(ctx, owner, repo, "", 0, &files); err != nil {
		return nil, err
	}
	c.logger.Debug("listed contract files", "repo", owner+"/"+repo, "count", len(files))
	return files, nil
}

func (c *Client) walkContents(ctx context.Context, owner, repo, dir string, depth int, out *[]shared.ContractFile) error {
	if depth > maxContentDepth {
		c.logger.Warn("contents walk depth exceeded", "repo", owner+"/"+repo, "path", dir)
		return nil
	}

	_, entries, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, dir, nil)
	if err != nil {
		return fmt.Errorf("failed to read contents of %s/%s at %q: %w", owner, repo, dir, err)
	}

	for _, e := range entries {
		switch e.GetType() {
		case "dir":
			if err := c.walkContents(ctx, owner, repo, e.GetPath(), depth+1, out); err != nil {
				return err
			}
		case "file":
			if shared.IsContractPath(e.GetPath(), shared.ExtRust, shared.ExtSolidity) {
				*out = append(*out, shared.NewContractFile(e.GetPath(), int64(e.GetSize())))
			}
		}
	}
	return nil
}

func toRepository(r *github.Repository) shared.Repository {
	name := r.GetName()
	if name == "" {
		name = path.Base(r.GetFullName())
	}
	return shared.Repository{
		ID:       r.GetID(),
		Name:     name,
		FullName: r.GetFullName(),
		URL:      r.GetHTMLURL(),
		Private:  r.GetPrivate(),
	}
}
