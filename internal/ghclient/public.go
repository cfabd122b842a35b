package ghclient

import (
	"context"
	"regexp"
	"strings"

	"github.com/gitsight/go-vcsurl"
	"github.com/google/go-github/v47/github"

	"github.com/bulwark-sec/bulwark/pkg/shared"
	bwerrors "github.com/bulwark-sec/bulwark/pkg/shared/errors"
)

var repoURLPattern = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)`)

// ParseRepoURL extracts owner and repository name from a GitHub URL.
// SSH remotes such as git@github.com:owner/repo.git are accepted too.
func ParseRepoURL(raw string) (string, string, error) {
	raw = strings.TrimSpace(raw)
	m := repoURLPattern.FindStringSubmatch(raw)
	if m == nil {
		return parseRemote(raw)
	}

	owner := m[1]
	repo := m[2]
	if i := strings.IndexAny(repo, "?#"); i >= 0 {
		repo = repo[:i]
	}
	repo = strings.TrimSuffix(repo, ".git")
	if owner == "" || repo == "" {
		return "", "", bwerrors.NewInputError("repository url", "invalid GitHub URL format")
	}
	return owner, repo, nil
}

func parseRemote(raw string) (string, string, error) {
	info, err := vcsurl.Parse(raw)
	if err != nil || string(info.Host) != "github.com" || info.Username == "" || info.Name == "" {
		return "", "", bwerrors.NewInputError("repository url", "invalid GitHub URL format")
	}
	return info.Username, info.Name, nil
}

// FilterContractEntries returns the paths of blob entries ending in one of exts.
func FilterContractEntries(entries []*github.TreeEntry, exts ...string) []string {
	var paths []string
	for _, e := range entries {
		if e.GetType() != "blob" {
			continue
		}
		if shared.IsContractPath(e.GetPath(), exts...) {
			paths = append(paths, e.GetPath())
		}
	}
	return paths
}

// ResolvePublicRepository lists the Rust sources of a public repository addressed by URL.
// Every failure past URL parsing is reported as ErrRepositoryNotFound.
func (c *Client) ResolvePublicRepository(ctx context.Context, rawURL string) (shared.Repository, []shared.ContractFile, error) {
	owner, repo, err := ParseRepoURL(rawURL)
	if err != nil {
		return shared.Repository{}, nil, err
	}

	meta, _, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		c.logger.Debug("repository lookup failed", "owner", owner, "repo", repo, "error", err)
		return shared.Repository{}, nil, bwerrors.ErrRepositoryNotFound
	}

	branch := meta.GetDefaultBranch()
	if branch == "" {
		c.logger.Debug("repository has no default branch", "owner", owner, "repo", repo)
		return shared.Repository{}, nil, bwerrors.ErrRepositoryNotFound
	}

	tree, _, err := c.gh.Git.GetTree(ctx, owner, repo, branch, true)
	if err != nil {
		c.logger.Debug("tree lookup failed", "owner", owner, "repo", repo, "branch", branch, "error", err)
		return shared.Repository{}, nil, bwerrors.ErrRepositoryNotFound
	}

	paths := FilterContractEntries(tree.Entries, shared.ExtRust)
	files := make([]shared.ContractFile, 0, len(paths))
	for _, p := range paths {
		files = append(files, shared.ContractFile{
			Path:     p,
			Name:     shared.FileName(p),
			Size:     0,
			Language: shared.LanguageRustPublic,
		})
	}

	c.logger.Debug("resolved public repository", "owner", owner, "repo", repo, "files", len(files))
	return shared.PublicRepository(owner, repo, rawURL), files, nil
}
