package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/bulwark-sec/bulwark/internal/flow"
	"github.com/bulwark-sec/bulwark/internal/ghclient"
	bwerrors "github.com/bulwark-sec/bulwark/pkg/shared/errors"
)

// Source constants
const (
	SourcePublicURL      = "public-url"
	SourceUserRepository = "user-repository"
)

// determineSource determines where the repository comes from based on the provided flags.
func determineSource(options *RunOptionsAnalyze) string {
	if options.URL != "" {
		return SourcePublicURL
	}
	return SourceUserRepository
}

// splitRepository splits OWNER/NAME.
func splitRepository(fullName string) (string, string, error) {
	parts := strings.Split(strings.Trim(fullName, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", bwerrors.NewInputError("repository", fmt.Sprintf("%q is not in OWNER/NAME form", fullName))
	}
	return parts[0], parts[1], nil
}

// selectPublicRepository resolves a public repository without a token and hands it to the flow.
func selectPublicRepository(ctx context.Context, githubFlow *flow.GitHubFlow, rawURL string) error {
	gh, err := ghclient.New(AppConfig, logger, "")
	if err != nil {
		return err
	}
	repo, files, err := gh.ResolvePublicRepository(ctx, rawURL)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return bwerrors.ErrRepositoryNotFound
	}

	if err := githubFlow.SelectRepository(repo, nil); err != nil {
		return err
	}
	return githubFlow.SetContractFiles(files)
}

// selectUserRepository lists the contract files of one of the user's repositories and hands them to the flow.
func selectUserRepository(ctx context.Context, githubFlow *flow.GitHubFlow, token, fullName string) error {
	owner, name, err := splitRepository(fullName)
	if err != nil {
		return err
	}

	gh, err := ghclient.New(AppConfig, logger, token)
	if err != nil {
		return err
	}
	repo, err := gh.GetRepository(ctx, owner, name)
	if err != nil {
		return err
	}
	files, err := gh.ListContractFiles(ctx, owner, name)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return bwerrors.ErrNoContractFiles
	}
	return githubFlow.SelectRepository(repo, files)
}
