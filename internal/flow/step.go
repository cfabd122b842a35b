// Package flow sequences the direct-upload and GitHub analysis flows.
//
// Both controllers are safe for concurrent use. Every network call captures the run
// generation it started in; a result that arrives after the generation changed, for
// example because the flow was reset, is dropped and reported as ErrStaleResult.
package flow

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrPrecondition reports an operation invoked from a step that does not permit it.
	ErrPrecondition = errors.New("operation not allowed in the current step")
	// ErrAnalysisInFlight reports a second trigger while an analysis is pending.
	ErrAnalysisInFlight = errors.New("an analysis is already in progress")
	// ErrStaleResult reports a network result discarded because the flow moved on.
	ErrStaleResult = errors.New("result discarded: the flow was reset or restarted")
)

// UploadStep is a step of the direct-upload flow.
type UploadStep int

const (
	UploadStepSelectSource UploadStep = iota
	UploadStepFileDiscovery
	UploadStepFileSelect
	UploadStepAnalyzing
	UploadStepReport
)

func (s UploadStep) String() string {
	switch s {
	case UploadStepSelectSource:
		return "select-source"
	case UploadStepFileDiscovery:
		return "file-discovery"
	case UploadStepFileSelect:
		return "file-select"
	case UploadStepAnalyzing:
		return "analyzing"
	case UploadStepReport:
		return "report"
	default:
		return fmt.Sprintf("upload-step(%d)", int(s))
	}
}

// GitHubStep is a step of the GitHub flow.
type GitHubStep int

const (
	GitHubStepAuth GitHubStep = iota
	GitHubStepRepoSelect
	GitHubStepFileSelect
	GitHubStepAnalyzing
	GitHubStepReport
)

func (s GitHubStep) String() string {
	switch s {
	case GitHubStepAuth:
		return "auth"
	case GitHubStepRepoSelect:
		return "repo-select"
	case GitHubStepFileSelect:
		return "file-select"
	case GitHubStepAnalyzing:
		return "analyzing"
	case GitHubStepReport:
		return "report"
	default:
		return fmt.Sprintf("github-step(%d)", int(s))
	}
}

func (s GitHubStep) valid() bool {
	return s >= GitHubStepAuth && s <= GitHubStepReport
}

func newRunID() string {
	return uuid.NewString()
}
