package flow

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/bulwark-sec/bulwark/internal/backend"
	"github.com/bulwark-sec/bulwark/internal/report"
	"github.com/bulwark-sec/bulwark/internal/track"
	"github.com/bulwark-sec/bulwark/pkg/shared"
	bwerrors "github.com/bulwark-sec/bulwark/pkg/shared/errors"
)

// RepositoryAnalyzer is the part of the audit service the GitHub flow calls.
type RepositoryAnalyzer interface {
	AnalyzeRustContract(ctx context.Context, req backend.AnalyzeRustContractRequest) (*report.StaticAnalysisReport, error)
}

// GitHubFlow sequences authenticating, picking a repository, selecting its contract
// files and analyzing them.
type GitHubFlow struct {
	analyzer RepositoryAnalyzer
	logger   hclog.Logger
	tracker  *track.Tracker

	mu          sync.Mutex
	step        GitHubStep
	token       string
	repo        *shared.Repository
	files       []shared.ContractFile
	report      *report.Report
	err         string
	isAnalyzing bool
	runID       string
}

// NewGitHubFlow returns a flow at the authentication step.
func NewGitHubFlow(a RepositoryAnalyzer, logger hclog.Logger, tracker *track.Tracker) *GitHubFlow {
	return &GitHubFlow{
		analyzer: a,
		logger:   logger.Named("github-flow"),
		tracker:  tracker,
		step:     GitHubStepAuth,
		runID:    newRunID(),
	}
}

// HandleAuthSuccess stores token. Persisting it is the caller's job.
func (f *GitHubFlow) HandleAuthSuccess(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

// SelectRepository stores repo and its resolved files and moves to file selection.
func (f *GitHubFlow) SelectRepository(repo shared.Repository, files []shared.ContractFile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.isAnalyzing {
		return ErrAnalysisInFlight
	}
	f.repo = &repo
	f.files = append([]shared.ContractFile(nil), files...)
	f.report = nil
	f.err = ""
	f.step = GitHubStepFileSelect
	f.tracker.Track(track.EventRepoResolved, map[string]interface{}{
		"repo":    repo.FullName,
		"private": repo.Private,
		"files":   len(files),
	})
	return nil
}

// SetContractFiles replaces the file set of the selected repository.
func (f *GitHubFlow) SetContractFiles(files []shared.ContractFile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.isAnalyzing {
		return ErrAnalysisInFlight
	}
	f.files = append([]shared.ContractFile(nil), files...)
	return nil
}

// SetStep jumps to step. The analyzing step can only be entered through RunAnalysis.
func (f *GitHubFlow) SetStep(step GitHubStep) error {
	if !step.valid() {
		return fmt.Errorf("%w: unknown step %d", ErrPrecondition, int(step))
	}
	if step == GitHubStepAnalyzing {
		return fmt.Errorf("%w: analyzing is entered through RunAnalysis", ErrPrecondition)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.isAnalyzing {
		return ErrAnalysisInFlight
	}
	f.step = step
	return nil
}

// RunAnalysis analyzes the selected paths of the selected repository. It may also start
// from an idle analyzing step, which is where stepping back from a report lands.
func (f *GitHubFlow) RunAnalysis(ctx context.Context, selectedPaths []string) error {
	f.mu.Lock()
	if f.isAnalyzing {
		f.mu.Unlock()
		return ErrAnalysisInFlight
	}
	if (f.step != GitHubStepFileSelect && f.step != GitHubStepAnalyzing) || f.repo == nil {
		step := f.step
		f.mu.Unlock()
		return fmt.Errorf("%w: run analysis from %s", ErrPrecondition, step)
	}
	if err := shared.ValidateSelection(f.files, selectedPaths); err != nil {
		f.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrPrecondition, err)
	}
	gen := f.runID
	req := backend.AnalyzeRustContractRequest{
		RepositoryURL: f.repo.URL,
		RepositoryID:  f.repo.ID,
		FullName:      f.repo.FullName,
		SelectedFiles: append([]string(nil), selectedPaths...),
		AccessToken:   f.token,
	}
	f.step = GitHubStepAnalyzing
	f.isAnalyzing = true
	f.err = ""
	f.mu.Unlock()

	f.tracker.Track(track.EventAnalysisStarted, map[string]interface{}{
		"flow":  "github",
		"repo":  req.FullName,
		"files": len(req.SelectedFiles),
	})
	res, err := f.analyzer.AnalyzeRustContract(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.runID {
		f.logger.Debug("dropping stale analysis result", "run", gen)
		return ErrStaleResult
	}
	f.isAnalyzing = false
	if err != nil {
		f.step = GitHubStepFileSelect
		f.err = bwerrors.UserMessage(err)
		f.logger.Error("analysis failed", "repo", req.FullName, "error", err)
		f.tracker.Track(track.EventAnalysisFailed, map[string]interface{}{"flow": "github", "error": err.Error()})
		return err
	}

	r := report.NewStaticAnalysis(res)
	f.report = &r
	f.step = GitHubStepReport
	f.tracker.Track(track.EventAnalysisCompleted, map[string]interface{}{"flow": "github", "report": r.ID()})
	return nil
}

// GoToPreviousStep moves one step back. It is a no-op at the authentication step.
func (f *GitHubFlow) GoToPreviousStep() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step == GitHubStepAuth {
		return
	}
	if f.step == GitHubStepAnalyzing {
		f.isAnalyzing = false
		f.runID = newRunID()
	}
	f.step--
}

// CompleteAnalysis stores an externally obtained report and jumps to the report step.
func (f *GitHubFlow) CompleteAnalysis(r report.Report) error {
	if err := r.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.isAnalyzing {
		f.runID = newRunID()
	}
	f.report = &r
	f.isAnalyzing = false
	f.err = ""
	f.step = GitHubStepReport
	return nil
}

// ResetFlow clears all state, including the token, and returns to authentication.
func (f *GitHubFlow) ResetFlow() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.step = GitHubStepAuth
	f.token = ""
	f.repo = nil
	f.files = nil
	f.report = nil
	f.err = ""
	f.isAnalyzing = false
	f.runID = newRunID()
	f.tracker.Track(track.EventFlowReset, map[string]interface{}{"flow": "github"})
}

func (f *GitHubFlow) Step() GitHubStep {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

func (f *GitHubFlow) AccessToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

// SelectedRepository returns the repository picked for analysis.
func (f *GitHubFlow) SelectedRepository() (shared.Repository, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.repo == nil {
		return shared.Repository{}, false
	}
	return *f.repo, true
}

// ContractFiles returns a copy of the repository's contract files.
func (f *GitHubFlow) ContractFiles() []shared.ContractFile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]shared.ContractFile(nil), f.files...)
}

func (f *GitHubFlow) Report() (report.Report, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.report == nil {
		return report.Report{}, false
	}
	return *f.report, true
}

func (f *GitHubFlow) Err() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *GitHubFlow) IsAnalyzing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.isAnalyzing
}

// APIReady reports whether a new analysis may be triggered.
func (f *GitHubFlow) APIReady() bool {
	return !f.IsAnalyzing()
}

func (f *GitHubFlow) RunID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runID
}
