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

// UploadBackend is the part of the audit service the upload flow calls.
type UploadBackend interface {
	DiscoverFiles(ctx context.Context, archive shared.Archive) (*backend.DiscoverResult, error)
	AnalyzeUploadedContracts(ctx context.Context, extractedPath string, selectedFiles []string) (*report.StaticAnalysisReport, error)
}

// UploadFlow sequences uploading an archive, selecting its contract files and analyzing them.
type UploadFlow struct {
	backend UploadBackend
	logger  hclog.Logger
	tracker *track.Tracker

	mu            sync.Mutex
	step          UploadStep
	files         []shared.ContractFile
	extractedPath string
	report        *report.Report
	err           string
	isAnalyzing   bool
	runID         string
}

// NewUploadFlow returns a flow at the first step.
func NewUploadFlow(b UploadBackend, logger hclog.Logger, tracker *track.Tracker) *UploadFlow {
	return &UploadFlow{
		backend: b,
		logger:  logger.Named("upload-flow"),
		tracker: tracker,
		step:    UploadStepSelectSource,
		runID:   newRunID(),
	}
}

// ChooseSource moves from source selection to file discovery.
func (f *UploadFlow) ChooseSource() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != UploadStepSelectSource {
		return fmt.Errorf("%w: choose source from %s", ErrPrecondition, f.step)
	}
	f.step = UploadStepFileDiscovery
	return nil
}

// StartFileSelect uploads archive for discovery. On success it replaces the files, the
// extracted path, the report and the error in one step and moves to file selection.
// On failure only the error changes.
func (f *UploadFlow) StartFileSelect(ctx context.Context, archive shared.Archive) error {
	f.mu.Lock()
	if f.isAnalyzing {
		f.mu.Unlock()
		return ErrAnalysisInFlight
	}
	gen := f.runID
	f.mu.Unlock()

	if err := shared.ValidateArchive(archive); err != nil {
		return f.fail(gen, bwerrors.NewInputError("archive", err.Error()))
	}

	f.logger.Debug("discovering files", "archive", archive.Name())
	res, err := f.backend.DiscoverFiles(ctx, archive)
	if err == nil && len(res.ContractFiles) == 0 {
		err = bwerrors.ErrNoContractFiles
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.runID {
		f.logger.Debug("dropping stale discovery result", "run", gen)
		return ErrStaleResult
	}
	if err != nil {
		f.err = bwerrors.UserMessage(err)
		f.logger.Error("file discovery failed", "error", err)
		return err
	}

	f.files = append([]shared.ContractFile(nil), res.ContractFiles...)
	f.extractedPath = res.ExtractedPath
	f.report = nil
	f.err = ""
	f.step = UploadStepFileSelect
	f.tracker.Track(track.EventUploadDiscovered, map[string]interface{}{
		"archive": archive.Name(),
		"files":   len(f.files),
	})
	return nil
}

// RunAnalysis analyzes the selected paths of the current upload. It requires the file
// selection step or an idle analyzing step, a discovered upload and a non-empty subset
// of the discovered paths.
func (f *UploadFlow) RunAnalysis(ctx context.Context, selectedPaths []string) error {
	f.mu.Lock()
	if f.isAnalyzing {
		f.mu.Unlock()
		return ErrAnalysisInFlight
	}
	// Analyzing with nothing in flight is where GoToPreviousStep leaves a finished report.
	if (f.step != UploadStepFileSelect && f.step != UploadStepAnalyzing) || f.extractedPath == "" {
		step := f.step
		f.mu.Unlock()
		return fmt.Errorf("%w: run analysis from %s", ErrPrecondition, step)
	}
	if err := shared.ValidateSelection(f.files, selectedPaths); err != nil {
		f.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrPrecondition, err)
	}
	gen := f.runID
	extractedPath := f.extractedPath
	selected := append([]string(nil), selectedPaths...)
	f.step = UploadStepAnalyzing
	f.isAnalyzing = true
	f.err = ""
	f.mu.Unlock()

	f.tracker.Track(track.EventAnalysisStarted, map[string]interface{}{"flow": "upload", "files": len(selected)})
	res, err := f.backend.AnalyzeUploadedContracts(ctx, extractedPath, selected)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.runID {
		f.logger.Debug("dropping stale analysis result", "run", gen)
		return ErrStaleResult
	}
	f.isAnalyzing = false
	if err != nil {
		f.step = UploadStepFileSelect
		f.err = bwerrors.UserMessage(err)
		f.logger.Error("analysis failed", "error", err)
		f.tracker.Track(track.EventAnalysisFailed, map[string]interface{}{"flow": "upload", "error": err.Error()})
		return err
	}

	r := report.NewStaticAnalysis(res)
	f.report = &r
	f.step = UploadStepReport
	f.tracker.Track(track.EventAnalysisCompleted, map[string]interface{}{"flow": "upload", "report": r.ID()})
	return nil
}

// GoToPreviousStep moves one step back. It is a no-op at the first step.
// Leaving the analyzing step abandons the pending analysis.
func (f *UploadFlow) GoToPreviousStep() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step == UploadStepSelectSource {
		return
	}
	if f.step == UploadStepAnalyzing {
		f.isAnalyzing = false
		f.runID = newRunID()
	}
	f.step--
}

// CompleteAnalysis stores an externally obtained report and jumps to the report step.
// A pending analysis is abandoned.
func (f *UploadFlow) CompleteAnalysis(r report.Report) error {
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
	f.step = UploadStepReport
	return nil
}

// ResetFlow clears all flow state and returns to the first step. Results of calls
// still in flight are dropped.
func (f *UploadFlow) ResetFlow() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.step = UploadStepSelectSource
	f.files = nil
	f.extractedPath = ""
	f.report = nil
	f.err = ""
	f.isAnalyzing = false
	f.runID = newRunID()
	f.tracker.Track(track.EventFlowReset, map[string]interface{}{"flow": "upload"})
}

func (f *UploadFlow) fail(gen string, err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.runID {
		return ErrStaleResult
	}
	f.err = bwerrors.UserMessage(err)
	return err
}

func (f *UploadFlow) Step() UploadStep {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// ContractFiles returns a copy of the discovered files.
func (f *UploadFlow) ContractFiles() []shared.ContractFile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]shared.ContractFile(nil), f.files...)
}

func (f *UploadFlow) ExtractedPath() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.extractedPath
}

func (f *UploadFlow) Report() (report.Report, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.report == nil {
		return report.Report{}, false
	}
	return *f.report, true
}

// Err returns the user-facing text of the last failure.
func (f *UploadFlow) Err() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *UploadFlow) IsAnalyzing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.isAnalyzing
}

// APIReady reports whether a new analysis may be triggered.
func (f *UploadFlow) APIReady() bool {
	return !f.IsAnalyzing()
}

func (f *UploadFlow) RunID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runID
}
