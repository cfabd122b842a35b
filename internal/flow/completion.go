package flow

import (
	"fmt"

	"github.com/bulwark-sec/bulwark/internal/report"
)

// Completion is implemented by both flow controllers.
type Completion interface {
	CompleteAnalysis(r report.Report) error
	Report() (report.Report, bool)
}

var (
	_ Completion = (*UploadFlow)(nil)
	_ Completion = (*GitHubFlow)(nil)
)

// OpenResults hands the controller's report to viewer. The viewer keeps its own copy,
// so resetting the controller afterwards leaves the opened report intact.
func OpenResults(c Completion, viewer *report.Viewer) (report.Report, error) {
	r, ok := c.Report()
	if !ok {
		return report.Report{}, fmt.Errorf("%w: no report to open", ErrPrecondition)
	}
	if err := viewer.Open(r); err != nil {
		return report.Report{}, fmt.Errorf("failed to open report: %w", err)
	}
	opened, _ := viewer.Current()
	return opened, nil
}
