// Package track records user-facing flow events as structured log records.
package track

import (
	"sort"

	"github.com/hashicorp/go-hclog"
)

// Events emitted by the flows.
const (
	EventUploadDiscovered  = "upload_discovered"
	EventAnalysisStarted   = "analysis_started"
	EventAnalysisCompleted = "analysis_completed"
	EventAnalysisFailed    = "analysis_failed"
	EventRepoResolved      = "repo_resolved"
	EventFlowReset         = "flow_reset"
)

// Tracker emits events through a logger. A nil *Tracker discards events.
type Tracker struct {
	logger hclog.Logger
}

// New returns a tracker writing to a "track" sub-logger.
func New(logger hclog.Logger) *Tracker {
	if logger == nil {
		return nil
	}
	return &Tracker{logger: logger.Named("track")}
}

// Track records event with data as key/value pairs in a stable order.
func (t *Tracker) Track(event string, data map[string]interface{}) {
	if t == nil || t.logger == nil {
		return
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]interface{}, 0, 2+2*len(keys))
	args = append(args, "event", event)
	for _, k := range keys {
		args = append(args, k, data[k])
	}
	t.logger.Debug("event", args...)
}
