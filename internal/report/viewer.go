package report

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultViewerHistory bounds how many opened reports the viewer remembers.
const DefaultViewerHistory = 32

// Viewer holds reports opened for display outside of a flow's lifecycle.
// Every report it holds is an independent copy; resetting the originating flow does not affect it.
type Viewer struct {
	mu      sync.Mutex
	current *Report
	recent  *lru.Cache[string, Report]
}

// NewViewer creates a viewer that remembers up to size recently opened reports by id.
func NewViewer(size int) (*Viewer, error) {
	if size <= 0 {
		size = DefaultViewerHistory
	}
	cache, err := lru.New[string, Report](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create report history: %w", err)
	}
	return &Viewer{recent: cache}, nil
}

// Open validates r, stores a copy as the current report and records it in the history.
func (v *Viewer) Open(r Report) error {
	if err := r.Validate(); err != nil {
		return err
	}
	cp, err := r.Clone()
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = &cp
	if id := cp.ID(); id != "" {
		v.recent.Add(id, cp)
	}
	return nil
}

// Current returns the report on display.
func (v *Viewer) Current() (Report, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current == nil {
		return Report{}, false
	}
	return *v.current, true
}

// Close clears the report on display. History is kept.
func (v *Viewer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = nil
}

// Lookup returns a previously opened report by id.
func (v *Viewer) Lookup(id string) (Report, bool) {
	return v.recent.Get(id)
}

// Show makes a previously opened report current again.
func (v *Viewer) Show(id string) (Report, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	r, ok := v.recent.Get(id)
	if !ok {
		return Report{}, false
	}
	v.current = &r
	return r, true
}

// Recent returns the ids of remembered reports, oldest first.
func (v *Viewer) Recent() []string {
	return v.recent.Keys()
}
