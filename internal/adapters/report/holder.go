// Package report retains the latest cycle outcome for the admin API.
package report

import (
	"context"
	"errors"
	"sync"

	"github.com/okian/tellsight/internal/domain/model"
)

// ErrNoReport is returned before the first cycle completes.
var ErrNoReport = errors.New("no cycle report yet")

// Holder stores the most recent cycle report. Reports are cycle-local
// working sets elsewhere; this is the single hand-off point between the
// scheduler and read-side consumers.
type Holder struct {
	mu     sync.RWMutex
	report model.CycleReport
	set    bool
	cycles int
}

// NewHolder creates an empty Holder.
func NewHolder() *Holder {
	return &Holder{}
}

// Publish replaces the stored report.
func (h *Holder) Publish(ctx context.Context, r model.CycleReport) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.report = r
	h.set = true
	h.cycles++
}

// Latest returns the most recent report, or ErrNoReport before any cycle
// has finished.
func (h *Holder) Latest(ctx context.Context) (model.CycleReport, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.set {
		return model.CycleReport{}, ErrNoReport
	}
	return h.report, nil
}

// Cycles returns how many reports have been published.
func (h *Holder) Cycles() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cycles
}
