// Package registry owns the roster of registered worker endpoints.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/okian/tellsight/internal/domain/model"
)

// Registry serves a read-only snapshot of the worker roster for each cycle.
// The reserved identity is never a dispatch target and is filtered out on
// load.
type Registry struct {
	mu      sync.RWMutex
	workers []model.Worker
}

// Option applies a configuration option during construction.
type Option func(*options)

type options struct {
	static     []model.Worker
	rosterPath string
}

// WithWorkers seeds the roster from configuration.
func WithWorkers(workers []model.Worker) Option {
	return func(o *options) {
		o.static = workers
	}
}

// WithRosterFile loads additional workers from a JSON roster file.
func WithRosterFile(path string) Option {
	return func(o *options) {
		o.rosterPath = path
	}
}

// New builds a Registry. Entries are validated, deduplicated by UID (first
// wins), sorted by UID, and the reserved identity dropped.
func New(opts ...Option) (*Registry, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	entries := make([]model.Worker, 0, len(o.static))
	entries = append(entries, o.static...)

	if o.rosterPath != "" {
		fromFile, err := loadRoster(o.rosterPath)
		if err != nil {
			return nil, err
		}
		entries = append(entries, fromFile...)
	}

	v := validator.New()
	seen := make(map[int]bool, len(entries))
	workers := make([]model.Worker, 0, len(entries))
	for _, w := range entries {
		if w.UID == model.ReservedUID || seen[w.UID] {
			continue
		}
		if err := v.Struct(w); err != nil {
			return nil, fmt.Errorf("worker uid %d: %w", w.UID, err)
		}
		seen[w.UID] = true
		workers = append(workers, w)
	}
	sort.Slice(workers, func(i, j int) bool { return workers[i].UID < workers[j].UID })

	return &Registry{workers: workers}, nil
}

// Workers returns a copy of the roster; callers may not mutate shared
// state mid-cycle.
func (r *Registry) Workers(ctx context.Context) []model.Worker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Worker, len(r.workers))
	copy(out, r.workers)
	return out
}

// Count returns the roster size.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workers)
}

// loadRoster reads a JSON array of workers from disk.
func loadRoster(path string) ([]model.Worker, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}
	var workers []model.Worker
	if err := json.Unmarshal(raw, &workers); err != nil {
		return nil, fmt.Errorf("decode roster %s: %w", path, err)
	}
	return workers, nil
}
