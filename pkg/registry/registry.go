package registry

import (
	"fmt"
	"sync"

	"github.com/aretw0/docflows/pkg/domain"
	"github.com/aretw0/docflows/pkg/report"
	"github.com/google/uuid"
)

// Entry is a registered report and its id.
type Entry struct {
	ID     string
	Report *report.Report
}

// Registry keeps the reports served by the HTTP and MCP adapters.
// Reports live in process memory only.
type Registry struct {
	mu      sync.RWMutex
	reports map[string]*report.Report
	order   []string
	newID   func() string
}

// Option configures a Registry.
type Option func(*Registry)

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(r *Registry) {
		r.newID = fn
	}
}

// NewRegistry creates a new empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		reports: make(map[string]*report.Report),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a report and returns its id.
func (r *Registry) Register(rep *report.Report) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.newID()
	for _, taken := r.reports[id]; taken; _, taken = r.reports[id] {
		id = r.newID()
	}
	r.reports[id] = rep
	r.order = append(r.order, id)
	return id
}

// Get looks up a report by id.
// Returns domain.ErrReportNotFound if the id is not registered.
func (r *Registry) Get(id string) (*report.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rep, ok := r.reports[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrReportNotFound, id)
	}
	return rep, nil
}

// List returns the registered reports in registration order.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, Entry{ID: id, Report: r.reports[id]})
	}
	return out
}

// Delete removes a report.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reports[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrReportNotFound, id)
	}
	delete(r.reports, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
