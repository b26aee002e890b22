package report

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/docflows/internal/runtime"
	"github.com/aretw0/docflows/pkg/domain"
)

// reserved keys of the check environment.
var reserved = []string{"title", "content", "keywords", "state", "history"}

// Report is a document moved through a workflow.
// It is safe for concurrent use; transitions are serialized.
type Report struct {
	mu       sync.RWMutex
	title    string
	content  *string
	keywords []string
	attrs    map[string]any

	history *domain.History
	inst    *runtime.Instance
}

// New creates a report in the initial state of its workflow.
//
// Without options the report runs Workflow() with DefaultChecks() and
// DefaultPolicies(). A workflow given with WithWorkflow runs with the guards
// it declares, and only the policies given with WithPolicies are added.
func New(title string, opts ...Option) (*Report, error) {
	r := &Report{
		title:    title,
		keywords: []string{},
		attrs:    make(map[string]any),
		history:  domain.NewHistory(),
	}

	cfg := config{}
	for _, opt := range opts {
		opt(r, &cfg)
	}
	if cfg.def == nil {
		cfg.def = Workflow()
		if cfg.policies == nil {
			cfg.policies = DefaultPolicies()
		}
	}
	if cfg.checks == nil {
		cfg.checks = DefaultChecks()
	}

	runtimeOpts := append([]runtime.Option{
		runtime.WithChecks(cfg.checks),
		runtime.WithPolicies(cfg.policies),
		runtime.WithHistory(r.history),
	}, cfg.runtime...)

	inst, err := runtime.NewInstance(cfg.def, r, runtimeOpts...)
	if err != nil {
		return nil, err
	}
	r.inst = inst
	return r, nil
}

// Label implements runtime.Subject.
func (r *Report) Label() string {
	return r.Title()
}

// Env implements runtime.Subject. The snapshot holds only plain data.
func (r *Report) Env() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	env := make(map[string]any, len(r.attrs)+3)
	for k, v := range r.attrs {
		if !slices.Contains(reserved, k) {
			env[k] = v
		}
	}
	env["title"] = r.title
	if r.content != nil {
		env["content"] = *r.content
	} else {
		env["content"] = nil
	}
	env["keywords"] = slices.Clone(r.keywords)
	return env
}

func (r *Report) Title() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.title
}

func (r *Report) SetTitle(title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.title = title
}

// Content returns the content and whether it is set.
func (r *Report) Content() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.content == nil {
		return "", false
	}
	return *r.content, true
}

func (r *Report) SetContent(content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content = &content
}

// ClearContent unsets the content.
func (r *Report) ClearContent() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content = nil
}

func (r *Report) Keywords() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.keywords)
}

func (r *Report) SetKeywords(keywords ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keywords = append([]string{}, keywords...)
}

func (r *Report) Attribute(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.attrs[key]
	return v, ok
}

func (r *Report) SetAttribute(key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attrs[key] = value
}

// Attributes returns a copy of the free-form attributes.
func (r *Report) Attributes() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.attrs)
}

// State returns the current workflow state.
func (r *Report) State() domain.State {
	return r.inst.Current()
}

// History returns the "<actor>: <transition>" records of successful transitions.
func (r *Report) History() []string {
	return r.history.Entries()
}

// Definition returns the workflow the report runs.
func (r *Report) Definition() *domain.Definition {
	return r.inst.Definition()
}

// Available returns the transitions declared from the current state.
func (r *Report) Available() []domain.Transition {
	return r.inst.Available()
}

// Can reports whether transition is declared from the current state.
func (r *Report) Can(transition string) bool {
	return r.inst.Can(transition)
}

// Check reports why transition would fail right now, or nil.
func (r *Report) Check(transition string) error {
	return r.inst.Check(transition)
}

// Fire executes transition on behalf of actor.
func (r *Report) Fire(ctx context.Context, transition, actor string, opts ...CallOption) error {
	return r.inst.Fire(ctx, transition, actor, opts...)
}

func (r *Report) Prepare(ctx context.Context, actor string, opts ...CallOption) error {
	return r.Fire(ctx, Prepare, actor, opts...)
}

func (r *Report) Finish(ctx context.Context, actor string, opts ...CallOption) error {
	return r.Fire(ctx, Finish, actor, opts...)
}

func (r *Report) Submit(ctx context.Context, actor string, opts ...CallOption) error {
	return r.Fire(ctx, Submit, actor, opts...)
}

func (r *Report) Approve(ctx context.Context, actor string, opts ...CallOption) error {
	return r.Fire(ctx, Approve, actor, opts...)
}

func (r *Report) Reject(ctx context.Context, actor string, opts ...CallOption) error {
	return r.Fire(ctx, Reject, actor, opts...)
}

func (r *Report) Cancel(ctx context.Context, actor string, opts ...CallOption) error {
	return r.Fire(ctx, Cancel, actor, opts...)
}
