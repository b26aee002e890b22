package docflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/docflows/internal/logging"
	"github.com/aretw0/docflows/pkg/domain"
	"github.com/aretw0/docflows/pkg/guard"
	"github.com/aretw0/docflows/pkg/loader"
	"github.com/aretw0/docflows/pkg/observability"
	"github.com/aretw0/docflows/pkg/ports"
	"github.com/aretw0/docflows/pkg/report"
)

// ErrWorkflowNotFound is returned when a workflow name is not loaded.
var ErrWorkflowNotFound = domain.ErrWorkflowNotFound

// Engine is the high-level entry point for the docflows library.
// It holds the loaded workflow definitions and checks, and creates reports
// wired with the configured logger, observers and hooks.
type Engine struct {
	source    ports.SpecSource
	logger    *slog.Logger
	observers []ports.Observer
	hooks     domain.Hooks
	policies  map[string]domain.GuardPolicy
	guardOpts []guard.Option

	mu        sync.RWMutex
	workflows map[string]*domain.Definition
	checks    *guard.Set
	builtin   bool
}

// New initializes an Engine and performs the first load.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	e := &Engine{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.Reload(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// Reload reads workflows and checks again from the source.
//
// A source without a workflows document yields the built-in report
// workflow; one without a checks document yields report.DefaultChecks().
// Any other failure, including a single workflow that cannot be built,
// leaves the engine serving what it had before.
func (e *Engine) Reload(ctx context.Context) error {
	workflows, builtin, err := e.loadWorkflows(ctx)
	if err != nil {
		return err
	}
	checks, err := e.loadChecks(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.workflows = workflows
	e.checks = checks
	e.builtin = builtin
	e.mu.Unlock()

	e.logger.Debug("Specs loaded", "workflows", len(workflows), "checks", checks.Len())
	return nil
}

// loadWorkflows reports whether the built-in workflow was used.
func (e *Engine) loadWorkflows(ctx context.Context) (map[string]*domain.Definition, bool, error) {
	builtin := func() map[string]*domain.Definition {
		def := report.Workflow()
		return map[string]*domain.Definition{def.Name(): def}
	}
	if e.source == nil {
		return builtin(), true, nil
	}

	workflows, err := loader.LoadWorkflows(ctx, e.source)
	switch {
	case errors.Is(err, ports.ErrNotConfigured):
		e.logger.Info("No workflows configured, using the built-in report workflow")
		return builtin(), true, nil
	case err != nil:
		return nil, false, err
	case len(workflows) == 0:
		return nil, false, errors.New("workflows document declares no workflow")
	}
	return workflows, false, nil
}

func (e *Engine) loadChecks(ctx context.Context) (*guard.Set, error) {
	if e.source == nil {
		return report.DefaultChecks(), nil
	}
	checks, err := loader.LoadChecks(ctx, e.source, e.guardOpts...)
	if errors.Is(err, ports.ErrNotConfigured) {
		return report.DefaultChecks(), nil
	}
	return checks, err
}

// Workflow returns the named workflow definition.
func (e *Engine) Workflow(name string) (*domain.Definition, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	def, ok := e.workflows[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrWorkflowNotFound, name)
	}
	return def, nil
}

// Workflows returns the names of the loaded workflows, sorted.
func (e *Engine) Workflows() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.workflows))
	for name := range e.workflows {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Checks returns the loaded check set.
func (e *Engine) Checks() *guard.Set {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.checks
}

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}

// NewReport creates a report running the named workflow. Options given here
// are applied after the engine's own and may override them.
//
// Loaded workflows run with the guards they declare. The built-in workflow
// gets report.DefaultPolicies() unless the engine has policies of its own.
// Engine policies naming a transition the workflow lacks are skipped.
func (e *Engine) NewReport(workflow, title string, opts ...report.Option) (*report.Report, error) {
	def, err := e.Workflow(workflow)
	if err != nil {
		return nil, err
	}
	e.mu.RLock()
	builtin := e.builtin
	e.mu.RUnlock()

	observers := append([]ports.Observer{observability.NewLoggingObserver(e.logger)}, e.observers...)
	base := []report.Option{
		report.WithWorkflow(def),
		report.WithChecks(e.Checks()),
		report.WithObserver(observability.NewCompositeObserver(observers...)),
		report.WithHooks(e.hooks),
	}
	switch {
	case e.policies != nil:
		base = append(base, report.WithPolicies(policiesFor(def, e.policies)))
	case builtin:
		base = append(base, report.WithPolicies(report.DefaultPolicies()))
	}
	return report.New(title, append(base, opts...)...)
}

// policiesFor keeps the policies naming transitions def declares.
func policiesFor(def *domain.Definition, policies map[string]domain.GuardPolicy) map[string]domain.GuardPolicy {
	out := make(map[string]domain.GuardPolicy, len(policies))
	for name, p := range policies {
		if _, ok := def.Transition(name); ok {
			out[name] = p
		}
	}
	return out
}
