package docflows

import (
	"log/slog"

	"github.com/aretw0/docflows/pkg/domain"
	"github.com/aretw0/docflows/pkg/guard"
	"github.com/aretw0/docflows/pkg/ports"
)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithSource reads workflows and checks from src. Without a source the
// engine serves the built-in report workflow with the default checks.
func WithSource(src ports.SpecSource) Option {
	return func(e *Engine) {
		e.source = src
	}
}

// WithLogger sets the structured logger. Every report created by the engine
// logs its transitions through it.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithObserver adds an event sink to every report created by the engine.
func WithObserver(o ports.Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// WithHooks registers lifecycle hooks on every report created by the engine.
func WithHooks(hooks domain.Hooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithPolicies gates transitions of every report, replacing, per transition,
// the guard the workflow declares. Transitions not listed keep their own, and
// policies naming a transition a workflow lacks are ignored for it.
func WithPolicies(policies map[string]domain.GuardPolicy) Option {
	return func(e *Engine) {
		e.policies = policies
	}
}

// WithGuardOptions configures the compilation of loaded checks, for example
// to register custom functions.
func WithGuardOptions(opts ...guard.Option) Option {
	return func(e *Engine) {
		e.guardOpts = append(e.guardOpts, opts...)
	}
}
