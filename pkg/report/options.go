package report

import (
	"maps"
	"slices"

	"github.com/aretw0/docflows/internal/runtime"
	"github.com/aretw0/docflows/pkg/domain"
	"github.com/aretw0/docflows/pkg/guard"
	"github.com/aretw0/docflows/pkg/ports"
)

type config struct {
	def      *domain.Definition
	checks   *guard.Set
	policies map[string]domain.GuardPolicy
	runtime  []runtime.Option
}

// Option configures a Report.
type Option func(*Report, *config)

// WithContent sets the initial content.
func WithContent(content string) Option {
	return func(r *Report, _ *config) {
		r.content = &content
	}
}

// WithKeywords sets the initial keywords.
func WithKeywords(keywords ...string) Option {
	return func(r *Report, _ *config) {
		r.keywords = slices.Clone(keywords)
	}
}

// WithAttribute sets a free-form attribute visible to checks as doc.<key>.
// Attributes never shadow title, content, keywords, state or history.
// Checks see only plain data: structs, pointers and functions are hidden
// from them (see guard.PlainEnv).
func WithAttribute(key string, value any) Option {
	return func(r *Report, _ *config) {
		r.attrs[key] = value
	}
}

// WithWorkflow runs the report through def instead of Workflow().
func WithWorkflow(def *domain.Definition) Option {
	return func(_ *Report, c *config) {
		c.def = def
	}
}

// WithChecks resolves policies against set instead of DefaultChecks().
func WithChecks(set *guard.Set) Option {
	return func(_ *Report, c *config) {
		c.checks = set
	}
}

// WithPolicies gates the listed transitions with policies, replacing both the
// default policies and, per transition, the guard the workflow declares.
func WithPolicies(policies map[string]domain.GuardPolicy) Option {
	return func(_ *Report, c *config) {
		if c.policies == nil {
			c.policies = make(map[string]domain.GuardPolicy, len(policies))
		}
		maps.Copy(c.policies, policies)
	}
}

// WithHooks registers lifecycle hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(_ *Report, c *config) {
		c.runtime = append(c.runtime, runtime.WithHooks(hooks))
	}
}

// WithEffect sets the body of a transition.
func WithEffect(transition string, effect domain.Effect) Option {
	return func(_ *Report, c *config) {
		c.runtime = append(c.runtime, runtime.WithEffect(transition, effect))
	}
}

// WithObserver sets the sink for transition events.
func WithObserver(o ports.Observer) Option {
	return func(_ *Report, c *config) {
		c.runtime = append(c.runtime, runtime.WithObserver(o))
	}
}

// CallOption configures a single transition call.
type CallOption = runtime.CallOption

// WithUser records user as the actor of the transition, taking precedence
// over the positional actor.
func WithUser(user string) CallOption {
	return runtime.WithUser(user)
}
