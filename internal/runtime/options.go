package runtime

import (
	"maps"
	"time"

	"github.com/aretw0/docflows/pkg/domain"
	"github.com/aretw0/docflows/pkg/guard"
	"github.com/aretw0/docflows/pkg/ports"
)

// Option configures an Instance.
type Option func(*Instance)

// WithChecks sets the checks policies are resolved against.
func WithChecks(set *guard.Set) Option {
	return func(i *Instance) {
		i.checks = set
	}
}

// WithPolicy gates transition with policy, replacing the policy declared by
// the workflow for that transition.
func WithPolicy(transition string, policy domain.GuardPolicy) Option {
	return func(i *Instance) {
		i.policies[transition] = policy
	}
}

// WithPolicies is WithPolicy for several transitions.
func WithPolicies(policies map[string]domain.GuardPolicy) Option {
	return func(i *Instance) {
		maps.Copy(i.policies, policies)
	}
}

// WithEffect sets the body of transition.
func WithEffect(transition string, effect domain.Effect) Option {
	return func(i *Instance) {
		i.effects[transition] = effect
	}
}

// WithHooks appends lifecycle hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(i *Instance) {
		i.hooks = i.hooks.Merge(hooks)
	}
}

// WithObserver sets the sink for transition events.
func WithObserver(o ports.Observer) Option {
	return func(i *Instance) {
		if o != nil {
			i.observer = o
		}
	}
}

// WithHistory makes the instance record into h. The entity owns h.
func WithHistory(h *domain.History) Option {
	return func(i *Instance) {
		i.history = h
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(i *Instance) {
		if now != nil {
			i.now = now
		}
	}
}

type callOptions struct {
	user string
}

// CallOption configures a single Fire call.
type CallOption func(*callOptions)

// WithUser records user as the actor, taking precedence over the positional actor.
func WithUser(user string) CallOption {
	return func(c *callOptions) {
		c.user = user
	}
}
