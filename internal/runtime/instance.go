package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/docflows/pkg/domain"
	"github.com/aretw0/docflows/pkg/guard"
	"github.com/aretw0/docflows/pkg/ports"
)

// Subject is the entity a workflow instance is bound to.
type Subject interface {
	// Label identifies the entity in events, typically its title.
	Label() string
	// Env returns a plain data snapshot of the entity for guard evaluation.
	Env() map[string]any
}

// firingKey marks a context as belonging to a transition running on inst.
type firingKey struct {
	inst *Instance
}

// Instance holds the current state of one entity in a workflow and executes
// its transitions. Transitions on the same instance are serialized.
type Instance struct {
	def      *domain.Definition
	subject  Subject
	checks   *guard.Set
	policies map[string]domain.GuardPolicy
	effects  map[string]domain.Effect
	hooks    domain.Hooks
	observer ports.Observer
	history  *domain.History
	now      func() time.Time

	fireMu  sync.Mutex
	stateMu sync.RWMutex
	current domain.State
}

// NewInstance creates an instance of def in its initial state.
// Policies and effects registered for transitions def does not declare are
// rejected with domain.ErrUnknownTransition.
func NewInstance(def *domain.Definition, subject Subject, opts ...Option) (*Instance, error) {
	if def == nil {
		return nil, fmt.Errorf("workflow definition is nil")
	}

	i := &Instance{
		def:      def,
		subject:  subject,
		policies: make(map[string]domain.GuardPolicy),
		effects:  make(map[string]domain.Effect),
		observer: ports.NopObserver{},
		now:      time.Now,
		current:  def.InitialState(),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.history == nil {
		i.history = domain.NewHistory()
	}

	for name, p := range i.policies {
		if _, ok := def.Transition(name); !ok {
			return nil, fmt.Errorf("check policy for %q: %w", name, domain.ErrUnknownTransition)
		}
		switch p.Mode {
		case "", domain.GuardAllOf, domain.GuardAnyOf:
		default:
			return nil, fmt.Errorf("check policy for %q: unknown guard mode %q", name, p.Mode)
		}
	}
	for name := range i.effects {
		if _, ok := def.Transition(name); !ok {
			return nil, fmt.Errorf("effect for %q: %w", name, domain.ErrUnknownTransition)
		}
	}
	return i, nil
}

// Definition returns the workflow the instance runs.
func (i *Instance) Definition() *domain.Definition {
	return i.def
}

// Current returns the current state.
func (i *Instance) Current() domain.State {
	i.stateMu.RLock()
	defer i.stateMu.RUnlock()
	return i.current
}

// History returns the transition records in order.
func (i *Instance) History() []string {
	return i.history.Entries()
}

// Available returns the transitions declared from the current state,
// without evaluating their checks.
func (i *Instance) Available() []domain.Transition {
	return i.def.Available(i.Current().Name)
}

// Can reports whether transition is declared from the current state.
func (i *Instance) Can(transition string) bool {
	t, ok := i.def.Transition(transition)
	return ok && t.AllowedFrom(i.Current().Name)
}

// Check runs the legality test and the checks of transition against the
// current state of the entity, without running hooks or changing anything.
func (i *Instance) Check(transition string) error {
	from := i.Current()
	t, ok := i.def.Transition(transition)
	if !ok || !t.AllowedFrom(from.Name) {
		return &domain.InvalidTransitionError{Transition: transition, State: from.Name}
	}
	return guard.Check(i.checks, t.Name, i.policyFor(t), i.env(from))
}

// Fire executes transition on behalf of actor.
//
// The steps run in order: legality, before hooks, checks, effect, state
// change, history record, after hooks and on-enter hooks. A failure in any
// step up to the effect leaves state and history untouched. After and
// on-enter hooks only observe the committed transition.
//
// Hooks and effects receive a context marking the running transition; using
// it, or any context derived from it, to fire again on the same instance
// returns domain.ErrReentrantTransition. A hook that fires on its own
// instance with an unrelated context, such as context.Background(), blocks
// forever: the running transition holds the instance until its hooks return.
func (i *Instance) Fire(ctx context.Context, transition, actor string, opts ...CallOption) error {
	if ctx.Value(firingKey{i}) != nil {
		return domain.ErrReentrantTransition
	}

	i.fireMu.Lock()
	defer i.fireMu.Unlock()

	var call callOptions
	for _, opt := range opts {
		opt(&call)
	}

	from := i.Current()
	change := &domain.Change{
		Workflow:   i.def.Name(),
		Entity:     i.label(),
		Transition: transition,
		Actor:      resolveActor(call.user, actor),
		From:       from,
	}

	t, ok := i.def.Transition(transition)
	if !ok || !t.AllowedFrom(from.Name) {
		err := &domain.InvalidTransitionError{Transition: transition, State: from.Name}
		i.emit(ctx, domain.EventTransitionRejected, change, from, err)
		return err
	}
	change.To, _ = i.def.State(t.Target)

	ctx = context.WithValue(ctx, firingKey{i}, struct{}{})
	i.emit(ctx, domain.EventTransitionStart, change, from, nil)

	for _, hook := range i.hooks.Before {
		if err := hook(ctx, change); err != nil {
			i.emit(ctx, domain.EventTransitionRejected, change, from, err)
			return err
		}
	}

	if err := guard.Check(i.checks, t.Name, i.policyFor(t), i.env(from)); err != nil {
		i.emit(ctx, domain.EventGuardFailed, change, from, err)
		return err
	}

	if effect := i.effects[t.Name]; effect != nil {
		if err := effect(ctx, change); err != nil {
			i.emit(ctx, domain.EventTransitionRejected, change, from, err)
			return err
		}
	}

	i.stateMu.Lock()
	i.current = change.To
	i.stateMu.Unlock()
	i.history.Append(change.Actor, t.Name)

	for _, hook := range i.hooks.After {
		hook(ctx, change)
	}
	i.emit(ctx, domain.EventTransitionEnd, change, change.To, nil)

	for _, hook := range i.hooks.OnEnter {
		hook(ctx, change)
	}
	i.emit(ctx, domain.EventStateChange, change, change.To, nil)

	return nil
}

func (i *Instance) policyFor(t domain.Transition) domain.GuardPolicy {
	if p, ok := i.policies[t.Name]; ok {
		return p
	}
	return t.Guard
}

func (i *Instance) label() string {
	if i.subject == nil {
		return ""
	}
	return i.subject.Label()
}

// env builds the guard environment. State and history always reflect the
// instance, whatever the subject reports.
func (i *Instance) env(state domain.State) map[string]any {
	doc := make(map[string]any)
	if i.subject != nil {
		for k, v := range i.subject.Env() {
			doc[k] = v
		}
	}
	doc["state"] = state.Name
	doc["history"] = i.history.Entries()
	return map[string]any{guard.DocBinding: doc}
}

func (i *Instance) emit(ctx context.Context, kind domain.EventKind, c *domain.Change, state domain.State, err error) {
	i.observer.Notify(ctx, domain.Event{
		Timestamp:  i.now(),
		Kind:       kind,
		Workflow:   c.Workflow,
		Entity:     c.Entity,
		Transition: c.Transition,
		Actor:      c.Actor,
		From:       c.From,
		State:      state,
		History:    i.history.Entries(),
		Err:        err,
	})
}

func resolveActor(user, actor string) string {
	switch {
	case user != "":
		return user
	case actor != "":
		return actor
	default:
		return domain.UnknownActor
	}
}
