package domain

import (
	"context"
	"time"
)

// EventKind defines the category of an engine event.
type EventKind string

const (
	EventTransitionStart    EventKind = "transition_start"
	EventTransitionEnd      EventKind = "transition_end"
	EventStateChange        EventKind = "state_change"
	EventTransitionRejected EventKind = "transition_rejected"
	EventGuardFailed        EventKind = "guard_failed"
)

// Event is the structured record handed to observers.
// From is the state before the transition, State the state when the event was
// emitted. History is a snapshot taken at emission time.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	Kind       EventKind `json:"kind"`
	Workflow   string    `json:"workflow"`
	Entity     string    `json:"entity"`
	Transition string    `json:"transition,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	From       State     `json:"from"`
	State      State     `json:"state"`
	History    []string  `json:"history,omitempty"`
	Err        error     `json:"-"`
}

// Change describes the transition being executed. It is what hooks and
// effects receive.
type Change struct {
	Workflow   string
	Entity     string
	Transition string
	Actor      string
	From       State
	To         State
}

// BeforeHook runs before guards are evaluated. Returning an error aborts the
// transition with no state change.
type BeforeHook func(ctx context.Context, c *Change) error

// Hook observes a committed transition.
type Hook func(ctx context.Context, c *Change)

// Effect is the domain-specific body of a transition. It runs after guards
// pass and before the state changes; an error aborts the transition.
type Effect func(ctx context.Context, c *Change) error

// Hooks groups the lifecycle callbacks of a workflow instance.
// Each list runs in registration order.
type Hooks struct {
	Before  []BeforeHook
	After   []Hook
	OnEnter []Hook
}

// Merge returns hooks running h's callbacks first, then o's.
func (h Hooks) Merge(o Hooks) Hooks {
	return Hooks{
		Before:  append(append([]BeforeHook{}, h.Before...), o.Before...),
		After:   append(append([]Hook{}, h.After...), o.After...),
		OnEnter: append(append([]Hook{}, h.OnEnter...), o.OnEnter...),
	}
}
