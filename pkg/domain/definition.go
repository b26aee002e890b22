package domain

import (
	"fmt"
	"slices"
)

// Definition is the immutable description of a workflow: its states, the
// transitions between them and the state every new instance starts in.
//
// A Definition is safe for concurrent use and is meant to be shared by every
// instance of the workflow. Accessors return copies.
//
// Reachability is not checked at construction: a state that no path from the
// initial state leads to is accepted. Use Unreachable to find such states.
type Definition struct {
	name        string
	states      []State
	stateIndex  map[string]int
	transitions []Transition
	transIndex  map[string]int
	initial     string
}

// NewDefinition validates the given states and transitions and builds a
// workflow definition from them. It is the factory used both by static
// declarations (see package dsl) and by documents decoded at runtime.
//
// Every violation found is reported in a single *DefinitionError:
// duplicate state or transition names, transitions whose sources or target are
// not declared states, and an initial state that is not declared.
// A state declared without a title uses its name as title.
func NewDefinition(name string, states []State, transitions []Transition, initial string) (*Definition, error) {
	var problems []string

	if name == "" {
		problems = append(problems, "workflow name is empty")
	}
	if len(states) == 0 {
		problems = append(problems, "no states declared")
	}

	d := &Definition{
		name:       name,
		states:     make([]State, 0, len(states)),
		stateIndex: make(map[string]int, len(states)),
		transIndex: make(map[string]int, len(transitions)),
		initial:    initial,
	}

	for i, s := range states {
		if s.Name == "" {
			problems = append(problems, fmt.Sprintf("state #%d has an empty name", i))
			continue
		}
		if _, dup := d.stateIndex[s.Name]; dup {
			problems = append(problems, fmt.Sprintf("duplicate state %q", s.Name))
			continue
		}
		if s.Title == "" {
			s.Title = s.Name
		}
		d.stateIndex[s.Name] = len(d.states)
		d.states = append(d.states, s)
	}

	for i, t := range transitions {
		if t.Name == "" {
			problems = append(problems, fmt.Sprintf("transition #%d has an empty name", i))
			continue
		}
		if _, dup := d.transIndex[t.Name]; dup {
			problems = append(problems, fmt.Sprintf("duplicate transition %q", t.Name))
			continue
		}
		problems = append(problems, d.checkTransition(t)...)

		t = t.clone()
		t.Sources = dedupe(t.Sources)
		if !t.Guard.IsZero() && t.Guard.Mode == "" {
			t.Guard.Mode = GuardAllOf
		}
		d.transIndex[t.Name] = len(d.transitions)
		d.transitions = append(d.transitions, t)
	}

	switch {
	case initial == "":
		problems = append(problems, "initial state is empty")
	case !d.hasState(initial):
		problems = append(problems, fmt.Sprintf("initial state %q is not declared", initial))
	}

	if len(problems) > 0 {
		return nil, &DefinitionError{Workflow: name, Problems: problems}
	}
	return d, nil
}

func (d *Definition) checkTransition(t Transition) []string {
	var problems []string
	if len(t.Sources) == 0 {
		problems = append(problems, fmt.Sprintf("transition %q has no source states", t.Name))
	}
	for _, src := range t.Sources {
		if !d.hasState(src) {
			problems = append(problems, fmt.Sprintf("transition %q: source state %q is not declared", t.Name, src))
		}
	}
	switch {
	case t.Target == "":
		problems = append(problems, fmt.Sprintf("transition %q has no target state", t.Name))
	case !d.hasState(t.Target):
		problems = append(problems, fmt.Sprintf("transition %q: target state %q is not declared", t.Name, t.Target))
	}
	switch t.Guard.Mode {
	case "", GuardAllOf, GuardAnyOf:
	default:
		problems = append(problems, fmt.Sprintf("transition %q: unknown guard mode %q", t.Name, t.Guard.Mode))
	}
	for _, g := range t.Guard.Names {
		if g == "" {
			problems = append(problems, fmt.Sprintf("transition %q references an empty guard name", t.Name))
		}
	}
	return problems
}

func (d *Definition) hasState(name string) bool {
	_, ok := d.stateIndex[name]
	return ok
}

// Name returns the workflow name.
func (d *Definition) Name() string {
	return d.name
}

// InitialState returns the state new instances start in.
func (d *Definition) InitialState() State {
	return d.states[d.stateIndex[d.initial]]
}

// States returns the declared states in declaration order.
func (d *Definition) States() []State {
	return slices.Clone(d.states)
}

// State looks up a state by name.
func (d *Definition) State(name string) (State, bool) {
	i, ok := d.stateIndex[name]
	if !ok {
		return State{}, false
	}
	return d.states[i], true
}

// Transitions returns the declared transitions in declaration order.
func (d *Definition) Transitions() []Transition {
	out := make([]Transition, len(d.transitions))
	for i, t := range d.transitions {
		out[i] = t.clone()
	}
	return out
}

// Transition looks up a transition by name.
func (d *Definition) Transition(name string) (Transition, bool) {
	i, ok := d.transIndex[name]
	if !ok {
		return Transition{}, false
	}
	return d.transitions[i].clone(), true
}

// Available returns the transitions that list state among their sources.
func (d *Definition) Available(state string) []Transition {
	var out []Transition
	for _, t := range d.transitions {
		if t.AllowedFrom(state) {
			out = append(out, t.clone())
		}
	}
	return out
}

// IsTerminal reports whether no transition leaves state.
func (d *Definition) IsTerminal(state string) bool {
	for _, t := range d.transitions {
		if t.AllowedFrom(state) {
			return false
		}
	}
	return true
}

// Unreachable returns, in declaration order, the states that cannot be
// reached from the initial state through any sequence of transitions.
func (d *Definition) Unreachable() []string {
	visited := map[string]bool{d.initial: true}
	queue := []string{d.initial}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, t := range d.transitions {
			if t.AllowedFrom(current) && !visited[t.Target] {
				visited[t.Target] = true
				queue = append(queue, t.Target)
			}
		}
	}

	var out []string
	for _, s := range d.states {
		if !visited[s.Name] {
			out = append(out, s.Name)
		}
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
