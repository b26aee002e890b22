package domain

import "slices"

// GuardMode selects how the guards of a policy are combined.
type GuardMode string

const (
	// GuardAllOf requires every guard to pass. Evaluation stops at the first failure.
	GuardAllOf GuardMode = "all_of"
	// GuardAnyOf requires at least one guard to pass. Every guard is evaluated.
	GuardAnyOf GuardMode = "any_of"
)

// GuardPolicy names the guards that gate a transition and how they combine.
// The names are resolved against the guard set of the acting entity.
type GuardPolicy struct {
	Mode  GuardMode `json:"mode,omitempty" yaml:"mode,omitempty"`
	Names []string  `json:"names,omitempty" yaml:"names,omitempty"`
}

// AllOf builds a policy that requires every named guard to pass.
func AllOf(names ...string) GuardPolicy {
	return GuardPolicy{Mode: GuardAllOf, Names: names}
}

// AnyOf builds a policy that requires at least one named guard to pass.
func AnyOf(names ...string) GuardPolicy {
	return GuardPolicy{Mode: GuardAnyOf, Names: names}
}

// IsZero reports whether the policy gates nothing.
func (p GuardPolicy) IsZero() bool {
	return len(p.Names) == 0
}

func (p GuardPolicy) clone() GuardPolicy {
	return GuardPolicy{Mode: p.Mode, Names: slices.Clone(p.Names)}
}

// Transition defines a named move from any of Sources to Target.
type Transition struct {
	Name    string      `json:"name" yaml:"name"`
	Sources []string    `json:"sources" yaml:"sources"`
	Target  string      `json:"target" yaml:"target"`
	Guard   GuardPolicy `json:"guard,omitzero" yaml:"guard,omitempty"`
}

// AllowedFrom reports whether state is one of the transition's sources.
func (t Transition) AllowedFrom(state string) bool {
	return slices.Contains(t.Sources, state)
}

func (t Transition) clone() Transition {
	t.Sources = slices.Clone(t.Sources)
	t.Guard = t.Guard.clone()
	return t
}
