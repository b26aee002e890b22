package dsl

import "github.com/aretw0/docflows/pkg/domain"

// TransitionBuilder provides a fluent API for configuring a transition.
type TransitionBuilder struct {
	t domain.Transition
}

// From adds source states.
func (tb *TransitionBuilder) From(sources ...string) *TransitionBuilder {
	tb.t.Sources = append(tb.t.Sources, sources...)
	return tb
}

// To sets the target state.
func (tb *TransitionBuilder) To(target string) *TransitionBuilder {
	tb.t.Target = target
	return tb
}

// AllOf gates the transition on every named check passing.
func (tb *TransitionBuilder) AllOf(checks ...string) *TransitionBuilder {
	tb.t.Guard = domain.AllOf(checks...)
	return tb
}

// AnyOf gates the transition on at least one named check passing.
func (tb *TransitionBuilder) AnyOf(checks ...string) *TransitionBuilder {
	tb.t.Guard = domain.AnyOf(checks...)
	return tb
}
