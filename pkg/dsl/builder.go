package dsl

import (
	"fmt"

	"github.com/aretw0/docflows/pkg/domain"
)

// Builder manages the workflow construction.
type Builder struct {
	name        string
	states      []domain.State
	transitions []*TransitionBuilder
	initial     string
}

// New creates a new workflow builder.
func New(name string) *Builder {
	return &Builder{name: name}
}

// State declares a state. The first declared state is the initial state
// unless Initial says otherwise.
func (b *Builder) State(name, title string) *Builder {
	b.states = append(b.states, domain.State{Name: name, Title: title})
	return b
}

// Initial sets the state new instances start in.
func (b *Builder) Initial(name string) *Builder {
	b.initial = name
	return b
}

// Transition declares a transition.
// If the transition already exists, it returns the existing builder.
func (b *Builder) Transition(name string) *TransitionBuilder {
	for _, tb := range b.transitions {
		if tb.t.Name == name {
			return tb
		}
	}
	tb := &TransitionBuilder{t: domain.Transition{Name: name}}
	b.transitions = append(b.transitions, tb)
	return tb
}

// Build validates the declaration and returns the definition.
func (b *Builder) Build() (*domain.Definition, error) {
	initial := b.initial
	if initial == "" && len(b.states) > 0 {
		initial = b.states[0].Name
	}

	transitions := make([]domain.Transition, 0, len(b.transitions))
	for _, tb := range b.transitions {
		transitions = append(transitions, tb.t)
	}

	def, err := domain.NewDefinition(b.name, b.states, transitions, initial)
	if err != nil {
		return nil, fmt.Errorf("failed to build workflow: %w", err)
	}
	return def, nil
}

// MustBuild is like Build but panics on error.
// Intended for package level declarations.
func (b *Builder) MustBuild() *domain.Definition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}
