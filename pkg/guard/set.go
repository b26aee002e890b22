package guard

import (
	"fmt"

	"github.com/aretw0/docflows/pkg/domain"
)

// Set is an immutable collection of guards indexed by name.
// It may be shared by any number of entities.
type Set struct {
	order  []string
	guards map[string]Guard
}

// NewSet builds a set from guards. Duplicate names and nil guards are rejected.
func NewSet(guards ...Guard) (*Set, error) {
	s := &Set{guards: make(map[string]Guard, len(guards))}
	for i, g := range guards {
		if g == nil {
			return nil, fmt.Errorf("check #%d is nil", i)
		}
		name := g.Name()
		if _, dup := s.guards[name]; dup {
			return nil, fmt.Errorf("duplicate check %q", name)
		}
		s.guards[name] = g
		s.order = append(s.order, name)
	}
	return s, nil
}

// MustSet is like NewSet but panics on error.
func MustSet(guards ...Guard) *Set {
	s, err := NewSet(guards...)
	if err != nil {
		panic(err)
	}
	return s
}

// Lookup returns the guard registered as name, or a *domain.UnknownGuardError.
// A nil set holds no guards.
func (s *Set) Lookup(name string) (Guard, error) {
	if s != nil {
		if g, ok := s.guards[name]; ok {
			return g, nil
		}
	}
	return nil, &domain.UnknownGuardError{Name: name}
}

// Names returns the guard names in insertion order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// Len returns the number of guards.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}
