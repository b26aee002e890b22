package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/docflows/pkg/ports"
)

// Store implements ports.SpecStore in memory.
// Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	workflows *ports.Document
	checks    *ports.Document
}

var _ ports.SpecStore = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{}
}

// NewWithDocuments creates a store holding the given documents.
// A document with no data is left unset.
func NewWithDocuments(workflows, checks ports.Document) *Store {
	s := New()
	if len(workflows.Data) > 0 {
		s.workflows = clone(workflows)
	}
	if len(checks.Data) > 0 {
		s.checks = clone(checks)
	}
	return s
}

// Workflows returns a copy of the stored workflows document.
func (s *Store) Workflows(ctx context.Context) (ports.Document, error) {
	return s.get(&s.workflows)
}

// Checks returns a copy of the stored checks document.
func (s *Store) Checks(ctx context.Context) (ports.Document, error) {
	return s.get(&s.checks)
}

func (s *Store) PublishWorkflows(ctx context.Context, doc ports.Document) error {
	s.set(&s.workflows, doc)
	return nil
}

func (s *Store) PublishChecks(ctx context.Context, doc ports.Document) error {
	s.set(&s.checks, doc)
	return nil
}

func (s *Store) get(slot **ports.Document) (ports.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if *slot == nil {
		return ports.Document{}, ports.ErrNotConfigured
	}
	return *clone(**slot), nil
}

func (s *Store) set(slot **ports.Document, doc ports.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*slot = clone(doc)
}

// clone copies the data so callers can't mutate the store through it.
func clone(doc ports.Document) *ports.Document {
	return &ports.Document{Data: slices.Clone(doc.Data), Format: doc.Format}
}
