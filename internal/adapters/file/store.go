package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aretw0/docflows/pkg/ports"
)

// Store implements ports.SpecStore using the local filesystem.
// The format of each document follows its file extension.
type Store struct {
	WorkflowsPath string
	ChecksPath    string
}

var _ ports.SpecStore = (*Store)(nil)

// New creates a store reading workflows from workflowsPath and checks from
// checksPath. An empty checksPath means the store carries no checks.
func New(workflowsPath, checksPath string) *Store {
	return &Store{WorkflowsPath: workflowsPath, ChecksPath: checksPath}
}

func (s *Store) Workflows(ctx context.Context) (ports.Document, error) {
	return read(s.WorkflowsPath)
}

func (s *Store) Checks(ctx context.Context) (ports.Document, error) {
	return read(s.ChecksPath)
}

func (s *Store) PublishWorkflows(ctx context.Context, doc ports.Document) error {
	return write(s.WorkflowsPath, doc)
}

func (s *Store) PublishChecks(ctx context.Context, doc ports.Document) error {
	return write(s.ChecksPath, doc)
}

func read(path string) (ports.Document, error) {
	if path == "" {
		return ports.Document{}, ports.ErrNotConfigured
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ports.Document{}, fmt.Errorf("%s: %w", path, ports.ErrNotConfigured)
		}
		return ports.Document{}, fmt.Errorf("failed to read spec file: %w", err)
	}
	return ports.Document{Data: data, Format: ports.FormatFromPath(path)}, nil
}

// write stores doc at path. The document keeps its bytes; the file extension
// decides how it will be read back.
func write(path string, doc ports.Document) error {
	if path == "" {
		return fmt.Errorf("no file configured: %w", ports.ErrNotConfigured)
	}
	if f := ports.FormatFromPath(path); doc.Format != "" && doc.Format != f {
		return fmt.Errorf("cannot store a %s document in %s", doc.Format, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to ensure spec directory: %w", err)
	}
	if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write spec file: %w", err)
	}
	return nil
}
