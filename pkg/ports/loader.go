package ports

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
)

// ErrNotConfigured is returned by a SpecSource that holds no document of the
// requested kind.
var ErrNotConfigured = errors.New("document not configured")

// Format is the serialization of a Document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the format from a file extension. Anything that is not
// a YAML extension is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Document is a raw specification document and the format it is written in.
type Document struct {
	Data   []byte
	Format Format
}

// SpecSource defines how the engine retrieves workflow specifications.
// This allows the storage layer (files, Redis, memory) to be decoupled.
type SpecSource interface {
	// Workflows returns the document describing the workflows, keyed by name.
	Workflows(ctx context.Context) (Document, error)

	// Checks returns the document describing the named checks.
	// Returns ErrNotConfigured when the source carries no checks.
	Checks(ctx context.Context) (Document, error)
}

// SpecPublisher stores specification documents.
type SpecPublisher interface {
	PublishWorkflows(ctx context.Context, doc Document) error
	PublishChecks(ctx context.Context, doc Document) error
}

// SpecStore is a source that can also be written to.
type SpecStore interface {
	SpecSource
	SpecPublisher
}

// Watchable defines an interface for sources that can notify about backend changes.
// This is typically used to reload workflows in long running servers.
type Watchable interface {
	// Watch returns a channel that is signaled when a document changes.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
