package redis

import (
	"context"
	"fmt"

	"github.com/aretw0/docflows/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "docflows:spec:"

	fieldData   = "data"
	fieldFormat = "format"
)

// Store implements ports.SpecStore using Redis hashes.
// Each document lives under <prefix>workflows or <prefix>checks with a data
// and a format field. Every publish is announced on <prefix>changes.
type Store struct {
	client *backend.Client
	prefix string
}

var (
	_ ports.SpecStore = (*Store)(nil)
	_ ports.Watchable = (*Store)(nil)
)

type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(kind string) string {
	return s.prefix + kind
}

func (s *Store) channel() string {
	return s.prefix + "changes"
}

func (s *Store) Workflows(ctx context.Context) (ports.Document, error) {
	return s.get(ctx, "workflows")
}

func (s *Store) Checks(ctx context.Context) (ports.Document, error) {
	return s.get(ctx, "checks")
}

func (s *Store) PublishWorkflows(ctx context.Context, doc ports.Document) error {
	return s.put(ctx, "workflows", doc)
}

func (s *Store) PublishChecks(ctx context.Context, doc ports.Document) error {
	return s.put(ctx, "checks", doc)
}

func (s *Store) get(ctx context.Context, kind string) (ports.Document, error) {
	fields, err := s.client.HGetAll(ctx, s.key(kind)).Result()
	if err != nil {
		return ports.Document{}, fmt.Errorf("failed to read %s from redis: %w", kind, err)
	}
	data, ok := fields[fieldData]
	if !ok {
		return ports.Document{}, ports.ErrNotConfigured
	}
	format := ports.Format(fields[fieldFormat])
	if format == "" {
		format = ports.FormatJSON
	}
	return ports.Document{Data: []byte(data), Format: format}, nil
}

func (s *Store) put(ctx context.Context, kind string, doc ports.Document) error {
	format := doc.Format
	if format == "" {
		format = ports.FormatJSON
	}
	_, err := s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.HSet(ctx, s.key(kind), fieldData, doc.Data, fieldFormat, string(format))
		pipe.Publish(ctx, s.channel(), kind)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s to redis: %w", kind, err)
	}
	return nil
}

// Watch signals every publish made through any Store sharing the prefix.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	sub := s.client.Subscribe(ctx, s.channel())
	// Wait for the subscription to be confirmed so no publish is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", s.channel(), err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}
