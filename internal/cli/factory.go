package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/docflows"
	"github.com/aretw0/docflows/internal/adapters/file"
	"github.com/aretw0/docflows/internal/config"
	"github.com/aretw0/docflows/internal/logging"
	"github.com/aretw0/docflows/pkg/adapters/redis"
	"github.com/aretw0/docflows/pkg/persistence/middleware"
	"github.com/aretw0/docflows/pkg/ports"
)

// NewLogger builds the stderr logger described by cfg.
func NewLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(os.Stderr, level, format), nil
}

// NewStore returns the spec store selected by cfg.Source, sealed with the
// configured encryption keys if any.
func NewStore(cfg *config.Config) (ports.SpecStore, error) {
	var store ports.SpecStore
	switch cfg.Source {
	case config.SourceFile:
		store = file.New(cfg.WorkflowsFile, cfg.ChecksFile)
	case config.SourceRedis:
		store = redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redis.WithPrefix(cfg.Redis.Prefix))
	default:
		return nil, fmt.Errorf("unknown source %q", cfg.Source)
	}

	if cfg.Encryption.Key == "" {
		return store, nil
	}
	mw, err := newEncryption(cfg)
	if err != nil {
		return nil, err
	}
	return mw(store), nil
}

func newEncryption(cfg *config.Config) (middleware.Middleware, error) {
	active, err := middleware.ParseKey(cfg.Encryption.Key)
	if err != nil {
		return nil, err
	}
	enc := middleware.EncryptionConfig{ActiveKey: active}
	for _, k := range cfg.Encryption.FallbackKeys {
		key, err := middleware.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("fallback: %w", err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	return middleware.NewEncryptionMiddleware(enc)
}

// NewEngine initializes an engine reading from the store selected by cfg,
// with standard CLI conventions. The store is returned so callers can watch
// or publish to it.
func NewEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...docflows.Option) (*docflows.Engine, ports.SpecStore, error) {
	store, err := NewStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	engineOpts := append([]docflows.Option{
		docflows.WithSource(store),
		docflows.WithLogger(logger),
	}, opts...)

	engine, err := docflows.New(ctx, engineOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, store, nil
}
