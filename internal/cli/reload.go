package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/docflows/pkg/ports"
)

// ErrNotWatchable is returned when a source cannot signal changes.
var ErrNotWatchable = errors.New("source does not support watching")

// Reloader is anything that can re-read its specs.
type Reloader interface {
	Reload(ctx context.Context) error
}

// WatchAndReload reloads r every time src signals a change, until ctx is
// done or the watch ends. A failed reload is logged and the previous specs
// stay in service.
func WatchAndReload(ctx context.Context, r Reloader, src ports.SpecSource, logger *slog.Logger) error {
	w, ok := src.(ports.Watchable)
	if !ok {
		return ErrNotWatchable
	}
	events, err := w.Watch(ctx)
	if err != nil {
		return err
	}

	logger.Info("Watching specs for changes")
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-events:
			if !ok {
				return nil
			}
			if err := r.Reload(ctx); err != nil {
				logger.Error("Reload failed, keeping previous specs", "err", err)
				continue
			}
			logger.Info("Specs reloaded")
		}
	}
}
