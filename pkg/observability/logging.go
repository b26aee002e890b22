package observability

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/docflows/internal/logging"
	"github.com/aretw0/docflows/pkg/domain"
	"github.com/aretw0/docflows/pkg/ports"
)

// LoggingObserver writes one structured record per engine event using log/slog.
// Lifecycle events are logged at debug level, check failures at error level.
type LoggingObserver struct {
	Logger *slog.Logger
}

var _ ports.Observer = (*LoggingObserver)(nil)

// NewLoggingObserver creates an Observer logging to logger.
// If logger is nil, events are discarded.
func NewLoggingObserver(logger *slog.Logger) *LoggingObserver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) Notify(ctx context.Context, e domain.Event) {
	base := []any{Event(e.Kind), Workflow(e.Workflow), Transition(e.Transition), Actor(e.Actor)}

	switch e.Kind {
	case domain.EventTransitionStart:
		o.Logger.DebugContext(ctx, e.Entity, append(base, State("from_state", e.From))...)
	case domain.EventTransitionEnd:
		o.Logger.DebugContext(ctx, e.Entity, append(base, State("to_state", e.State))...)
	case domain.EventStateChange:
		o.Logger.DebugContext(ctx, e.Entity, append(base,
			State("state", e.State),
			slog.Any("history", e.History),
		)...)
	case domain.EventTransitionRejected:
		o.Logger.DebugContext(ctx, e.Entity, append(base, State("state", e.State), Error(e.Err))...)
	case domain.EventGuardFailed:
		o.logGuardFailure(ctx, e)
	}
}

func (o *LoggingObserver) logGuardFailure(ctx context.Context, e domain.Event) {
	var (
		failed *domain.GuardFailedError
		all    *domain.AllGuardsFailedError
	)
	switch {
	case errors.As(e.Err, &failed):
		o.Logger.ErrorContext(ctx, "Check failed",
			Entity(e.Entity),
			slog.String("name", failed.Guard),
			Error(e.Err),
		)
	case errors.As(e.Err, &all):
		o.Logger.ErrorContext(ctx, "All checks failed",
			Entity(e.Entity),
			Transition(all.Transition),
			slog.Any("checks", all.Guards),
		)
	default:
		o.Logger.ErrorContext(ctx, "Check could not be evaluated",
			Entity(e.Entity),
			Transition(e.Transition),
			Error(e.Err),
		)
	}
}
