package ports

import (
	"context"

	"github.com/aretw0/docflows/pkg/domain"
)

// Observer receives the events emitted while a transition executes.
// Notify is called synchronously from the transition pipeline and must not
// fire transitions on the instance that emitted the event.
type Observer interface {
	Notify(ctx context.Context, event domain.Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, event domain.Event)

func (f ObserverFunc) Notify(ctx context.Context, event domain.Event) {
	f(ctx, event)
}

// NopObserver discards every event.
type NopObserver struct{}

func (NopObserver) Notify(context.Context, domain.Event) {}
