package observability

import (
	"context"

	"github.com/aretw0/docflows/pkg/domain"
	"github.com/aretw0/docflows/pkg/ports"
)

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []ports.Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs, in order.
func NewCompositeObserver(obs ...ports.Observer) ports.Observer {
	filtered := make([]ports.Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	switch len(filtered) {
	case 0:
		return ports.NopObserver{}
	case 1:
		return filtered[0]
	default:
		return &CompositeObserver{observers: filtered}
	}
}

func (c *CompositeObserver) Notify(ctx context.Context, e domain.Event) {
	for _, o := range c.observers {
		o.Notify(ctx, e)
	}
}
