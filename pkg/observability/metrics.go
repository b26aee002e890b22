package observability

import (
	"context"

	"github.com/aretw0/docflows/pkg/domain"
	"github.com/aretw0/docflows/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Transition outcomes recorded by Metrics.
const (
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected"
	OutcomeGuarded   = "guard_failed"
)

// Metrics counts transitions and state entries with Prometheus.
type Metrics struct {
	transitions  *prometheus.CounterVec
	stateEntries *prometheus.CounterVec
}

var _ ports.Observer = (*Metrics)(nil)

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docflows_transitions_total",
				Help: "Total number of attempted transitions by outcome",
			},
			[]string{"workflow", "transition", "outcome"},
		),
		stateEntries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docflows_state_entries_total",
				Help: "Total number of times a state was entered",
			},
			[]string{"workflow", "state"},
		),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.transitions, m.stateEntries} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Transitions exposes the transition counter.
func (m *Metrics) Transitions() *prometheus.CounterVec {
	return m.transitions
}

// StateEntries exposes the state entry counter.
func (m *Metrics) StateEntries() *prometheus.CounterVec {
	return m.stateEntries
}

func (m *Metrics) Notify(_ context.Context, e domain.Event) {
	switch e.Kind {
	case domain.EventTransitionEnd:
		m.transitions.WithLabelValues(e.Workflow, e.Transition, OutcomeCommitted).Inc()
	case domain.EventTransitionRejected:
		m.transitions.WithLabelValues(e.Workflow, e.Transition, OutcomeRejected).Inc()
	case domain.EventGuardFailed:
		m.transitions.WithLabelValues(e.Workflow, e.Transition, OutcomeGuarded).Inc()
	case domain.EventStateChange:
		m.stateEntries.WithLabelValues(e.Workflow, e.State.Name).Inc()
	}
}
