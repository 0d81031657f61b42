package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/udlcoach/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors fed by the engine hooks.
type Metrics struct {
	registry *prometheus.Registry

	transitions        *prometheus.CounterVec
	capabilityDuration *prometheus.HistogramVec
	capabilityErrors   *prometheus.CounterVec
	resets             prometheus.Counter
}

// NewMetrics creates the collectors on a private registry that also exports
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "udlcoach_transitions_total",
				Help: "Total number of completed turns by source and target state",
			},
			[]string{"from", "to", "branch"},
		),
		capabilityDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "udlcoach_capability_duration_seconds",
				Help:    "Duration of classifier, generator and extractor calls",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"capability", "kind"},
		),
		capabilityErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "udlcoach_capability_errors_total",
				Help: "Total number of failed capability calls",
			},
			[]string{"capability", "kind"},
		),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "udlcoach_session_resets_total",
			Help: "Total number of explicit session resets",
		}),
	}
	reg.MustRegister(
		m.transitions,
		m.capabilityDuration,
		m.capabilityErrors,
		m.resets,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			m.transitions.WithLabelValues(string(e.From), string(e.To), string(e.Branch)).Inc()
		},
		OnCapability: func(ctx context.Context, e *domain.CapabilityEvent) {
			m.capabilityDuration.WithLabelValues(e.Capability, e.Kind).Observe(e.Duration.Seconds())
			if e.IsError {
				m.capabilityErrors.WithLabelValues(e.Capability, e.Kind).Inc()
			}
		},
		OnReset: func(ctx context.Context, e *domain.EventBase) {
			m.resets.Inc()
		},
	}
}

// Registry exposes the underlying registry (tests, extra collectors).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
