package uvcmonitor

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "uvcmonitor"

type metrics struct {
	operations *prometheus.CounterVec
	errors     *prometheus.CounterVec
	previewing prometheus.Gauge
	surfaces   prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "operations_total",
				Help:      "Total number of session operations by name",
			},
			[]string{"op"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "errors_total",
				Help:      "Total number of failed session operations",
			},
			[]string{"op", "kind"}, // kind: state, device, config, store
		),
		previewing: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "previewing",
				Help:      "1 while the session is streaming to a surface",
			},
		),
		surfaces: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "surfaces_live",
				Help:      "Number of display surfaces currently held by the session",
			},
		),
	}
	m.operations = register(reg, m.operations)
	m.errors = register(reg, m.errors)
	m.previewing = register(reg, m.previewing)
	m.surfaces = register(reg, m.surfaces)
	return m
}

// register adds c to reg, reusing the collector already registered under the same
// descriptor so that several controllers can share one registry.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *metrics) observe(op string, err error) {
	m.operations.WithLabelValues(op).Inc()
	if err != nil {
		m.errors.WithLabelValues(op, errorKind(err)).Inc()
	}
}

func (m *metrics) setPreviewing(on bool) {
	if on {
		m.previewing.Set(1)
	} else {
		m.previewing.Set(0)
	}
}
