// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package gameshim

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters exported by the watchdogs.
// All methods are safe to call on a nil receiver.
type Metrics struct {
	recursionDetections prometheus.Counter
	reconnectAttempts   prometheus.Counter
	reconnectFailures   prometheus.Counter
	sessionFallbacks    prometheus.Counter
	lowFPS              prometheus.Counter
	diagnosticsRouted   *prometheus.CounterVec
	connectionError     prometheus.Gauge
}

// NewMetrics creates and registers the metrics with reg. If reg is nil, the
// metrics are created but not registered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		recursionDetections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: `gameshim`,
			Name:      `recursion_detections_total`,
			Help:      `Number of times runaway frame recursion was suspected.`,
		}),
		reconnectAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: `gameshim`,
			Name:      `reconnect_attempts_total`,
			Help:      `Number of session reconnect attempts issued.`,
		}),
		reconnectFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: `gameshim`,
			Name:      `reconnect_failures_total`,
			Help:      `Number of session reconnect calls that returned an error.`,
		}),
		sessionFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: `gameshim`,
			Name:      `session_fallbacks_total`,
			Help:      `Number of fallback game managers synthesized.`,
		}),
		lowFPS: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: `gameshim`,
			Name:      `low_fps_total`,
			Help:      `Number of frame rate samples below the threshold.`,
		}),
		diagnosticsRouted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: `gameshim`,
			Name:      `diagnostics_routed_total`,
			Help:      `Number of diagnostics routed to a recovery action.`,
		}, []string{`code`}),
		connectionError: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: `gameshim`,
			Name:      `connection_error_shown`,
			Help:      `Set to 1 once the terminal connection error overlay has been rendered.`,
		}),
	}
	if reg != nil {
		for _, c := range m.collectors() {
			if err := reg.Register(c); err != nil {
				return nil, fmt.Errorf("gameshim: failed to register metrics: %w", err)
			}
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.recursionDetections,
		m.reconnectAttempts,
		m.reconnectFailures,
		m.sessionFallbacks,
		m.lowFPS,
		m.diagnosticsRouted,
		m.connectionError,
	}
}

func (m *Metrics) recursionDetected() {
	if m != nil {
		m.recursionDetections.Inc()
	}
}

func (m *Metrics) reconnectAttempted() {
	if m != nil {
		m.reconnectAttempts.Inc()
	}
}

func (m *Metrics) reconnectFailed() {
	if m != nil {
		m.reconnectFailures.Inc()
	}
}

func (m *Metrics) sessionFallback() {
	if m != nil {
		m.sessionFallbacks.Inc()
	}
}

func (m *Metrics) lowFrameRate() {
	if m != nil {
		m.lowFPS.Inc()
	}
}

func (m *Metrics) diagnosticRouted(code DiagnosticCode) {
	if m != nil {
		m.diagnosticsRouted.WithLabelValues(code.String()).Inc()
	}
}

func (m *Metrics) connectionErrorShown() {
	if m != nil {
		m.connectionError.Set(1)
	}
}
