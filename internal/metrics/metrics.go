// Package metrics exposes Prometheus collectors for the web app.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "carewise"

// Metrics holds the app's collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	RecordWrites   *prometheus.CounterVec
	SpeechRequests *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	ActiveGames    prometheus.Gauge
}

// New registers the collectors with a fresh registry, plus the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		RecordWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "records",
				Name:      "writes_total",
				Help:      "Record store writes by table and outcome.",
			},
			[]string{"table", "outcome"},
		),
		SpeechRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "speech",
				Name:      "synthesis_total",
				Help:      "Speech synthesis requests by outcome.",
			},
			[]string{"outcome"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency by route, method and status.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
		ActiveGames: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "game",
				Name:      "active",
				Help:      "Games currently being ticked.",
			},
		),
	}

	reg.MustRegister(
		m.RecordWrites,
		m.SpeechRequests,
		m.HTTPDuration,
		m.ActiveGames,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry backing the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route, method, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPDuration.WithLabelValues(route, method, status).Observe(d.Seconds())
}

// RecordWrite counts one record store write.
func (m *Metrics) RecordWrite(table, outcome string) {
	if m == nil {
		return
	}
	m.RecordWrites.WithLabelValues(table, outcome).Inc()
}
