// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics exposes Prometheus counters and histograms for chat turns,
// outbound HTTP calls and catalog fallbacks on a private registry.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "movie_assistant"

// Metrics holds the collectors. The zero value is not usable; call New.
type Metrics struct {
	registry *prometheus.Registry

	turns            *prometheus.CounterVec
	turnDuration     *prometheus.HistogramVec
	remoteRequests   *prometheus.CounterVec
	remoteDuration   *prometheus.HistogramVec
	catalogFallbacks *prometheus.CounterVec
}

// New registers every collector on a fresh registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		turns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Chat turns handled, by command and outcome.",
		}, []string{"command", "outcome"}),
		turnDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Time to produce a reply, by command.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"command"}),
		remoteRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_requests_total",
			Help:      "Outbound HTTP requests, by service, status code and method.",
		}, []string{"service", "code", "method"}),
		remoteDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_request_duration_seconds",
			Help:      "Outbound HTTP request latency, by service.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "method"}),
		catalogFallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_fallbacks_total",
			Help:      "Catalog lookups made by the matcher, by operation and outcome.",
		}, []string{"op", "outcome"}),
	}
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveTurn records one handled chat turn.
func (m *Metrics) ObserveTurn(command, outcome string, d time.Duration) {
	if command == "" {
		command = "text"
	}
	m.turns.WithLabelValues(command, outcome).Inc()
	m.turnDuration.WithLabelValues(command).Observe(d.Seconds())
}

// CatalogFallback counts a matcher catalog call.
func (m *Metrics) CatalogFallback(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.catalogFallbacks.WithLabelValues(op, outcome).Inc()
}

// Transport wraps next so every request is counted and timed under service.
// A nil next uses http.DefaultTransport.
func (m *Metrics) Transport(service string, next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	counter := m.remoteRequests.MustCurryWith(prometheus.Labels{"service": service})
	duration := m.remoteDuration.MustCurryWith(prometheus.Labels{"service": service})
	return promhttp.InstrumentRoundTripperCounter(counter,
		promhttp.InstrumentRoundTripperDuration(duration, next))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
