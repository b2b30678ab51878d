// Package metrics exports client-side request and view metrics to Prometheus.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Prometheus metric names
const (
	MetricAPIRequestsTotal   = "posconsole_api_requests_total"
	MetricAPIRequestDuration = "posconsole_api_request_duration_seconds"
	MetricViewFetchesTotal   = "posconsole_view_fetches_total"
	MetricViewFetchDuration  = "posconsole_view_fetch_duration_seconds"
	MetricViewMutationsTotal = "posconsole_view_mutations_total"
	MetricViewStaleDiscarded = "posconsole_view_stale_discarded_total"
)

const (
	namespace   = "posconsole"
	defaultAddr = "127.0.0.1:9464"
	defaultPath = "/metrics"
)

// ExporterConfig holds configuration for the exporter
type ExporterConfig struct {
	// Addr is the listen address of the metrics endpoint.
	// Default: 127.0.0.1:9464
	Addr string

	// Path is the URL path for the metrics endpoint.
	// Default: /metrics
	Path string

	// HistogramBuckets are the buckets for durations.
	// Default: prometheus.DefBuckets
	HistogramBuckets []float64
}

// DefaultExporterConfig returns default configuration
func DefaultExporterConfig() ExporterConfig {
	return ExporterConfig{
		Addr:             defaultAddr,
		Path:             defaultPath,
		HistogramBuckets: prometheus.DefBuckets,
	}
}

// Exporter records API and view metrics and serves them over HTTP.
// It implements apiclient.Observer and collection.Metrics.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Exporter struct {
	mu sync.RWMutex

	config   ExporterConfig
	registry *prometheus.Registry

	apiRequests   *prometheus.CounterVec
	apiDuration   *prometheus.HistogramVec
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	mutations     *prometheus.CounterVec
	stale         *prometheus.CounterVec

	server    *http.Server
	ln        net.Listener
	running   bool
	lastError error
}

// NewExporter creates an exporter with its own registry
func NewExporter(config ExporterConfig) *Exporter {
	if config.Addr == "" {
		config.Addr = defaultAddr
	}
	if config.Path == "" {
		config.Path = defaultPath
	}
	if len(config.HistogramBuckets) == 0 {
		config.HistogramBuckets = prometheus.DefBuckets
	}
	e := &Exporter{
		config:   config,
		registry: prometheus.NewRegistry(),
	}
	e.initMetrics()
	return e
}

func (e *Exporter) initMetrics() {
	e.apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of API requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)
	e.apiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request duration in seconds.",
			Buckets:   e.config.HistogramBuckets,
		},
		[]string{"method", "route"},
	)
	e.fetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "view",
			Name:      "fetches_total",
			Help:      "Page fetches by resource and outcome.",
		},
		[]string{"resource", "outcome"},
	)
	e.fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "view",
			Name:      "fetch_duration_seconds",
			Help:      "Page fetch duration in seconds, including discarded responses.",
			Buckets:   e.config.HistogramBuckets,
		},
		[]string{"resource"},
	)
	e.mutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "view",
			Name:      "mutations_total",
			Help:      "Create, update and delete operations by resource and outcome.",
		},
		[]string{"resource", "op", "outcome"},
	)
	e.stale = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "view",
			Name:      "stale_discarded_total",
			Help:      "Responses discarded because a newer fetch superseded them.",
		},
		[]string{"resource"},
	)
	e.registry.MustRegister(e.apiRequests, e.apiDuration, e.fetches, e.fetchDuration, e.mutations, e.stale)
}

// ObserveRequest records one API round trip. Status 0 marks a transport failure.
func (e *Exporter) ObserveRequest(method, route string, status int, d time.Duration) {
	statusLabel := "error"
	if status > 0 {
		statusLabel = strconv.Itoa(status)
	}
	e.apiRequests.WithLabelValues(method, route, statusLabel).Inc()
	e.apiDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveFetch records one page fetch
func (e *Exporter) ObserveFetch(resource, outcome string, d time.Duration) {
	resource = resourceLabel(resource)
	e.fetches.WithLabelValues(resource, outcome).Inc()
	e.fetchDuration.WithLabelValues(resource).Observe(d.Seconds())
	if outcome == "stale" {
		e.stale.WithLabelValues(resource).Inc()
	}
}

// ObserveMutation records one create, update or delete
func (e *Exporter) ObserveMutation(resource, op, outcome string) {
	e.mutations.WithLabelValues(resourceLabel(resource), op, outcome).Inc()
}

func resourceLabel(resource string) string {
	if resource == "" {
		return "unknown"
	}
	return resource
}

// Handler returns the HTTP handler serving the registry
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Start starts the HTTP server for the metrics endpoint
func (e *Exporter) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return nil
	}
	ln, err := net.Listen("tcp", e.config.Addr)
	if err != nil {
		return fmt.Errorf("starting metrics exporter: %w", err)
	}
	e.ln = ln

	mux := http.NewServeMux()
	mux.Handle(e.config.Path, e.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	e.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := e.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.mu.Lock()
			e.lastError = err
			e.mu.Unlock()
		}
	}()

	e.running = true
	return nil
}

// Stop stops the HTTP server
func (e *Exporter) Stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return nil
	}
	e.running = false
	if e.server != nil {
		return e.server.Shutdown(ctx)
	}
	return nil
}

// Address returns the URL of the metrics endpoint once started
func (e *Exporter) Address() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	addr := e.config.Addr
	if e.ln != nil {
		addr = e.ln.Addr().String()
	}
	return "http://" + addr + e.config.Path
}

// IsRunning returns whether the exporter is running
func (e *Exporter) IsRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

// LastError returns the last error from the HTTP server, if any
func (e *Exporter) LastError() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastError
}

// Gather collects all metrics from the registry
func (e *Exporter) Gather() ([]*dto.MetricFamily, error) {
	return e.registry.Gather()
}
