package metrics

import (
	"net/http"
	"strconv"
	"time"

	"mealmate/internal/shared"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the prometheus instruments of the service.
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	upstreamTotal       *prometheus.CounterVec
	upstreamDuration    *prometheus.HistogramVec
	llmCallsTotal       *prometheus.CounterVec
	llmTokensTotal      *prometheus.CounterVec
	llmDuration         *prometheus.HistogramVec
}

// NewCollector registers all instruments on a fresh registry, together with
// the Go runtime and process collectors.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		upstreamTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upstream_requests_total",
				Help: "Outbound requests by service and status (0 for transport errors)",
			},
			[]string{"service", "status_code"},
		),
		upstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "upstream_request_duration_seconds",
				Help:    "Outbound request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service"},
		),
		llmCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_calls_total",
				Help: "Successful text generation calls",
			},
			[]string{"operation", "model"},
		),
		llmTokensTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_tokens_total",
				Help: "Tokens consumed by text generation",
			},
			[]string{"operation", "kind"},
		),
		llmDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llm_call_duration_seconds",
				Help:    "Text generation latency in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16},
			},
			[]string{"operation"},
		),
	}
}

// ObserveHTTP records one served request.
func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveUpstream records one outbound attempt. It matches
// httpclient.ObserveFunc.
func (c *Collector) ObserveUpstream(service string, status int, elapsed time.Duration) {
	c.upstreamTotal.WithLabelValues(service, strconv.Itoa(status)).Inc()
	c.upstreamDuration.WithLabelValues(service).Observe(elapsed.Seconds())
}

// RecordMeta records a text generation call.
func (c *Collector) RecordMeta(meta shared.CallMeta) error {
	c.llmCallsTotal.WithLabelValues(meta.Operation, meta.Usage.Model).Inc()
	c.llmTokensTotal.WithLabelValues(meta.Operation, "prompt").Add(float64(meta.Usage.PromptTokens))
	c.llmTokensTotal.WithLabelValues(meta.Operation, "completion").Add(float64(meta.Usage.CompletionTokens))
	c.llmDuration.WithLabelValues(meta.Operation).Observe(meta.Latency.Seconds())
	return nil
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
