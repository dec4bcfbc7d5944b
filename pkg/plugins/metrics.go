package plugins

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Suhaibinator/gazelle/pkg/common"
	"github.com/Suhaibinator/gazelle/pkg/plugin"
	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
)

const metadataMetricsStart = "gazelle.metrics.start"

// unmatchedRoute labels requests that reach the hook without a matched pattern.
const unmatchedRoute = "unmatched"

// MetricsConfig configures the MetricsPlugin.
type MetricsConfig struct {
	// Registry receives the collectors. Defaults to a new registry.
	Registry *prometheus.Registry

	Namespace string
	Subsystem string

	// Buckets for the duration histogram. Defaults to prometheus.DefBuckets.
	Buckets []float64

	// Clock measures request durations. Defaults to the wall clock.
	Clock clock.Clock
}

// MetricsPlugin records Prometheus request metrics labeled by method, route
// pattern and status.
type MetricsPlugin struct {
	registry *prometheus.Registry
	clock    clock.Clock

	requests     *prometheus.CounterVec
	errors       *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	responseSize *prometheus.HistogramVec
}

// NewMetricsPlugin creates a MetricsPlugin. A nil config uses the defaults.
func NewMetricsPlugin(config *MetricsConfig) *MetricsPlugin {
	if config == nil {
		config = &MetricsConfig{}
	}
	registry := config.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.New()
	}
	buckets := config.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}
	labels := []string{"method", "route", "status"}

	return &MetricsPlugin{
		registry: registry,
		clock:    clk,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, labels),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "http_errors_total",
			Help:      "Total number of HTTP responses with a 4xx or 5xx status.",
		}, labels),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   buckets,
		}, labels),
		responseSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "http_response_size_bytes",
			Help:      "HTTP response body size in bytes.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		}, labels),
	}
}

// Name implements plugin.Plugin.
func (p *MetricsPlugin) Name() string { return "metrics" }

// Initialize implements plugin.Plugin. It registers the collectors.
func (p *MetricsPlugin) Initialize(ctx *plugin.Context) error {
	var err error
	for _, c := range []prometheus.Collector{p.requests, p.errors, p.duration, p.responseSize} {
		err = multierr.Append(err, p.registry.Register(c))
	}
	return err
}

// Registry returns the registry holding the plugin's collectors.
func (p *MetricsPlugin) Registry() *prometheus.Registry {
	return p.registry
}

// Handler returns an http.Handler exposing the registry in the Prometheus text format.
func (p *MetricsPlugin) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Hooks returns the shared pre-hook that stamps the start time and the
// shared post-hook that records the metrics.
func (p *MetricsPlugin) Hooks() (common.PreHook, common.PostHook) {
	pre := common.NewPreHook(p.Name(), true, func(req common.Request, resp common.Response) common.PreHookResult {
		return common.Continue(req.WithMetadata(metadataMetricsStart, p.clock.Now()), resp)
	})

	post := common.NewPostHook(p.Name(), true, func(req common.Request, resp common.Response) (common.Request, common.Response) {
		route := req.Route()
		if route == "" {
			route = unmatchedRoute
		}
		labels := prometheus.Labels{
			"method": req.Method(),
			"route":  route,
			"status": strconv.Itoa(resp.StatusCode()),
		}

		p.requests.With(labels).Inc()
		p.responseSize.With(labels).Observe(float64(len(resp.Body())))
		if resp.StatusCode() >= http.StatusBadRequest {
			p.errors.With(labels).Inc()
		}
		if v, ok := req.Metadata(metadataMetricsStart); ok {
			if start, ok := v.(time.Time); ok {
				p.duration.With(labels).Observe(p.clock.Since(start).Seconds())
			}
		}
		return req, resp
	})

	return pre, post
}
