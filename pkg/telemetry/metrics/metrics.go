package metrics

import (
	"time"

	"embacle-hq/embacle/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace is the prefix shared by every gateway metric.
const Namespace = "embacle"

// Surface labels identify which gateway front handled a request.
const (
	SurfaceREST = "rest"
	SurfaceMCP  = "mcp"
)

// DefaultLatencyBuckets are the histogram buckets for request duration.
// CLI completions run far longer than ordinary HTTP calls, so the
// buckets extend to two minutes.
var DefaultLatencyBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120}

// GatewayMetrics records the gateway's Prometheus metrics.
//
// All recording methods are no-ops when metrics are disabled in the
// configuration or when the receiver is nil, so callers never need to
// guard call sites.
type GatewayMetrics struct {
	enabled  bool
	registry *prometheus.Registry

	// Request count by provider, model, and surface
	requests *prometheus.CounterVec

	// Error count by provider and error kind
	errors *prometheus.CounterVec

	// Request latency histogram by provider and model
	latency *prometheus.HistogramVec

	// Provider availability (1=up, 0=down) from health probes
	providerUp *prometheus.GaugeVec

	// Total provider calls issued by multiplex fan-out
	multiplexFanout prometheus.Counter
}

// New creates a GatewayMetrics registered on the given registry.
// If registry is nil, a new private registry is created.
func New(cfg config.MetricsConfig, registry *prometheus.Registry) *GatewayMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	gm := &GatewayMetrics{
		enabled:  cfg.Enabled,
		registry: registry,

		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "requests_total",
				Help:      "Total number of completion requests by provider, model, and surface",
			},
			[]string{"provider", "model", "surface"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "errors_total",
				Help:      "Total number of failed requests by provider and error kind",
			},
			[]string{"provider", "error_kind"},
		),

		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "request_duration_seconds",
				Help:      "Completion request duration in seconds",
				Buckets:   DefaultLatencyBuckets,
			},
			[]string{"provider", "model"},
		),

		providerUp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "provider_up",
				Help:      "Provider availability from the last health probe (1=up, 0=down)",
			},
			[]string{"provider"},
		),

		multiplexFanout: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "multiplex_fanout_total",
				Help:      "Total number of provider calls issued by multiplex requests",
			},
		),
	}

	registry.MustRegister(
		gm.requests,
		gm.errors,
		gm.latency,
		gm.providerUp,
		gm.multiplexFanout,
	)

	return gm
}

// RecordRequest records a completed request and its duration.
//
// Parameters:
//   - provider: provider name (e.g. "copilot", "claude_code")
//   - model: model identifier as sent to the CLI
//   - surface: SurfaceREST or SurfaceMCP
//   - duration: wall-clock time for the whole request
func (gm *GatewayMetrics) RecordRequest(provider, model, surface string, duration time.Duration) {
	if gm == nil || !gm.enabled {
		return
	}

	gm.requests.WithLabelValues(provider, model, surface).Inc()
	gm.latency.WithLabelValues(provider, model).Observe(duration.Seconds())
}

// RecordError records a failed request.
//
// errorKind is the wire-level error type the front reported, such as
// "timeout_error" or "provider_not_available".
func (gm *GatewayMetrics) RecordError(provider, errorKind string) {
	if gm == nil || !gm.enabled {
		return
	}

	gm.errors.WithLabelValues(provider, errorKind).Inc()
}

// SetProviderUp publishes a provider's availability as observed by a
// health probe.
func (gm *GatewayMetrics) SetProviderUp(provider string, up bool) {
	if gm == nil || !gm.enabled {
		return
	}

	value := 0.0
	if up {
		value = 1.0
	}
	gm.providerUp.WithLabelValues(provider).Set(value)
}

// RecordMultiplexFanout records that a multiplex request fanned out to
// n providers.
func (gm *GatewayMetrics) RecordMultiplexFanout(n int) {
	if gm == nil || !gm.enabled || n <= 0 {
		return
	}

	gm.multiplexFanout.Add(float64(n))
}

// Registry returns the Prometheus registry backing this collector.
func (gm *GatewayMetrics) Registry() *prometheus.Registry {
	return gm.registry
}
