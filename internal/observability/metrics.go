package observability

import (
	"net/http"
	"time"

	"github.com/bnema/memochat/internal/domain"
	"github.com/bnema/memochat/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by memochat. Each Metrics
// owns its registry so several can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	Turns           *prometheus.CounterVec
	TurnLatency     prometheus.Histogram
	ToolCalls       *prometheus.CounterVec
	BackendErrors   *prometheus.CounterVec
	ProxyRequests   *prometheus.CounterVec
	UpstreamLatency prometheus.Histogram
}

var _ ports.TurnObserver = (*Metrics)(nil)

func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		Turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Conversation turns by outcome.",
		}, []string{"outcome"}),
		TurnLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_latency_ms",
			Help:      "Turn duration in milliseconds, tool round trip included.",
			Buckets:   []float64{250, 500, 1000, 2000, 4000, 8000, 16000, 32000},
		}),
		ToolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Model function calls by tool name.",
		}, []string{"tool"}),
		BackendErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_errors_total",
			Help:      "Model backend failures by kind.",
		}, []string{"kind"}),
		ProxyRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proxy_requests_total",
			Help:      "Proxy requests by outcome.",
		}, []string{"outcome"}),
		UpstreamLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_latency_ms",
			Help:      "Latency of upstream model calls made by the proxy in milliseconds.",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 4000, 8000, 16000},
		}),
	}
}

func (m *Metrics) TurnFinished(outcome string, elapsed time.Duration) {
	m.Turns.WithLabelValues(outcome).Inc()
	m.TurnLatency.Observe(float64(elapsed.Milliseconds()))
}

func (m *Metrics) ToolDispatched(tool string) {
	m.ToolCalls.WithLabelValues(tool).Inc()
}

func (m *Metrics) BackendFailed(kind domain.BackendErrorKind) {
	m.BackendErrors.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) ObserveProxyRequest(outcome string) {
	m.ProxyRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveUpstreamLatency(d time.Duration) {
	m.UpstreamLatency.Observe(float64(d.Milliseconds()))
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
