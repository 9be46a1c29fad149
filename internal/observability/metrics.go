package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"finitefield.org/toolfinder/internal/catalog"
)

// Metrics records catalog API calls made on behalf of visitors.
type Metrics struct {
	gatherer    prometheus.Gatherer
	apiRequests *prometheus.CounterVec
	apiDuration *prometheus.HistogramVec
	eventsTotal *prometheus.CounterVec
}

// NewMetrics registers the collectors on a fresh registry together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewMetricsWith(registry, registry)
}

// NewMetricsWith registers the collectors on registerer and serves gatherer.
func NewMetricsWith(registerer prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	factory := promauto.With(registerer)

	return &Metrics{
		gatherer: gatherer,
		apiRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolfinder_api_requests_total",
				Help: "Total number of catalog API calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		apiDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toolfinder_api_request_duration_seconds",
				Help:    "Duration of catalog API calls in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),
		eventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolfinder_events_total",
				Help: "Total number of user events by name and tone",
			},
			[]string{"event", "tone"},
		),
	}
}

// ObserveAPICall implements catalog.Observer.
func (m *Metrics) ObserveAPICall(operation, outcome string, elapsed time.Duration) {
	m.apiRequests.WithLabelValues(operation, outcome).Inc()
	m.apiDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveEvent counts a dispatched user event.
func (m *Metrics) ObserveEvent(event, tone string) {
	m.eventsTotal.WithLabelValues(event, tone).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

var _ catalog.Observer = (*Metrics)(nil)
