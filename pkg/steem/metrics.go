package steem

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus metrics of a client.
type Metrics struct {
	Calls         *prometheus.CounterVec
	CallDuration  *prometheus.HistogramVec
	AvailableAPIs prometheus.Gauge
	Discoveries   *prometheus.CounterVec
}

// NewMetrics registers the metrics with the default registerer.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(nil)
}

// NewMetricsWithRegistry registers the metrics with registry, or with the
// default registerer when registry is nil.
func NewMetricsWithRegistry(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		Calls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "steembridge_calls_total",
				Help: "The total number of remote calls by sub-API, method and outcome",
			},
			[]string{"api", "method", "outcome"},
		),
		CallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "steembridge_call_duration_seconds",
				Help:    "Time from sending a request until its response or failure",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"api", "method"},
		),
		AvailableAPIs: factory.NewGauge(prometheus.GaugeOpts{
			Name: "steembridge_available_apis",
			Help: "The number of sub-APIs published by the node at the last discovery",
		}),
		Discoveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "steembridge_discoveries_total",
				Help: "The total number of capability discoveries by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func (m *Metrics) observeCall(api, method, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Calls.WithLabelValues(api, method, outcome).Inc()
	m.CallDuration.WithLabelValues(api, method).Observe(elapsed.Seconds())
}

func (m *Metrics) observeDiscovery(caps CapabilitySet, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Discoveries.WithLabelValues("failed").Inc()
		return
	}
	m.Discoveries.WithLabelValues("ready").Inc()
	m.AvailableAPIs.Set(float64(caps.Len()))
}
