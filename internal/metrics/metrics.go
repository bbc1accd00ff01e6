// Package metrics holds the Prometheus collectors for the refresh pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors exposed on /metrics.
type Metrics struct {
	ProviderRequests *prometheus.CounterVec // labels: function, result
	CacheLookups     *prometheus.CounterVec // labels: result
	FetchCycles      *prometheus.CounterVec // labels: result
	CycleDuration    prometheus.Histogram
	Score            prometheus.Gauge
	SafetyWarning    prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leverage_provider_requests_total",
			Help: "Provider API calls by function and result",
		}, []string{"function", "result"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leverage_cache_lookups_total",
			Help: "History cache lookups (hit, miss, stale, corrupt)",
		}, []string{"result"}),
		FetchCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leverage_fetch_cycles_total",
			Help: "Completed fetch cycles by outcome",
		}, []string{"result"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "leverage_fetch_cycle_duration_seconds",
			Help:    "Wall time of a full fetch cycle including inter-call delays",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		Score: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "leverage_score",
			Help: "Most recent leverage score (0-100)",
		}),
		SafetyWarning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "leverage_safety_warning",
			Help: "1 when the valuation safety cap is active",
		}),
	}

	reg.MustRegister(
		m.ProviderRequests,
		m.CacheLookups,
		m.FetchCycles,
		m.CycleDuration,
		m.Score,
		m.SafetyWarning,
	)
	return m
}

// NewNop returns collectors registered on a throwaway registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// ObserveProvider counts one provider call.
func (m *Metrics) ObserveProvider(function, result string) {
	if m == nil {
		return
	}
	m.ProviderRequests.WithLabelValues(function, result).Inc()
}

// ObserveCache counts one cache lookup.
func (m *Metrics) ObserveCache(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// ObserveCycle records a finished fetch cycle.
func (m *Metrics) ObserveCycle(result string, started time.Time) {
	if m == nil {
		return
	}
	m.FetchCycles.WithLabelValues(result).Inc()
	m.CycleDuration.Observe(time.Since(started).Seconds())
}

// SetScore publishes the latest score and safety flag.
func (m *Metrics) SetScore(score int, warning bool) {
	if m == nil {
		return
	}
	m.Score.Set(float64(score))
	if warning {
		m.SafetyWarning.Set(1)
	} else {
		m.SafetyWarning.Set(0)
	}
}
