package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters/histograms for the booking flow.
type SchedulingMetrics struct {
	suggestTotal   *prometheus.CounterVec
	commitTotal    *prometheus.CounterVec
	identityTotal  *prometheus.CounterVec
	suggestLatency *prometheus.HistogramVec
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		suggestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brightline",
			Subsystem: "scheduling",
			Name:      "slot_suggestions_total",
			Help:      "Total slot suggestion queries",
		}, []string{"status", "cache"}),
		commitTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brightline",
			Subsystem: "scheduling",
			Name:      "booking_commits_total",
			Help:      "Total booking commit attempts by outcome",
		}, []string{"outcome"}),
		identityTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brightline",
			Subsystem: "scheduling",
			Name:      "demo_requests_total",
			Help:      "Total demo request creations",
		}, []string{"status"}),
		suggestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "brightline",
			Subsystem: "scheduling",
			Name:      "slot_suggestion_latency_seconds",
			Help:      "Latency of slot suggestion queries",
			Buckets:   prometheus.DefBuckets,
		}, []string{"cache"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.suggestTotal, m.commitTotal, m.identityTotal, m.suggestLatency)
	return m
}

func (m *SchedulingMetrics) ObserveSuggest(status string, cached bool) {
	if m == nil {
		return
	}
	m.suggestTotal.WithLabelValues(status, cacheLabel(cached)).Inc()
}

func (m *SchedulingMetrics) ObserveCommit(outcome string) {
	if m == nil {
		return
	}
	m.commitTotal.WithLabelValues(outcome).Inc()
}

func (m *SchedulingMetrics) ObserveIdentity(status string) {
	if m == nil {
		return
	}
	m.identityTotal.WithLabelValues(status).Inc()
}

func (m *SchedulingMetrics) ObserveSuggestLatency(cached bool, seconds float64) {
	if m == nil {
		return
	}
	m.suggestLatency.WithLabelValues(cacheLabel(cached)).Observe(seconds)
}

func cacheLabel(cached bool) string {
	if cached {
		return "hit"
	}
	return "miss"
}
