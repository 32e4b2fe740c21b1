package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters/histograms for lead relay flows.
type LeadMetrics struct {
	attemptsTotal      *prometheus.CounterVec
	failoverTotal      *prometheus.CounterVec
	fieldsDroppedTotal *prometheus.CounterVec
	duplicatesTotal    prometheus.Counter
	submissionLatency  prometheus.Histogram
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		attemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadrelay",
			Subsystem: "monday",
			Name:      "attempts_total",
			Help:      "Total create_item calls made to monday.com",
		}, []string{"outcome"}),
		failoverTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadrelay",
			Subsystem: "failover",
			Name:      "runs_total",
			Help:      "Total failover coordinator runs by final outcome",
		}, []string{"outcome"}),
		fieldsDroppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadrelay",
			Subsystem: "failover",
			Name:      "fields_dropped_total",
			Help:      "Lead fields removed after a rejected attempt",
		}, []string{"field"}),
		duplicatesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leadrelay",
			Subsystem: "webhook",
			Name:      "duplicates_total",
			Help:      "Submissions rejected as duplicates",
		}),
		submissionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leadrelay",
			Subsystem: "monday",
			Name:      "submission_seconds",
			Help:      "Latency of a single create_item call",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.attemptsTotal, m.failoverTotal, m.fieldsDroppedTotal, m.duplicatesTotal, m.submissionLatency)
	return m
}

func (m *LeadMetrics) ObserveAttempt(outcome string) {
	if m == nil {
		return
	}
	m.attemptsTotal.WithLabelValues(outcome).Inc()
}

func (m *LeadMetrics) ObserveFailover(outcome string) {
	if m == nil {
		return
	}
	m.failoverTotal.WithLabelValues(outcome).Inc()
}

func (m *LeadMetrics) ObserveFieldDropped(field string) {
	if m == nil {
		return
	}
	m.fieldsDroppedTotal.WithLabelValues(field).Inc()
}

func (m *LeadMetrics) ObserveDuplicate() {
	if m == nil {
		return
	}
	m.duplicatesTotal.Inc()
}

func (m *LeadMetrics) ObserveSubmissionLatency(seconds float64) {
	if m == nil {
		return
	}
	m.submissionLatency.Observe(seconds)
}
