package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics tracks mutation and audit activity per record kind.
type SyncMetrics struct {
	mutations     *prometheus.CounterVec
	batchSize     prometheus.Histogram
	auditEntries  prometheus.Counter
	auditFailures prometheus.Counter
}

// New registers and returns the sync metric set.
func New(reg prometheus.Registerer) *SyncMetrics {
	m := &SyncMetrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "therapysync",
			Name:      "mutations_total",
			Help:      "Record mutations grouped by record kind and outcome category.",
		}, []string{"kind", "outcome"}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "therapysync",
			Name:      "sync_batch_size",
			Help:      "Number of records per remote sync batch.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		auditEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "therapysync",
			Name:      "audit_entries_total",
			Help:      "Audit entries written to the user entry sink.",
		}),
		auditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "therapysync",
			Name:      "audit_failures_total",
			Help:      "Audit entry writes that failed after a committed mutation.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.mutations, m.batchSize, m.auditEntries, m.auditFailures)
	}
	return m
}

func (m *SyncMetrics) ObserveMutation(kind, outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.mutations.WithLabelValues(kind, outcome).Add(float64(n))
}

func (m *SyncMetrics) ObserveBatch(size int) {
	if m == nil {
		return
	}
	m.batchSize.Observe(float64(size))
}

func (m *SyncMetrics) ObserveAuditEntries(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.auditEntries.Add(float64(n))
}

func (m *SyncMetrics) ObserveAuditFailure() {
	if m == nil {
		return
	}
	m.auditFailures.Inc()
}
