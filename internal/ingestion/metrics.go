package ingestion

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	batchResultCompleted = "completed"
	batchResultRejected  = "rejected"
	batchResultError     = "error"
)

// Metrics tracks ingestion throughput. A nil *Metrics records nothing.
type Metrics struct {
	rows     *prometheus.CounterVec
	batches  *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics registers the ingestion collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		rows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadcrm",
			Subsystem: "ingestion",
			Name:      "rows_total",
			Help:      "Uploaded lead rows by outcome.",
		}, []string{"outcome"}),
		batches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadcrm",
			Subsystem: "ingestion",
			Name:      "batches_total",
			Help:      "Upload batches by result.",
		}, []string{"template", "result"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leadcrm",
			Subsystem: "ingestion",
			Name:      "batch_duration_seconds",
			Help:      "Time spent reconciling one upload batch.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}
}

func (m *Metrics) observeBatch(template string, report Report, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rows.WithLabelValues("processed").Add(float64(report.ProcessedCount))
	m.rows.WithLabelValues("failed").Add(float64(report.FailedCount))
	m.batches.WithLabelValues(template, batchResultCompleted).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *Metrics) observeFailure(template string, result string) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(template, result).Inc()
}
