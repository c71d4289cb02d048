package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// KVMetrics records key-value store operation latencies and failures.
type KVMetrics struct {
	duration *prometheus.HistogramVec
	failure  *prometheus.CounterVec
}

// NewKVMetrics registers the KV metrics on the provided registerer.
func NewKVMetrics(reg prometheus.Registerer, driver string) *KVMetrics {
	if reg == nil {
		return &KVMetrics{}
	}
	labels := prometheus.Labels{"driver": normalizeLabel(driver)}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "kv_operation_duration_seconds",
		Help:        "Duration of key-value store operations in seconds.",
		Buckets:     []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		ConstLabels: labels,
	}, []string{"op"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "kv_operation_failures_total",
		Help:        "Failed key-value store operations.",
		ConstLabels: labels,
	}, []string{"op"})
	reg.MustRegister(duration, failure)
	return &KVMetrics{duration: duration, failure: failure}
}

// Observe records the duration of op and counts it as failed when err is set.
func (k *KVMetrics) Observe(op string, started time.Time, err error) {
	if k == nil || k.duration == nil {
		return
	}
	op = normalizeLabel(op)
	k.duration.WithLabelValues(op).Observe(time.Since(started).Seconds())
	if err != nil {
		k.failure.WithLabelValues(op).Inc()
	}
}
