// Package metrics exposes the webhook engine counters to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "webhook"

// Delivery results.
const (
	ResultOK     = "ok"
	ResultStatus = "status"
	ResultError  = "error"
)

// Collector is a prometheus.Collector for the poll and delivery loop.
// A nil *Collector records nothing.
type Collector struct {
	events        *prometheus.CounterVec
	deliveries    *prometheus.CounterVec
	chunks        prometheus.Counter
	cycleDuration prometheus.Histogram
	checkpoint    prometheus.Gauge
	fetchErrors   *prometheus.CounterVec
}

// NewCollector returns a new Collector.
func NewCollector() *Collector {
	return &Collector{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "events_total",
				Help:      "The number of envelopes produced, by type.",
			}, []string{"type"},
		),
		deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "deliveries_total",
				Help:      "The number of payload POSTs, by result.",
			}, []string{"result"},
		),
		chunks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "chunks_total",
				Help:      "The number of payload chunks attempted.",
			},
		),
		cycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "cycle_duration_seconds",
				Help:      "The time taken by one fetch and deliver cycle.",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),
		checkpoint: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "checkpoint_timestamp_seconds",
				Help:      "The unix time rows are fetched from in the next cycle.",
			},
		),
		fetchErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "fetch_errors_total",
				Help:      "The number of failed change queries, by entity kind.",
			}, []string{"kind"},
		),
	}
}

// AddEvents counts n envelopes of the given type.
func (c *Collector) AddEvents(eventType string, n int) {
	if c == nil || n == 0 {
		return
	}
	c.events.WithLabelValues(eventType).Add(float64(n))
}

// Delivery counts one POST with the given result.
func (c *Collector) Delivery(result string) {
	if c == nil {
		return
	}
	c.chunks.Inc()
	c.deliveries.WithLabelValues(result).Inc()
}

// ObserveCycle records the duration of one cycle.
func (c *Collector) ObserveCycle(d time.Duration) {
	if c == nil {
		return
	}
	c.cycleDuration.Observe(d.Seconds())
}

// SetCheckpoint records the current checkpoint.
func (c *Collector) SetCheckpoint(unix int64) {
	if c == nil {
		return
	}
	c.checkpoint.Set(float64(unix))
}

// FetchError counts one failed query of kind.
func (c *Collector) FetchError(kind string) {
	if c == nil {
		return
	}
	c.fetchErrors.WithLabelValues(kind).Inc()
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.events.Describe(ch)
	c.deliveries.Describe(ch)
	c.chunks.Describe(ch)
	c.cycleDuration.Describe(ch)
	c.checkpoint.Describe(ch)
	c.fetchErrors.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.events.Collect(ch)
	c.deliveries.Collect(ch)
	c.chunks.Collect(ch)
	c.cycleDuration.Collect(ch)
	c.checkpoint.Collect(ch)
	c.fetchErrors.Collect(ch)
}
