package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	Namespace = "eventq"

	// Status label values for success/error metrics
	StatusSuccess = "success"
	StatusError   = "error"
)

// Labels holds constant labels applied to all metrics. These distinguish
// metrics from multiple queue instances sharing one registry.
type Labels struct {
	Environment string // Deployment environment (e.g., "production", "development")
	Service     string // Owning service name
}

// toPrometheusLabels converts Labels to prometheus.Labels map.
// Only non-empty labels are included to avoid empty label values.
func (l Labels) toPrometheusLabels() prometheus.Labels {
	labels := prometheus.Labels{}
	if l.Environment != "" {
		labels["environment"] = l.Environment
	}
	if l.Service != "" {
		labels["service"] = l.Service
	}
	return labels
}

// Metrics tracks queue activity per stream.
type Metrics struct {
	recordsPublished *prometheus.CounterVec
	recordsConsumed  *prometheus.CounterVec
	publishErrors    *prometheus.CounterVec
	callbackPanics   *prometheus.CounterVec

	pendingRecords  *prometheus.GaugeVec
	activeConsumers prometheus.Gauge
}

// New creates Metrics registered on reg with no constant labels.
func New(reg prometheus.Registerer) *Metrics {
	return NewWithLabels(reg, Labels{})
}

// NewWithLabels creates Metrics registered on reg with the given constant
// labels applied to every metric.
func NewWithLabels(reg prometheus.Registerer, labels Labels) *Metrics {
	constLabels := labels.toPrometheusLabels()
	factory := promauto.With(reg)

	return &Metrics{
		recordsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   Namespace,
			Name:        "records_published_total",
			Help:        "Total records published, by stream.",
			ConstLabels: constLabels,
		}, []string{"stream"}),
		recordsConsumed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   Namespace,
			Name:        "records_consumed_total",
			Help:        "Total records delivered to consumer callbacks, by stream.",
			ConstLabels: constLabels,
		}, []string{"stream"}),
		publishErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   Namespace,
			Name:        "publish_errors_total",
			Help:        "Total publish attempts that failed serialization, by stream.",
			ConstLabels: constLabels,
		}, []string{"stream"}),
		callbackPanics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   Namespace,
			Name:        "callback_panics_total",
			Help:        "Total consumer callback panics recovered by the poller, by stream.",
			ConstLabels: constLabels,
		}, []string{"stream"}),
		pendingRecords: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   Namespace,
			Name:        "pending_records",
			Help:        "Records currently pending on a stream.",
			ConstLabels: constLabels,
		}, []string{"stream"}),
		activeConsumers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   Namespace,
			Name:        "active_consumers",
			Help:        "Consumer registrations currently polling.",
			ConstLabels: constLabels,
		}),
	}
}

// RecordPublished increments the published counter for stream.
func (m *Metrics) RecordPublished(stream string) {
	m.recordsPublished.WithLabelValues(stream).Inc()
}

// RecordConsumed increments the consumed counter for stream.
func (m *Metrics) RecordConsumed(stream string) {
	m.recordsConsumed.WithLabelValues(stream).Inc()
}

// PublishError increments the publish error counter for stream.
func (m *Metrics) PublishError(stream string) {
	m.publishErrors.WithLabelValues(stream).Inc()
}

// CallbackPanic increments the recovered-panic counter for stream.
func (m *Metrics) CallbackPanic(stream string) {
	m.callbackPanics.WithLabelValues(stream).Inc()
}

// SetPendingRecords records the current pending depth of stream.
func (m *Metrics) SetPendingRecords(stream string, n int) {
	m.pendingRecords.WithLabelValues(stream).Set(float64(n))
}

// ConsumerStarted increments the active consumer gauge.
func (m *Metrics) ConsumerStarted() {
	m.activeConsumers.Inc()
}

// ConsumerStopped decrements the active consumer gauge.
func (m *Metrics) ConsumerStopped() {
	m.activeConsumers.Dec()
}
