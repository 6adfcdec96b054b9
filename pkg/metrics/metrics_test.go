package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stream = "development_workstation.loadgen.v0.load_event.json"

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordPublished(stream)
	m.RecordPublished(stream)
	m.RecordConsumed(stream)
	m.PublishError(stream)
	m.CallbackPanic(stream)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.recordsPublished.WithLabelValues(stream)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recordsConsumed.WithLabelValues(stream)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.publishErrors.WithLabelValues(stream)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.callbackPanics.WithLabelValues(stream)))
}

func TestMetrics_Gauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SetPendingRecords(stream, 7)
	assert.Equal(t, 7.0, testutil.ToFloat64(m.pendingRecords.WithLabelValues(stream)))

	m.SetPendingRecords(stream, 0)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.pendingRecords.WithLabelValues(stream)))

	m.ConsumerStarted()
	m.ConsumerStarted()
	m.ConsumerStopped()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeConsumers))
}

func TestMetrics_ConstLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithLabels(reg, Labels{Environment: "development", Service: "loadgen"})

	m.RecordPublished(stream)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	found := false
	for _, mf := range families {
		if mf.GetName() != "eventq_records_published_total" {
			continue
		}
		found = true
		labels := map[string]string{}
		for _, lp := range mf.GetMetric()[0].GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		assert.Equal(t, "development", labels["environment"])
		assert.Equal(t, "loadgen", labels["service"])
		assert.Equal(t, stream, labels["stream"])
	}
	assert.True(t, found, "expected eventq_records_published_total to be gathered")
}

func TestLabels_EmptyOmitted(t *testing.T) {
	labels := Labels{Environment: "production"}.toPrometheusLabels()
	assert.Equal(t, prometheus.Labels{"environment": "production"}, labels)
}
