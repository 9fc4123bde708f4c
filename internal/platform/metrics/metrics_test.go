package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var pb dto.Metric
	require.NoError(t, c.Write(&pb))
	return pb.GetCounter().GetValue()
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObservePosting(OutcomePosted, 0.1)
		m.IncAuditFailure()
		m.ObserveDispatch("kafka", "ok")
	})
	assert.NotNil(t, m.Handler())
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObservePosting(OutcomePosted, 0.01)
	m.ObservePosting(OutcomePosted, 0.02)
	m.ObservePosting(OutcomeIdempotent, 0.001)
	m.IncAuditFailure()
	m.ObserveDispatch("search", "failed")

	assert.Equal(t, 2.0, counterValue(t, m.PostingsTotal.WithLabelValues(OutcomePosted)))
	assert.Equal(t, 1.0, counterValue(t, m.PostingsTotal.WithLabelValues(OutcomeIdempotent)))
	assert.Equal(t, 1.0, counterValue(t, m.AuditFailures))
	assert.Equal(t, 1.0, counterValue(t, m.OutboxDispatched.WithLabelValues("search", "failed")))
}
