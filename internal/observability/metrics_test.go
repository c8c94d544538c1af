package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecordAdmission(t *testing.T) {
	m := NewMetrics()
	m.RecordAdmission(OutcomeAssigned, 2*time.Millisecond)
	m.RecordAdmission(OutcomeAssigned, 3*time.Millisecond)
	m.RecordAdmission(OutcomeQueued, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.admissions.WithLabelValues(OutcomeAssigned)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.admissions.WithLabelValues(OutcomeQueued)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.admissionLatency))
}

func TestMetricsNilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordAdmission(OutcomeError, time.Millisecond)
		m.RecordRedraw("assigned")
		m.SetQueueDepth(3)
		m.RecordRequest("/", "GET", 200, time.Millisecond)
	})
}
