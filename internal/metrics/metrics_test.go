package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordUpdate("message", true)
	m.RecordUpdate("message", false)
	m.RecordUpdate("message", false)
	m.RecordFlowStarted("add_diary")
	m.RecordFlowFinished("add_diary", nil)
	m.RecordFlowFinished("add_diary", errors.New("boom"))
	m.RecordBackendCall("create_diary_entry", time.Millisecond, errors.New("boom"))
	m.RecordPhotoRelay(true)
	m.RecordReconnect(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.updates.WithLabelValues("message", "accepted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.updates.WithLabelValues("message", "dropped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.flowsStarted.WithLabelValues("add_diary")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.flowsFinished.WithLabelValues("add_diary", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.flowsFinished.WithLabelValues("add_diary", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.backendErrors.WithLabelValues("create_diary_entry")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.photoRelays.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reconnects.WithLabelValues("ok")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordUpdate("message", true)
		m.RecordFlowStarted("add_food")
		m.RecordFlowFinished("add_food", nil)
		m.RecordBackendCall("list_products", time.Second, nil)
		m.RecordPhotoRelay(false)
		m.RecordReconnect(errors.New("x"))
	})
}
