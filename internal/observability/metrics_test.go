package observability

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordsCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/api/adoption/approve", "POST", 200, 15*time.Millisecond)
	m.RecordError("/api/adoption/approve", "POST", "CONFLICT")
	m.RecordTransition("approve", "changed")
	m.RecordTransition("approve", "changed")
	m.RecordNotification("email", false)
	m.RecordUnbans(3)
	m.RecordUnbans(0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/adoption/approve", "POST", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/api/adoption/approve", "POST", "CONFLICT")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("approve", "changed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("email", "failed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.unbans))
}

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordTransition("reject", "noop")
		m.RecordNotification("whatsapp", true)
		m.RecordUnbans(1)
	})
}

func TestMetrics_HandlerExposesRegistry(t *testing.T) {
	m := NewMetrics()
	m.RecordTransition("reject", "changed")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `adoption_request_transitions_total{action="reject",outcome="changed"} 1`)
}
