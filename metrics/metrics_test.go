package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.ModerationAction("timeout", "spam-flood")
	m.ModerationAction("timeout", "spam-flood")
	m.JailSweep("released", 3)
	m.JailSweep("skipped", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ModerationActionsTotal.WithLabelValues("timeout", "spam-flood")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.JailSweepTotal.WithLabelValues("released")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ModerationAction("warn", "spam-flood")
		m.JailSweep("released", 1)
		m.IdentityCheck("username", "found")
		m.BadgeRequest("pending")
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.BadgeRequest("approved")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `modbot_badge_requests_total{status="approved"} 1`)
}
