package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bnema/memochat/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordTurns(t *testing.T) {
	m := NewMetrics("memochat")

	m.TurnFinished("committed", 1200*time.Millisecond)
	m.TurnFinished("aborted", 300*time.Millisecond)
	m.TurnFinished("committed", 800*time.Millisecond)
	m.ToolDispatched("saveUserData")
	m.BackendFailed(domain.BackendServerError)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Turns.WithLabelValues("committed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues("aborted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("saveUserData")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackendErrors.WithLabelValues("server_error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.TurnLatency))
}

func TestMetricsAreIndependentPerInstance(t *testing.T) {
	first := NewMetrics("memochat")
	second := NewMetrics("memochat")

	first.ObserveProxyRequest("ok")

	assert.Equal(t, 1.0, testutil.ToFloat64(first.ProxyRequests.WithLabelValues("ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(second.ProxyRequests.WithLabelValues("ok")))
}

func TestMetricsHandlerExposesRegistry(t *testing.T) {
	m := NewMetrics("memochat")
	m.ObserveProxyRequest("upstream_error")
	m.ObserveUpstreamLatency(40 * time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `memochat_proxy_requests_total{outcome="upstream_error"} 1`)
	assert.Contains(t, string(body), "memochat_upstream_latency_ms_bucket")
}
