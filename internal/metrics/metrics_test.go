package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	t.Run("Should count quick-add outcomes by label", func(t *testing.T) {
		before := testutil.ToFloat64(quickAddRequests.WithLabelValues("malformed_output"))

		CountQuickAdd("malformed_output")
		CountQuickAdd("malformed_output")

		after := testutil.ToFloat64(quickAddRequests.WithLabelValues("malformed_output"))
		assert.Equal(t, before+2, after)
	})

	t.Run("Should count repairs by label", func(t *testing.T) {
		before := testutil.ToFloat64(quickAddRepairs.WithLabelValues("year"))

		CountRepair("year")

		assert.Equal(t, before+1, testutil.ToFloat64(quickAddRepairs.WithLabelValues("year")))
	})
}

func TestHandler(t *testing.T) {
	ObserveLLM(300 * time.Millisecond)
	CountQuickAdd("ok")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "unisync_quickadd_requests_total")
	assert.Contains(t, rec.Body.String(), "unisync_llm_request_duration_seconds")
}
