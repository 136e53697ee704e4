package httpx

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unisync-backend/internal/logger"
)

func TestLogging(t *testing.T) {
	t.Run("Should log the final status with a request id", func(t *testing.T) {
		var out bytes.Buffer
		log := logger.NewLogger(logger.Config{Level: "info", JSON: true, Output: &out})

		var fromCtx logger.Logger
		h := Logging(log, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fromCtx = logger.FromContext(r.Context())
			w.WriteHeader(http.StatusTeapot)
		}))
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
		req.Header.Set("X-Request-Id", "req-1")

		h.ServeHTTP(rec, req)

		require.NotNil(t, fromCtx)
		assert.Equal(t, "req-1", rec.Header().Get("X-Request-Id"))
		assert.Contains(t, out.String(), `"request_id":"req-1"`)
		assert.Contains(t, out.String(), `"status":418`)
		assert.Contains(t, out.String(), `"path":"/health"`)
	})

	t.Run("Should mint a request id and keep flushing", func(t *testing.T) {
		var out bytes.Buffer
		log := logger.NewLogger(logger.Config{Output: &out})

		h := Logging(log, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, ok := w.(http.Flusher)
			assert.True(t, ok)
			_, _ = w.Write([]byte("ok"))
		}))
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

		assert.Len(t, rec.Header().Get("X-Request-Id"), 36)
		assert.Equal(t, "ok", rec.Body.String())
	})
}
