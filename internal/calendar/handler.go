package calendar

import (
	"bytes"
	"net/http"
	"time"

	"unisync-backend/internal/auth"
	"unisync-backend/internal/events"
	"unisync-backend/internal/httpx"
	"unisync-backend/internal/logger"
)

// FeedHandler serves the caller's events as text/calendar. Calendar apps
// pass the device token as ?token=.
func FeedHandler(store events.Store) http.HandlerFunc {
	return feedHandler(store, time.Now)
}

func feedHandler(store events.Store, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			httpx.MethodNotAllowed(w)
			return
		}
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized", "unauthorized", "")
			return
		}

		log := logger.FromContext(r.Context())
		at := now()
		from, to := Window(at)

		list, err := store.List(r.Context(), uid, events.Filter{From: from, To: to})
		if err != nil {
			log.Error("calendar list failed", "error", err)
			httpx.Error(w, http.StatusInternalServerError, "internal error", "internal", "")
			return
		}

		var buf bytes.Buffer
		if err := Write(&buf, list, at); err != nil {
			log.Error("calendar encode failed", "error", err)
			httpx.Error(w, http.StatusInternalServerError, "internal error", "internal", "")
			return
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", `inline; filename="unisync.ics"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}
