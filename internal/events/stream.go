package events

import (
	"fmt"
	"net/http"
	"time"

	"unisync-backend/internal/auth"
	"unisync-backend/internal/httpx"
	"unisync-backend/internal/notify"
)

const keepAliveInterval = 25 * time.Second

// StreamHandler holds a server-sent events connection open and writes one
// "changed" event whenever the caller's events change. Signals carry no
// payload; clients re-fetch what they show.
func StreamHandler(changes *notify.Registry) http.HandlerFunc {
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
		flusher, ok := w.(http.Flusher)
		if !ok {
			httpx.Error(w, http.StatusInternalServerError, "streaming unsupported", "internal", "")
			return
		}

		// One pending signal is enough: several changes collapse into one re-fetch.
		pending := make(chan struct{}, 1)
		unsubscribe := changes.Subscribe(uid, func() {
			select {
			case pending <- struct{}{}:
			default:
			}
		})
		defer unsubscribe()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-pending:
				if _, err := fmt.Fprint(w, "event: changed\ndata: {}\n\n"); err != nil {
					return
				}
				flusher.Flush()
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
