package agenda

import (
	"net/http"
	"time"

	"unisync-backend/internal/auth"
	"unisync-backend/internal/events"
	"unisync-backend/internal/httpx"
	"unisync-backend/internal/logger"
)

func TodayHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := caller(w, r)
		if !ok {
			return
		}
		out, err := svc.Today(r.Context(), uid)
		if err != nil {
			internalError(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, out)
	}
}

// WeekHandler accepts ?start=YYYY-MM-DD; any day of the wanted week works.
func WeekHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := caller(w, r)
		if !ok {
			return
		}

		var day time.Time
		if v := r.URL.Query().Get("start"); v != "" {
			t, err := time.ParseInLocation(time.DateOnly, v, events.Location())
			if err != nil {
				httpx.Error(w, http.StatusBadRequest, "start must be YYYY-MM-DD", "invalid_request", err.Error())
				return
			}
			day = t
		}

		out, err := svc.Week(r.Context(), uid, day)
		if err != nil {
			internalError(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, out)
	}
}

func DeadlinesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := caller(w, r)
		if !ok {
			return
		}
		out, err := svc.Deadlines(r.Context(), uid)
		if err != nil {
			internalError(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, out)
	}
}

func caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w)
		return "", false
	}
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized", "unauthorized", "")
		return "", false
	}
	return uid, true
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context()).Error("agenda failed", "error", err)
	httpx.Error(w, http.StatusInternalServerError, "internal error", "internal", "")
}
