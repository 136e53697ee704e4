package events

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"unisync-backend/internal/analytics"
	"unisync-backend/internal/auth"
	"unisync-backend/internal/httpx"
	"unisync-backend/internal/logger"
	"unisync-backend/internal/notify"
)

const maxListLimit = 500

// CollectionHandler serves /api/events: GET lists, POST creates.
func CollectionHandler(store Store, changes *notify.Registry, rec *analytics.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized", "unauthorized", "")
			return
		}

		switch r.Method {
		case http.MethodGet:
			f, err := filterFromQuery(r)
			if err != nil {
				httpx.Error(w, http.StatusBadRequest, "invalid query", "invalid_request", err.Error())
				return
			}
			list, err := store.List(r.Context(), uid, f)
			if err != nil {
				writeStoreError(w, r, err)
				return
			}
			httpx.JSON(w, http.StatusOK, list)

		case http.MethodPost:
			var d Draft
			if err := httpx.Decode(w, r, &d); err != nil {
				httpx.Error(w, http.StatusBadRequest, "invalid event", "invalid_request", err.Error())
				return
			}
			d.Title = strings.TrimSpace(d.Title)

			ev, err := store.Create(r.Context(), uid, d)
			if err != nil {
				writeStoreError(w, r, err)
				return
			}
			publish(changes, uid)
			rec.LogRequest(r, analytics.EventCreated, map[string]any{
				"source":   "manual",
				"category": ev.Category,
			})
			httpx.JSON(w, http.StatusCreated, ev)

		default:
			httpx.MethodNotAllowed(w)
		}
	}
}

// ItemHandler serves /api/events/{id}.
func ItemHandler(store Store, changes *notify.Registry, rec *analytics.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized", "unauthorized", "")
			return
		}
		id := r.PathValue("id")

		switch r.Method {
		case http.MethodGet:
			ev, err := store.Get(r.Context(), uid, id)
			if err != nil {
				writeStoreError(w, r, err)
				return
			}
			httpx.JSON(w, http.StatusOK, ev)

		case http.MethodPatch:
			var p Patch
			if err := httpx.Decode(w, r, &p); err != nil {
				httpx.Error(w, http.StatusBadRequest, "invalid patch", "invalid_request", err.Error())
				return
			}
			if p.Empty() {
				httpx.Error(w, http.StatusBadRequest, "nothing to update", "invalid_request", "")
				return
			}

			ev, err := store.Update(r.Context(), uid, id, p)
			if err != nil {
				writeStoreError(w, r, err)
				return
			}
			publish(changes, uid)
			rec.LogRequest(r, analytics.EventUpdated, map[string]any{
				"category": ev.Category,
				"fields":   p.fields(),
			})
			httpx.JSON(w, http.StatusOK, ev)

		case http.MethodDelete:
			if err := store.Delete(r.Context(), uid, id); err != nil {
				writeStoreError(w, r, err)
				return
			}
			publish(changes, uid)
			rec.LogRequest(r, analytics.EventDeleted, map[string]any{})
			w.WriteHeader(http.StatusNoContent)

		default:
			httpx.MethodNotAllowed(w)
		}
	}
}

func publish(changes *notify.Registry, uid string) {
	if changes != nil {
		changes.Publish(uid)
	}
}

func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "event not found", "not_found", "")
	case errors.Is(err, ErrInvalid):
		httpx.Error(w, http.StatusBadRequest, "invalid event", "invalid_event", err.Error())
	default:
		logger.FromContext(r.Context()).Error("event store failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal error", "internal", "")
	}
}

// filterFromQuery reads from, to, category and limit. Bounds accept
// RFC 3339 instants or local dates (YYYY-MM-DD, local midnight).
func filterFromQuery(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	var f Filter

	if v := q.Get("from"); v != "" {
		t, err := ParseInstant(v)
		if err != nil {
			return Filter{}, fmt.Errorf("from: %w", err)
		}
		f.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := ParseInstant(v)
		if err != nil {
			return Filter{}, fmt.Errorf("to: %w", err)
		}
		f.To = t
	}
	if !f.From.IsZero() && !f.To.IsZero() && !f.To.After(f.From) {
		return Filter{}, errors.New("to must be after from")
	}

	for _, raw := range q["category"] {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			c, ok := ParseCategory(part)
			if !ok {
				return Filter{}, fmt.Errorf("unknown category %q", part)
			}
			f.Categories = append(f.Categories, c)
		}
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil || n == 0 {
			return Filter{}, errors.New("limit must be a positive integer")
		}
		f.Limit = min(n, maxListLimit)
	}
	return f, nil
}

// ParseInstant accepts an RFC 3339 instant or a local date.
func ParseInstant(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(Location()), nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q", s)
	}
	return t, nil
}

func (p Patch) fields() []string {
	var out []string
	if p.Title != nil {
		out = append(out, "title")
	}
	if p.Category != nil {
		out = append(out, "category")
	}
	if p.Start != nil {
		out = append(out, "start_ts")
	}
	if p.End != nil {
		out = append(out, "end_ts")
	}
	if p.Location != nil {
		out = append(out, "location")
	}
	if p.Description != nil {
		out = append(out, "description")
	}
	if p.IsDone != nil {
		out = append(out, "is_done")
	}
	if p.Priority != nil {
		out = append(out, "priority")
	}
	return out
}
