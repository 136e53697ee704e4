package quickadd

import (
	"errors"
	"net/http"
	"unicode/utf8"

	"unisync-backend/internal/ai"
	"unisync-backend/internal/analytics"
	"unisync-backend/internal/auth"
	"unisync-backend/internal/events"
	"unisync-backend/internal/httpx"
	"unisync-backend/internal/logger"
	"unisync-backend/internal/metrics"
	"unisync-backend/internal/notify"
)

type parseRequest struct {
	Text string `json:"text"`
}

// ParseHandler turns a sentence into a normalized event without saving it.
func ParseHandler(parser *Parser, rec *analytics.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			httpx.MethodNotAllowed(w)
			return
		}

		res, ok := parseFromRequest(w, r, parser, rec)
		if !ok {
			return
		}
		httpx.JSON(w, http.StatusOK, res.Event)
	}
}

// QuickCreateHandler parses a sentence and stores the result for the caller.
func QuickCreateHandler(parser *Parser, store events.Store, changes *notify.Registry, rec *analytics.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			httpx.MethodNotAllowed(w)
			return
		}

		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized", "unauthorized", "")
			return
		}

		res, ok := parseFromRequest(w, r, parser, rec)
		if !ok {
			return
		}

		ev, err := store.Create(r.Context(), uid, res.Event)
		if errors.Is(err, events.ErrInvalid) {
			httpx.Error(w, http.StatusBadRequest, "invalid event", "invalid_event", err.Error())
			return
		}
		if err != nil {
			logger.FromContext(r.Context()).Error("quick-add create failed", "error", err)
			httpx.Error(w, http.StatusInternalServerError, "could not save event", "internal", "")
			return
		}

		if changes != nil {
			changes.Publish(uid)
		}
		rec.LogRequest(r, analytics.EventCreated, map[string]any{
			"source":   "quick_add",
			"category": ev.Category,
		})

		httpx.JSON(w, http.StatusCreated, ev)
	}
}

// parseFromRequest decodes {text}, runs the parser and writes the error
// response itself when it returns false.
func parseFromRequest(w http.ResponseWriter, r *http.Request, parser *Parser, rec *analytics.Recorder) (Result, bool) {
	var req parseRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		metrics.CountQuickAdd("invalid_request")
		httpx.Error(w, http.StatusBadRequest, "text is required", "invalid_request", err.Error())
		return Result{}, false
	}

	res, err := parser.Parse(r.Context(), req.Text)
	if err != nil {
		writeParseError(w, r, err, rec)
		return Result{}, false
	}

	metrics.CountQuickAdd("ok")
	repairs := make([]string, 0, len(res.Repairs))
	for _, rp := range res.Repairs {
		repairs = append(repairs, string(rp))
	}
	rec.LogRequest(r, analytics.EventQuickAddParsed, map[string]any{
		"text_length": utf8.RuneCountInString(req.Text),
		"category":    res.Event.Category,
		"repairs":     repairs,
	})
	return res, true
}

func writeParseError(w http.ResponseWriter, r *http.Request, err error, rec *analytics.Recorder) {
	pe, ok := AsParseError(err)
	if !ok {
		logger.FromContext(r.Context()).Error("quick-add failed", "error", err)
		metrics.CountQuickAdd("internal")
		httpx.Error(w, http.StatusInternalServerError, "could not parse, try again or enter manually", "internal", "")
		return
	}

	metrics.CountQuickAdd(pe.Code())
	rec.LogRequest(r, analytics.EventQuickAddFailed, map[string]any{"error_kind": pe.Code()})

	detail := ""
	if pe.Err != nil {
		detail = pe.Err.Error()
	}

	switch {
	case errors.Is(pe, ErrInvalidRequest):
		httpx.Error(w, http.StatusBadRequest, "text is required", pe.Code(), detail)
	case errors.Is(pe, ErrMalformedOutput):
		httpx.JSON(w, http.StatusUnprocessableEntity, httpx.ErrorBody{
			Error:  "could not parse, try again or enter manually",
			Code:   pe.Code(),
			Detail: detail,
			Raw:    pe.Raw,
		})
	case errors.Is(pe, ai.ErrNotConfigured):
		httpx.Error(w, http.StatusServiceUnavailable, "event parsing is not configured", pe.Code(), "")
	default:
		httpx.Error(w, http.StatusBadGateway, "could not reach the parsing service, try again", pe.Code(), detail)
	}
}
