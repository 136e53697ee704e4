// Package ratelimit caps how often one caller may hit the LLM-backed
// endpoints.
package ratelimit

import (
	"net/http"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"unisync-backend/internal/auth"
	"unisync-backend/internal/httpx"
	"unisync-backend/internal/logger"
	"unisync-backend/internal/metrics"
)

// PerMinute limits each device (or client IP before a device is known) to
// limit requests per minute. A non-positive limit disables limiting.
func PerMinute(limit int64) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	lim := limiter.New(memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "unisync",
		CleanUpInterval: 5 * time.Minute,
	}), limiter.Rate{Period: time.Minute, Limit: limit})

	mw := stdlib.NewMiddleware(lim,
		stdlib.WithKeyGetter(keyFor(lim)),
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.CountQuickAdd("rate_limited")
			httpx.Error(w, http.StatusTooManyRequests, "too many requests, try again in a minute", "rate_limited", "")
		}),
		stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			logger.FromContext(r.Context()).Error("rate limiter failed", "error", err)
			httpx.Error(w, http.StatusInternalServerError, "internal error", "internal", "")
		}),
	)
	return mw.Handler
}

// PerMinuteFunc is PerMinute for handler funcs. Every handler it wraps
// draws from the same per-caller budget.
func PerMinuteFunc(limit int64) func(http.HandlerFunc) http.HandlerFunc {
	mw := PerMinute(limit)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return mw(next).ServeHTTP
	}
}

func keyFor(lim *limiter.Limiter) stdlib.KeyGetter {
	return func(r *http.Request) string {
		if uid, ok := auth.UserIDFromContext(r.Context()); ok {
			return "device:" + uid
		}
		return "ip:" + lim.GetIPKey(r)
	}
}
