package auth

import (
	"context"
	"net/http"
	"strings"

	"unisync-backend/internal/analytics"
	"unisync-backend/internal/httpx"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

type Middleware struct {
	secret []byte
}

func New(secret []byte) Middleware {
	return Middleware{secret: secret}
}

// Wrap rejects requests without a valid device token. The token comes from
// the Authorization header or, for calendar clients that cannot set
// headers, the "token" query parameter.
func (m Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := tokenFromRequest(r)
		if tokenString == "" {
			httpx.Error(w, http.StatusUnauthorized, "missing token", "unauthorized", "")
			return
		}

		userID, err := ParseToken(m.secret, tokenString)
		if err != nil {
			httpx.Error(w, http.StatusUnauthorized, "invalid token", "unauthorized", "")
			return
		}

		ctx := WithUserID(r.Context(), userID)
		ctx = analytics.WithUserID(ctx, userID)

		next(w, r.WithContext(ctx))
	}
}

// Optional is Wrap for endpoints that also serve anonymous callers: a
// missing token passes through without an identity, a bad one is still 401.
func (m Middleware) Optional(next http.HandlerFunc) http.HandlerFunc {
	required := m.Wrap(next)
	return func(w http.ResponseWriter, r *http.Request) {
		if tokenFromRequest(r) == "" {
			next(w, r)
			return
		}
		required(w, r)
	}
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(userIDKey).(string)
	return uid, ok && uid != ""
}
