package auth

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/google/uuid"

	"unisync-backend/internal/httpx"
	"unisync-backend/internal/logger"
	"unisync-backend/internal/notify"
)

// IdentityHandler issues a fresh device identity: a random user id and a
// token naming it. It stands in for accounts, which this service does not have.
func IdentityHandler(secret []byte, ttl time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			httpx.MethodNotAllowed(w)
			return
		}

		userID := uuid.NewString()
		token, err := GenerateToken(secret, userID, ttl)
		if err != nil {
			logger.FromContext(r.Context()).Error("sign device token", "error", err)
			httpx.Error(w, http.StatusInternalServerError, "could not issue identity", "internal", "")
			return
		}

		httpx.JSON(w, http.StatusOK, map[string]any{
			"user_id": userID,
			"token":   token,
		})
	}
}

// ForgetHandler erases every row owned by the calling device and tells its
// open listeners to re-fetch.
func ForgetHandler(dbx *sql.DB, changes *notify.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized", "unauthorized", "")
			return
		}

		tx, err := dbx.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "db begin failed", "internal", "")
			return
		}
		defer func() { _ = tx.Rollback() }()

		res, err := tx.ExecContext(r.Context(), `DELETE FROM events WHERE user_id = $1`, uid)
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "delete events failed", "internal", "")
			return
		}
		deleted, _ := res.RowsAffected()

		if _, err := tx.ExecContext(r.Context(), `DELETE FROM analytics_events WHERE user_id = $1`, uid); err != nil {
			httpx.Error(w, http.StatusInternalServerError, "delete analytics_events failed", "internal", "")
			return
		}

		if err := tx.Commit(); err != nil {
			httpx.Error(w, http.StatusInternalServerError, "db commit failed", "internal", "")
			return
		}

		if changes != nil {
			changes.Publish(uid)
		}

		httpx.JSON(w, http.StatusOK, map[string]any{
			"ok":             true,
			"events_deleted": deleted,
		})
	}
}
