package events

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unisync-backend/internal/auth"
	"unisync-backend/internal/notify"
)

func serve(h http.HandlerFunc, method, target, body, uid string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if uid != "" {
		req = req.WithContext(auth.WithUserID(req.Context(), uid))
	}
	rec := httptest.NewRecorder()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/events/{id}", h)
	mux.HandleFunc("/api/events", h)
	mux.ServeHTTP(rec, req)
	return rec
}

func TestCollectionHandler(t *testing.T) {
	body := `{"title":"Họp nhóm AI","category":"work","start_ts":"2025-01-11T14:00:00+07:00","end_ts":"2025-01-11T15:00:00+07:00","location":"Thư viện","description":""}`

	t.Run("Should create, publish and list", func(t *testing.T) {
		store := NewMemoryStore()
		changes := notify.NewRegistry()
		signals := 0
		defer changes.Subscribe("device-1", func() { signals++ })()
		h := CollectionHandler(store, changes, nil)

		rec := serve(h, http.MethodPost, "/api/events", body, "device-1")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, 1, signals)

		var created Event
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "device-1", created.UserID)

		rec = serve(h, http.MethodGet, "/api/events?from=2025-01-11&to=2025-01-12&category=work,class", "", "device-1")
		require.Equal(t, http.StatusOK, rec.Code)
		var list []Event
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, created.ID, list[0].ID)
	})

	t.Run("Should require a caller", func(t *testing.T) {
		rec := serve(CollectionHandler(NewMemoryStore(), nil, nil), http.MethodGet, "/api/events", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Should reject invalid events", func(t *testing.T) {
		h := CollectionHandler(NewMemoryStore(), nil, nil)

		rec := serve(h, http.MethodPost, "/api/events", `{"title":"x","category":"party","start_ts":"2025-01-11T14:00:00+07:00","end_ts":"2025-01-11T15:00:00+07:00"}`, "u")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_event")

		rec = serve(h, http.MethodPost, "/api/events", `{"title":`, "u")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Should reject bad query parameters", func(t *testing.T) {
		h := CollectionHandler(NewMemoryStore(), nil, nil)

		for _, q := range []string{"from=yesterday", "category=party", "limit=0", "from=2025-01-12&to=2025-01-11"} {
			rec := serve(h, http.MethodGet, "/api/events?"+q, "", "u")
			assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		}
	})

	t.Run("Should reject other methods", func(t *testing.T) {
		rec := serve(CollectionHandler(NewMemoryStore(), nil, nil), http.MethodPut, "/api/events", "", "u")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestItemHandler(t *testing.T) {
	start := time.Date(2025, 1, 11, 14, 0, 0, 0, Location())

	setup := func(t *testing.T) (*MemoryStore, *notify.Registry, Event) {
		t.Helper()
		store := NewMemoryStore()
		ev, err := store.Create(t.Context(), "device-1", Draft{Title: "Họp", Category: CategoryWork, Start: start, End: start.Add(time.Hour)})
		require.NoError(t, err)
		return store, notify.NewRegistry(), ev
	}

	t.Run("Should get the caller's event only", func(t *testing.T) {
		store, changes, ev := setup(t)
		h := ItemHandler(store, changes, nil)

		rec := serve(h, http.MethodGet, "/api/events/"+ev.ID, "", "device-1")
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = serve(h, http.MethodGet, "/api/events/"+ev.ID, "", "device-2")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Should patch and publish", func(t *testing.T) {
		store, changes, ev := setup(t)
		signals := 0
		defer changes.Subscribe("device-1", func() { signals++ })()
		h := ItemHandler(store, changes, nil)

		rec := serve(h, http.MethodPatch, "/api/events/"+ev.ID, `{"is_done":true,"location":"A2"}`, "device-1")

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got Event
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.True(t, got.IsDone)
		assert.Equal(t, "A2", got.Location)
		assert.Equal(t, 1, signals)
	})

	t.Run("Should reject an empty patch", func(t *testing.T) {
		store, changes, ev := setup(t)

		rec := serve(ItemHandler(store, changes, nil), http.MethodPatch, "/api/events/"+ev.ID, `{}`, "device-1")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Should delete and then report not found", func(t *testing.T) {
		store, changes, ev := setup(t)
		h := ItemHandler(store, changes, nil)

		rec := serve(h, http.MethodDelete, "/api/events/"+ev.ID, "", "device-1")
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = serve(h, http.MethodDelete, "/api/events/"+ev.ID, "", "device-1")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
