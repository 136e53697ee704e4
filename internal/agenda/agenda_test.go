package agenda

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unisync-backend/internal/auth"
	"unisync-backend/internal/events"
)

func local(y int, m time.Month, d, h, minute int) time.Time {
	return time.Date(y, m, d, h, minute, 0, 0, events.Location())
}

func ev(id, title string, c events.Category, start time.Time, d time.Duration) events.Event {
	return events.Event{ID: id, Title: title, Category: c, Start: start, End: start.Add(d)}
}

func TestWindows(t *testing.T) {
	friday := local(2025, 1, 10, 0, 30)

	t.Run("Should start the day at local midnight", func(t *testing.T) {
		from, to := DayWindow(friday)
		assert.Equal(t, "2025-01-10T00:00:00+07:00", from.Format(time.RFC3339))
		assert.Equal(t, "2025-01-11T00:00:00+07:00", to.Format(time.RFC3339))
	})

	t.Run("Should use local midnight even for UTC input", func(t *testing.T) {
		// 2025-01-09T18:00Z is already Friday in UTC+7
		from, _ := DayWindow(time.Date(2025, 1, 9, 18, 0, 0, 0, time.UTC))
		assert.Equal(t, "2025-01-10", DateKey(from))
	})

	t.Run("Should start the week on Monday", func(t *testing.T) {
		from, to := WeekWindow(friday)
		assert.Equal(t, "2025-01-06T00:00:00+07:00", from.Format(time.RFC3339))
		assert.Equal(t, "2025-01-13T00:00:00+07:00", to.Format(time.RFC3339))

		sunday := local(2025, 1, 12, 23, 0)
		from, _ = WeekWindow(sunday)
		assert.Equal(t, "2025-01-06", DateKey(from))

		monday := local(2025, 1, 13, 0, 0)
		from, _ = WeekWindow(monday)
		assert.Equal(t, "2025-01-13", DateKey(from))
	})

	t.Run("Should look 30 days ahead for deadlines", func(t *testing.T) {
		from, to := DeadlineWindow(friday)
		assert.Equal(t, "2025-01-10", DateKey(from))
		assert.Equal(t, "2025-02-09", DateKey(to))
	})
}

func TestBuildToday(t *testing.T) {
	list := []events.Event{
		ev("1", "Lớp Toán", events.CategoryClass, local(2025, 1, 10, 7, 30), 90*time.Minute),
		ev("2", "Họp nhóm", events.CategoryWork, local(2025, 1, 10, 14, 0), time.Hour),
	}

	t.Run("Should point at the next event with the time left", func(t *testing.T) {
		out := BuildToday(list, local(2025, 1, 10, 12, 30))

		assert.Equal(t, "2025-01-10", out.Date)
		require.Len(t, out.Items, 2)
		assert.Equal(t, "07:30", out.Items[0].StartTime)
		assert.Equal(t, "09:00", out.Items[0].EndTime)
		require.NotNil(t, out.Next)
		assert.Equal(t, "2", out.Next.ID)
		assert.Equal(t, "1h 30m", out.Until)
	})

	t.Run("Should say now when an event starts this minute", func(t *testing.T) {
		out := BuildToday(list, local(2025, 1, 10, 14, 0).Add(20*time.Second))

		assert.Equal(t, "2", out.Next.ID)
		assert.Equal(t, "now", out.Until)
	})

	t.Run("Should fall back to the first event once all started", func(t *testing.T) {
		out := BuildToday(list, local(2025, 1, 10, 20, 0))

		assert.Equal(t, "1", out.Next.ID)
		assert.Empty(t, out.Until)
	})

	t.Run("Should have no next event on an empty day", func(t *testing.T) {
		out := BuildToday(nil, local(2025, 1, 10, 8, 0))

		assert.NotNil(t, out.Items)
		assert.Nil(t, out.Next)
	})
}

func TestBuildWeek(t *testing.T) {
	list := []events.Event{
		ev("1", "Lớp Toán", events.CategoryClass, local(2025, 1, 6, 7, 30), time.Hour),
		ev("2", "Lớp Lý", events.CategoryClass, local(2025, 1, 6, 13, 0), time.Hour),
		ev("3", "Đá bóng", events.CategoryPersonal, local(2025, 1, 12, 17, 0), time.Hour),
	}

	w := BuildWeek(list, local(2025, 1, 10, 9, 0))

	assert.Equal(t, "2025-01-06", w.Start)
	assert.Equal(t, "2025-01-12", w.End)
	assert.Equal(t, 2, w.WeekNumber)
	require.Len(t, w.Days, 7)
	assert.Equal(t, "Monday", w.Days[0].Weekday)
	assert.Len(t, w.Days[0].Items, 2)
	assert.Empty(t, w.Days[3].Items)
	assert.NotNil(t, w.Days[3].Items)
	assert.Equal(t, "2025-01-12", w.Days[6].Date)
	assert.Equal(t, "3", w.Days[6].Items[0].ID)
}

func TestBuildBoard(t *testing.T) {
	now := local(2025, 1, 10, 9, 0) // Friday
	list := []events.Event{
		ev("early", "Kiểm tra 15p", events.CategoryExam, local(2025, 1, 10, 8, 0), time.Hour),
		ev("today", "Thi giữa kỳ", events.CategoryExam, local(2025, 1, 10, 20, 0), time.Hour),
		ev("class", "Lớp Toán", events.CategoryClass, local(2025, 1, 11, 7, 0), time.Hour),
		ev("tomorrow", "Nộp bài tập", events.CategoryAssignment, local(2025, 1, 11, 23, 59), 0),
		ev("next", "Thi Lý", events.CategoryExam, local(2025, 1, 15, 8, 0), time.Hour),
		ev("edge", "Nộp đồ án", events.CategoryAssignment, local(2025, 1, 19, 23, 59), 0),
		ev("far", "Nộp tiểu luận", events.CategoryAssignment, local(2025, 1, 20, 9, 0), 0),
	}

	b := BuildBoard(list, now)

	ids := func(ds []Deadline) []string {
		out := []string{}
		for _, d := range ds {
			out = append(out, d.ID)
		}
		return out
	}
	assert.Equal(t, []string{"early", "today", "tomorrow"}, ids(b.ThisWeek))
	assert.Equal(t, []string{"next", "edge"}, ids(b.NextWeek))
	assert.Equal(t, []string{"far"}, ids(b.Future))

	assert.Equal(t, 0, b.ThisWeek[0].DaysLeft)
	assert.Equal(t, "Hôm nay", b.ThisWeek[1].Label)
	assert.Equal(t, 1, b.ThisWeek[2].DaysLeft)
	assert.Equal(t, "Ngày mai", b.ThisWeek[2].Label)
	assert.Equal(t, PriorityHigh, b.ThisWeek[2].Priority)

	assert.Equal(t, 5, b.NextWeek[0].DaysLeft)
	assert.Equal(t, PriorityMedium, b.NextWeek[0].Priority)
	assert.Equal(t, 9, b.NextWeek[1].DaysLeft)
	assert.Equal(t, PriorityLow, b.NextWeek[1].Priority)
	assert.Equal(t, "9 ngày nữa", b.NextWeek[1].Label)
	assert.Equal(t, "2025-01-20", b.Future[0].DueDate)
}

type failingStore struct{ events.Store }

func (failingStore) List(context.Context, string, events.Filter) ([]events.Event, error) {
	return nil, errors.New("db down")
}

func TestHandlers(t *testing.T) {
	store := events.NewMemoryStore()
	_, err := store.Create(context.Background(), "device-1", events.Draft{
		Title: "Thi cuối kỳ", Category: events.CategoryExam,
		Start: local(2025, 1, 15, 8, 0), End: local(2025, 1, 15, 10, 0),
	})
	require.NoError(t, err)

	svc := NewService(store)
	svc.now = func() time.Time { return local(2025, 1, 10, 9, 0) }

	get := func(h http.HandlerFunc, target, uid string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
		if uid != "" {
			req = req.WithContext(auth.WithUserID(req.Context(), uid))
		}
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec
	}

	t.Run("Should serve the deadline board", func(t *testing.T) {
		rec := get(DeadlinesHandler(svc), "/api/deadlines", "device-1")

		require.Equal(t, http.StatusOK, rec.Code)
		var b Board
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
		require.Len(t, b.NextWeek, 1)
		assert.Equal(t, "Thi cuối kỳ", b.NextWeek[0].Title)
	})

	t.Run("Should serve the requested week", func(t *testing.T) {
		rec := get(WeekHandler(svc), "/api/agenda/week?start=2025-01-15", "device-1")

		require.Equal(t, http.StatusOK, rec.Code)
		var w Week
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &w))
		assert.Equal(t, "2025-01-13", w.Start)
		assert.Len(t, w.Days[2].Items, 1)
	})

	t.Run("Should reject a malformed week start", func(t *testing.T) {
		rec := get(WeekHandler(svc), "/api/agenda/week?start=15-01-2025", "device-1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Should serve today for the caller only", func(t *testing.T) {
		rec := get(TodayHandler(svc), "/api/agenda/today", "device-2")

		require.Equal(t, http.StatusOK, rec.Code)
		var out Today
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.Empty(t, out.Items)
	})

	t.Run("Should require a caller", func(t *testing.T) {
		rec := get(TodayHandler(svc), "/api/agenda/today", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Should hide store failures", func(t *testing.T) {
		rec := get(TodayHandler(NewService(failingStore{})), "/api/agenda/today", "device-1")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
