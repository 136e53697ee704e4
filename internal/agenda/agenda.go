// Package agenda builds the read-only views over a user's events: today's
// dashboard, the weekly grid and the deadline board. All day boundaries are
// local to events.Location().
package agenda

import (
	"fmt"
	"strings"
	"time"

	"unisync-backend/internal/events"
)

const (
	deadlineHorizonDays = 30

	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Item is an event with its local clock times, as the views show them.
type Item struct {
	events.Event
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func newItem(ev events.Event) Item {
	loc := events.Location()
	return Item{
		Event:     ev,
		StartTime: ev.Start.In(loc).Format("15:04"),
		EndTime:   ev.End.In(loc).Format("15:04"),
	}
}

type Today struct {
	Date  string `json:"date"`
	Items []Item `json:"items"`
	// Next is the first event starting at or after now, or the first
	// event of the day when all have started.
	Next *Item `json:"next"`
	// Until is the time left before Next, like "1h 30m"; "now" when it
	// starts this minute and empty when it already started.
	Until string `json:"until"`
}

type Day struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Items   []Item `json:"items"`
}

type Week struct {
	Start      string `json:"start"`
	End        string `json:"end"`
	WeekNumber int    `json:"week_number"`
	Days       []Day  `json:"days"`
}

type Deadline struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Category events.Category `json:"category"`
	DueDate  string          `json:"due_date"`
	DueAt    time.Time       `json:"due_at"`
	DaysLeft int             `json:"days_left"`
	Priority string          `json:"priority"`
	Label    string          `json:"label"`
}

type Board struct {
	ThisWeek []Deadline `json:"this_week"`
	NextWeek []Deadline `json:"next_week"`
	Future   []Deadline `json:"future"`
}

// StartOfDay is local midnight of t's day.
func StartOfDay(t time.Time) time.Time {
	lt := t.In(events.Location())
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, lt.Location())
}

// StartOfWeek is local Monday 00:00 of t's week.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func DateKey(t time.Time) string {
	return t.In(events.Location()).Format(time.DateOnly)
}

// DayWindow is [local midnight, next local midnight) around t.
func DayWindow(t time.Time) (time.Time, time.Time) {
	start := StartOfDay(t)
	return start, start.AddDate(0, 0, 1)
}

func WeekWindow(t time.Time) (time.Time, time.Time) {
	start := StartOfWeek(t)
	return start, start.AddDate(0, 0, 7)
}

func DeadlineWindow(t time.Time) (time.Time, time.Time) {
	start := StartOfDay(t)
	return start, start.AddDate(0, 0, deadlineHorizonDays)
}

// BuildToday expects the day's events ordered by start.
func BuildToday(list []events.Event, now time.Time) Today {
	out := Today{Date: DateKey(now), Items: make([]Item, 0, len(list))}
	for _, ev := range list {
		out.Items = append(out.Items, newItem(ev))
	}
	if len(out.Items) == 0 {
		return out
	}

	nowMinute := now.In(events.Location()).Truncate(time.Minute)
	for i := range out.Items {
		start := out.Items[i].Start.In(events.Location()).Truncate(time.Minute)
		if !start.Before(nowMinute) {
			out.Next = &out.Items[i]
			out.Until = formatUntil(start.Sub(nowMinute))
			return out
		}
	}
	out.Next = &out.Items[0]
	return out
}

func formatUntil(d time.Duration) string {
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	if len(parts) == 0 {
		return "now"
	}
	return strings.Join(parts, " ")
}

// BuildWeek groups the week's events by local start date. All seven days
// are present, Monday first.
func BuildWeek(list []events.Event, anyDay time.Time) Week {
	start, end := WeekWindow(anyDay)
	_, isoWeek := start.ISOWeek()

	w := Week{
		Start:      DateKey(start),
		End:        DateKey(end.AddDate(0, 0, -1)),
		WeekNumber: isoWeek,
		Days:       make([]Day, 7),
	}
	index := make(map[string]int, 7)
	for i := range w.Days {
		d := start.AddDate(0, 0, i)
		key := DateKey(d)
		w.Days[i] = Day{Date: key, Weekday: d.Weekday().String(), Items: []Item{}}
		index[key] = i
	}

	for _, ev := range list {
		if i, ok := index[DateKey(ev.Start)]; ok {
			w.Days[i].Items = append(w.Days[i].Items, newItem(ev))
		}
	}
	return w
}

// BuildBoard keeps assignments and exams, ranks them by how close they are
// and splits them by Monday-based week.
func BuildBoard(list []events.Event, now time.Time) Board {
	today := StartOfDay(now)
	weekStart := StartOfWeek(now)
	endOfWeek := weekStart.AddDate(0, 0, 7)
	endOfNextWeek := weekStart.AddDate(0, 0, 14)

	b := Board{ThisWeek: []Deadline{}, NextWeek: []Deadline{}, Future: []Deadline{}}
	for _, ev := range list {
		if !ev.Category.IsDeadline() {
			continue
		}
		dueDay := StartOfDay(ev.Start)
		left := max(daysBetween(today, dueDay), 0)

		d := Deadline{
			ID:       ev.ID,
			Title:    ev.Title,
			Category: ev.Category,
			DueDate:  DateKey(ev.Start),
			DueAt:    ev.Start,
			DaysLeft: left,
			Priority: priorityFor(left),
			Label:    urgencyLabel(left),
		}

		switch {
		case dueDay.Before(endOfWeek):
			b.ThisWeek = append(b.ThisWeek, d)
		case dueDay.Before(endOfNextWeek):
			b.NextWeek = append(b.NextWeek, d)
		default:
			b.Future = append(b.Future, d)
		}
	}
	return b
}

// daysBetween counts calendar days, not 24h periods.
func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}

func priorityFor(daysLeft int) string {
	switch {
	case daysLeft <= 3:
		return PriorityHigh
	case daysLeft <= 7:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func urgencyLabel(daysLeft int) string {
	switch daysLeft {
	case 0:
		return "Hôm nay"
	case 1:
		return "Ngày mai"
	}
	return fmt.Sprintf("%d ngày nữa", daysLeft)
}
