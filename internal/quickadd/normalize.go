package quickadd

import (
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"unisync-backend/internal/events"
)

const (
	titleMaxRunes = 60
	fallbackTitle = "Sự kiện"

	// Used when the model gave no end at all.
	defaultDuration = 60 * time.Minute
	// Used when the model gave an end that does not follow the start.
	repairDuration = 30 * time.Minute
)

// Repair names a field the normalizer had to fill in or correct.
type Repair string

const (
	RepairTitle    Repair = "title"
	RepairCategory Repair = "category"
	RepairStart    Repair = "start"
	RepairEnd      Repair = "end"
	RepairYear     Repair = "year"
	RepairOrder    Repair = "order"
)

// A four-digit 1900–2099 number not glued to other digits.
var yearToken = regexp.MustCompile(`(?:^|[^0-9])(?:19|20)[0-9]{2}(?:[^0-9]|$)`)

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// modelEvent is the all-optional view of the model's object. A nil field
// was absent or not a string.
type modelEvent struct {
	Title       *string
	Category    *string
	Start       *string
	End         *string
	Location    *string
	Description *string
}

func readModelEvent(obj gjson.Result) modelEvent {
	return modelEvent{
		Title:       stringField(obj, "title"),
		Category:    stringField(obj, "category"),
		Start:       stringField(obj, "start_ts"),
		End:         stringField(obj, "end_ts"),
		Location:    stringField(obj, "location"),
		Description: stringField(obj, "description"),
	}
}

func stringField(obj gjson.Result, key string) *string {
	v := obj.Get(key)
	if v.Type != gjson.String {
		return nil
	}
	s := v.String()
	return &s
}

// Normalize turns untrusted model output into a consistent event.
// It fails only when no JSON object can be extracted from modelOutput.
func Normalize(rawText, modelOutput string, reference time.Time) (events.Draft, error) {
	d, _, err := normalize(rawText, modelOutput, reference)
	return d, err
}

func normalize(rawText, modelOutput string, reference time.Time) (events.Draft, []Repair, error) {
	obj, err := extractObject(modelOutput)
	if err != nil {
		return events.Draft{}, nil, malformedOutput(modelOutput, err)
	}
	m := readModelEvent(obj)

	loc := events.Location()
	reference = reference.In(loc)

	var repairs []Repair
	d := events.Draft{}

	// Field defaulting.
	d.Title = strings.TrimSpace(deref(m.Title))
	if d.Title == "" {
		d.Title = truncateRunes(strings.TrimSpace(rawText), titleMaxRunes)
		if d.Title == "" {
			d.Title = fallbackTitle
		}
		repairs = append(repairs, RepairTitle)
	}

	if c, ok := events.ParseCategory(deref(m.Category)); ok {
		d.Category = c
	} else {
		d.Category = events.CategoryPersonal
		repairs = append(repairs, RepairCategory)
	}

	d.Location = strings.TrimSpace(deref(m.Location))
	d.Description = strings.TrimSpace(deref(m.Description))

	// Temporal resolution.
	start, ok := parseTimestamp(deref(m.Start), loc)
	if !ok {
		start = reference
		repairs = append(repairs, RepairStart)
	}
	end, ok := parseTimestamp(deref(m.End), loc)
	if !ok {
		end = start.Add(defaultDuration)
		repairs = append(repairs, RepairEnd)
	}

	// Year re-anchoring.
	if !yearToken.MatchString(rawText) {
		year := reference.Year()
		var movedStart, movedEnd bool
		start, movedStart = withYear(start, year, loc)
		end, movedEnd = withYear(end, year, loc)
		if movedStart || movedEnd {
			repairs = append(repairs, RepairYear)
		}
	}

	// Ordering repair.
	if !end.After(start) {
		end = start.Add(repairDuration)
		repairs = append(repairs, RepairOrder)
	}

	d.Start = start.In(loc)
	d.End = end.In(loc)
	return d, repairs, nil
}

func parseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// withYear moves t to year in loc, keeping month, day and wall-clock time.
func withYear(t time.Time, year int, loc *time.Location) (time.Time, bool) {
	lt := t.In(loc)
	if lt.Year() == year {
		return t, false
	}
	return time.Date(year, lt.Month(), lt.Day(), lt.Hour(), lt.Minute(), lt.Second(), lt.Nanosecond(), loc), true
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
