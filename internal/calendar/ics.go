// Package calendar exports a user's events as an iCalendar feed that
// calendar apps can subscribe to.
package calendar

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"unisync-backend/internal/events"
)

const (
	productID = "-//UniSync//Student Events//VI"

	pastDays   = 30
	futureDays = 365
)

// Window is the span of events the feed carries around now.
func Window(now time.Time) (time.Time, time.Time) {
	return now.AddDate(0, 0, -pastDays), now.AddDate(0, 0, futureDays)
}

// Build renders events as a VCALENDAR. Times carry the service zone as
// TZID, described by a VTIMEZONE.
func Build(list []events.Event, now time.Time) *ical.Calendar {
	loc := events.Location()

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	cal.Children = append(cal.Children, timezone(loc, now))

	stamp := now.UTC()
	for _, ev := range list {
		vevent := ical.NewEvent()
		vevent.Props.SetText(ical.PropUID, ev.ID+"@unisync")
		vevent.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		vevent.Props.SetDateTime(ical.PropDateTimeStart, ev.Start.In(loc))
		vevent.Props.SetDateTime(ical.PropDateTimeEnd, ev.End.In(loc))
		vevent.Props.SetText(ical.PropSummary, ev.Title)
		vevent.Props.SetText(ical.PropCategories, string(ev.Category))
		if ev.Location != "" {
			vevent.Props.SetText(ical.PropLocation, ev.Location)
		}
		if ev.Description != "" {
			vevent.Props.SetText(ical.PropDescription, ev.Description)
		}
		if !ev.UpdatedAt.IsZero() {
			vevent.Props.SetDateTime(ical.PropLastModified, ev.UpdatedAt.UTC())
		}
		cal.Children = append(cal.Children, vevent.Component)
	}
	return cal
}

// Write encodes the feed to w.
func Write(w io.Writer, list []events.Event, now time.Time) error {
	if err := ical.NewEncoder(w).Encode(Build(list, now)); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}

// timezone describes loc with a single STANDARD rule. Zones without
// daylight saving, like Asia/Ho_Chi_Minh, need nothing more.
func timezone(loc *time.Location, now time.Time) *ical.Component {
	name, offset := now.In(loc).Zone()
	utcOffset := formatOffset(offset)

	std := ical.NewComponent(ical.CompTimezoneStandard)
	std.Props.Set(rawProp(ical.PropDateTimeStart, "19700101T000000"))
	std.Props.Set(rawProp(ical.PropTimezoneOffsetFrom, utcOffset))
	std.Props.Set(rawProp(ical.PropTimezoneOffsetTo, utcOffset))
	std.Props.SetText(ical.PropTimezoneName, name)

	tz := ical.NewComponent(ical.CompTimezone)
	tz.Props.SetText(ical.PropTimezoneID, loc.String())
	tz.Children = append(tz.Children, std)
	return tz
}

func rawProp(name, value string) *ical.Prop {
	p := ical.NewProp(name)
	p.Value = value
	return p
}

func formatOffset(seconds int) string {
	sign := '+'
	if seconds < 0 {
		sign = '-'
		seconds = -seconds
	}
	return fmt.Sprintf("%c%02d%02d", sign, seconds/3600, (seconds%3600)/60)
}
