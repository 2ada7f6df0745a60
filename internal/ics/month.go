package ics

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"carecal/internal/model"
)

// TimeLayout renders times the way the schedule screens show them ("8.00 AM").
const TimeLayout = "3.04 PM"

// AllDayLabel is the time string of imported all-day occurrences.
const AllDayLabel = "All day"

const untitled = "Untitled"

// ImportMonth converts occurrences starting inside the zero-based month into
// day-of-month events, keeping their order.
func ImportMonth(occs []model.Occurrence, year, month int, loc *time.Location) []model.Event {
	if loc == nil {
		loc = time.Local
	}
	out := make([]model.Event, 0)
	for _, occ := range occs {
		start := occ.Start.In(loc)
		if start.Year() != year || int(start.Month())-1 != month {
			continue
		}
		title := strings.TrimSpace(occ.Summary)
		if title == "" {
			title = untitled
		}
		at := start.Format(TimeLayout)
		if occ.AllDay {
			at = AllDayLabel
		}
		out = append(out, model.Event{
			ID:    occ.SourceID + ":" + occ.UID + ":" + occ.InstanceKey,
			Title: title,
			Time:  at,
			Date:  start.Day(),
		})
	}
	return out
}

// ParseDisplayTime reads a schedule time string such as "8.00 AM",
// "8:00 AM" or "14:30". It reports false for anything else.
func ParseDisplayTime(s string) (hour, minute int, ok bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range []string{TimeLayout, "3:04 PM", "3.04PM", "3:04PM", "15:04", "15.04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour(), t.Minute(), true
		}
	}
	return 0, 0, false
}

// Export renders the events of a session's displayed month as a VCALENDAR.
// Events with a readable time become one-hour timed events; the rest are
// all-day. Days that do not exist in the month are skipped.
func Export(events []model.Event, year, month int, loc *time.Location, now time.Time) ([]byte, error) {
	if month < 0 || month > 11 {
		return nil, fmt.Errorf("month %d out of range", month)
	}
	if loc == nil {
		loc = time.Local
	}

	cal := ical.NewCalendar()
	cal.SetProductId("-//carecal//schedule//EN")
	cal.SetMethod(ical.MethodPublish)

	for _, ev := range events {
		day := time.Date(year, time.Month(month+1), ev.Date, 0, 0, 0, 0, loc)
		if day.Month() != time.Month(month+1) || ev.Date < 1 {
			continue
		}

		ve := cal.AddEvent(fmt.Sprintf("%s@carecal", ev.ID))
		ve.SetDtStampTime(now.UTC())
		ve.SetSummary(ev.Title)

		if h, m, ok := ParseDisplayTime(ev.Time); ok {
			start := time.Date(year, time.Month(month+1), ev.Date, h, m, 0, 0, loc)
			ve.SetStartAt(start.UTC())
			ve.SetEndAt(start.Add(time.Hour).UTC())
			continue
		}
		ve.SetAllDayStartAt(day)
		ve.SetAllDayEndAt(day.AddDate(0, 0, 1))
	}

	return []byte(cal.Serialize()), nil
}
