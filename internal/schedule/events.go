package schedule

import (
	"strings"

	"github.com/google/uuid"

	appLog "carecal/internal/log"
	"carecal/internal/model"
)

// NewEvent is the add-schedule form payload.
type NewEvent struct {
	Title string `json:"title"`
	Time  string `json:"time"`
	Date  int    `json:"date"`
}

// IDFunc produces event identifiers.
type IDFunc func() string

// TimeOrderedID returns a UUIDv7 string, which sorts by creation time.
func TimeOrderedID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// EventsForDay returns the events on day in insertion order.
func EventsForDay(events []model.Event, day int) []model.Event {
	out := make([]model.Event, 0)
	for _, ev := range events {
		if ev.Date == day {
			out = append(out, ev)
		}
	}
	return out
}

// AddEvent appends a new event. The input is returned unchanged, with false,
// when title or time is blank after trimming or the date is not 1..31.
func AddEvent(events []model.Event, in NewEvent, ids IDFunc) ([]model.Event, bool) {
	title := strings.TrimSpace(in.Title)
	at := strings.TrimSpace(in.Time)
	if title == "" || at == "" {
		appLog.Debug("schedule: add ignored, empty field", "title_empty", title == "", "time_empty", at == "")
		return events, false
	}
	if !model.ValidDay(in.Date) {
		appLog.Debug("schedule: add ignored, date out of range", "date", in.Date)
		return events, false
	}
	if ids == nil {
		ids = TimeOrderedID
	}

	out := make([]model.Event, len(events), len(events)+1)
	copy(out, events)
	out = append(out, model.Event{
		ID:    ids(),
		Title: title,
		Time:  at,
		Date:  in.Date,
	})
	return out, true
}

// DeleteEvent removes the event with the given id. Unknown ids are a no-op.
func DeleteEvent(events []model.Event, id string) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.ID != id {
			out = append(out, ev)
		}
	}
	return out
}

// EditEvent is a placeholder for the edit button; events are returned as-is.
func EditEvent(events []model.Event, id string, _ NewEvent) []model.Event {
	appLog.Debug("schedule: edit requested", "id", id)
	return events
}
