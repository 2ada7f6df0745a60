package schedule

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"carecal/internal/calendar"
	"carecal/internal/model"
)

// Screen names the screen a session backs. Each screen applies its own
// grid policy for past days.
type Screen string

const (
	// ScreenSchedule shows past days dimmed and unselectable.
	ScreenSchedule Screen = "schedule"
	// ScreenAddSchedule hides past days behind blank cells.
	ScreenAddSchedule Screen = "add_schedule"
)

var ErrUnknownScreen = errors.New("unknown screen")

// ParseScreen validates a screen name. Empty selects ScreenSchedule.
func ParseScreen(s string) (Screen, error) {
	switch Screen(s) {
	case "", ScreenSchedule:
		return ScreenSchedule, nil
	case ScreenAddSchedule:
		return ScreenAddSchedule, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownScreen, s)
	}
}

// IncludePast reports the grid policy of the screen.
func (s Screen) IncludePast() bool {
	return s != ScreenAddSchedule
}

// Navigable reports whether the screen has month navigation. The add
// screen is pinned to the current month.
func (s Screen) Navigable() bool {
	return s != ScreenAddSchedule
}

// Clock abstracts time.Now() so "today" is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock reads the wall clock in a fixed location.
type RealClock struct {
	Location *time.Location
}

func (c RealClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// SessionOptions configures a new Session.
type SessionOptions struct {
	Screen    Screen
	WeekStart time.Weekday
	Clock     Clock
	IDs       IDFunc
	// Seed is copied into the session's own event list.
	Seed []model.Event
}

// Session is the state owned by one mounted screen: its selection and its
// event list. Nothing is shared with other sessions.
type Session struct {
	mu        sync.Mutex
	id        string
	screen    Screen
	weekStart time.Weekday
	clock     Clock
	ids       IDFunc
	selection Selection
	events    []model.Event
}

// NewSession mounts a screen, initialising the selection to today.
func NewSession(id string, opts SessionOptions) *Session {
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.IDs == nil {
		opts.IDs = TimeOrderedID
	}
	if opts.Screen == "" {
		opts.Screen = ScreenSchedule
	}
	events := make([]model.Event, len(opts.Seed))
	copy(events, opts.Seed)

	return &Session{
		id:        id,
		screen:    opts.Screen,
		weekStart: opts.WeekStart,
		clock:     opts.Clock,
		ids:       opts.IDs,
		selection: NewSelection(opts.Clock.Now()),
		events:    events,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Screen() Screen { return s.screen }

// View is a consistent snapshot of a session for rendering.
type View struct {
	ID        string               `json:"id"`
	Screen    Screen               `json:"screen"`
	Selection Selection            `json:"selection"`
	Cells     []model.CalendarCell `json:"cells"`
	Visible   []model.Event        `json:"events"`
	Today     time.Time            `json:"today"`
}

// Snapshot recomputes the grid for the current selection and filters the
// events by the selected day.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.clock.Now()
	return View{
		ID:        s.id,
		Screen:    s.screen,
		Selection: s.selection,
		Cells:     s.gridLocked(today),
		Visible:   EventsForDay(s.events, s.selection.Day),
		Today:     today,
	}
}

// Grid is the month grid of the displayed month.
func (s *Session) Grid() []model.CalendarCell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gridLocked(s.clock.Now())
}

func (s *Session) gridLocked(today time.Time) []model.CalendarCell {
	return calendar.BuildMonthGrid(s.selection.Year, s.selection.Month, today, s.events, calendar.Options{
		IncludePast: s.screen.IncludePast(),
		WeekStart:   s.weekStart,
	})
}

// Events returns a copy of every event the session holds.
func (s *Session) Events() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Visible is the event list under the grid: events on the selected day.
func (s *Session) Visible() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return EventsForDay(s.events, s.selection.Day)
}

// EventsOn filters the session's events by day.
func (s *Session) EventsOn(day int) []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return EventsForDay(s.events, day)
}

// Add appends an event and reports whether the form was accepted. On a
// screen that hides past days the date must also be selectable there.
func (s *Session) Add(in NewEvent) (model.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.screen.IncludePast() && !calendar.Selectable(s.gridLocked(s.clock.Now()), in.Date) {
		return model.Event{}, false
	}
	next, ok := AddEvent(s.events, in, s.ids)
	if !ok {
		return model.Event{}, false
	}
	s.events = next
	return next[len(next)-1], true
}

func (s *Session) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = DeleteEvent(s.events, id)
}

func (s *Session) Edit(id string, in NewEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = EditEvent(s.events, id, in)
}

// Select taps a day on the current grid.
func (s *Session) Select(day int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.SelectDay(day, s.gridLocked(s.clock.Now()))
}

// Next moves to the following month. It does nothing on a screen without
// navigation.
func (s *Session) Next() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.screen.Navigable() {
		return s.selection
	}
	s.selection.NextMonth()
	return s.selection
}

func (s *Session) Previous() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.screen.Navigable() {
		return s.selection
	}
	s.selection.PreviousMonth()
	return s.selection
}

func (s *Session) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}
