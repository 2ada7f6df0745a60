package model

import "time"

// Event is a scheduled activity on one day of the displayed month.
// Date carries no month or year; it is scoped to whatever month the owning
// screen is showing.
type Event struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	// Time is a display string such as "8.00 AM". It is never parsed for
	// ordering.
	Time string `json:"time" yaml:"time"`
	Date int    `json:"date" yaml:"date"`
}

// MaxDay is the largest day of any month.
const MaxDay = 31

// ValidDay reports whether d can be the day of an Event.
func ValidDay(d int) bool {
	return d >= 1 && d <= MaxDay
}

// CalendarCell is one slot of a month grid. Day == 0 marks a blank cell.
type CalendarCell struct {
	Day       int  `json:"day,omitempty"`
	IsToday   bool `json:"is_today"`
	IsPast    bool `json:"is_past"`
	HasEvents bool `json:"has_events"`
}

// Blank reports whether the cell is alignment filler.
func (c CalendarCell) Blank() bool {
	return c.Day == 0
}

// Occurrence is a single concrete instance of a subscribed calendar event
// after recurrence expansion and timezone normalization.
type Occurrence struct {
	SourceID string
	UID      string

	// InstanceKey identifies one occurrence of a recurring event.
	InstanceKey string

	Summary  string
	Location string
	AllDay   bool

	// Start / End are in the configured display timezone.
	Start time.Time
	End   time.Time
}

// Member is a family member registered by the elder.
type Member struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Relation string `json:"relation"`
	Phone    string `json:"phone"`
}

// Contact is an emergency call target.
type Contact struct {
	Title string `json:"title" yaml:"title"`
	Phone string `json:"phone" yaml:"phone"`
}
