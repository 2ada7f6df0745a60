package schedule

import (
	"time"

	"carecal/internal/calendar"
	"carecal/internal/model"
)

// Selection is the highlighted day and the displayed month of one screen.
// Month is zero-based.
type Selection struct {
	Day   int `json:"selected_day"`
	Month int `json:"current_month"`
	Year  int `json:"current_year"`
}

// NewSelection starts on today.
func NewSelection(today time.Time) Selection {
	y, m, d := today.Date()
	return Selection{Day: d, Month: int(m) - 1, Year: y}
}

// SelectDay moves the highlight to d when d is a selectable cell of cells.
func (s *Selection) SelectDay(d int, cells []model.CalendarCell) bool {
	if !calendar.Selectable(cells, d) {
		return false
	}
	s.Day = d
	return true
}

// NextMonth shows the following month. Day is left as is, even when the new
// month has fewer days.
func (s *Selection) NextMonth() {
	s.Month, s.Year = calendar.NextMonth(s.Month, s.Year)
}

// PreviousMonth shows the preceding month. Day is left as is.
func (s *Selection) PreviousMonth() {
	s.Month, s.Year = calendar.PreviousMonth(s.Month, s.Year)
}
