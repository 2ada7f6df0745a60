// Package calendar builds month grids for the scheduling screens.
//
// Months are zero-based (0 = January .. 11 = December) throughout, matching
// the selection state the screens keep.
package calendar

import (
	"time"

	"carecal/internal/model"
)

// Options controls how a month grid is built.
type Options struct {
	// IncludePast keeps past days as dimmed, visible cells. When false they
	// are rendered as blank cells that still occupy their slot.
	IncludePast bool

	// WeekStart is the weekday of the first grid column. Zero value is Sunday.
	WeekStart time.Weekday
}

var monthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// IsLeap applies the Gregorian rule.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysIn returns the number of days in the zero-based month.
func DaysIn(year, month int) int {
	if month < 0 || month > 11 {
		return 0
	}
	if month == 1 && IsLeap(year) {
		return 29
	}
	return monthDays[month]
}

// FirstWeekday returns the weekday index (0 = Sunday) of day 1 of the month.
func FirstWeekday(year, month int) int {
	return weekday(year, month+1, 1)
}

// weekday is Sakamoto's method for a one-based month.
func weekday(y, m, d int) int {
	offsets := [12]int{0, 3, 2, 5, 0, 3, 5, 1, 4, 6, 2, 4}
	if m < 3 {
		y--
	}
	w := (y + floorDiv(y, 4) - floorDiv(y, 100) + floorDiv(y, 400) + offsets[m-1] + d) % 7
	if w < 0 {
		w += 7
	}
	return w
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// LeadingBlanks is the number of blank cells before day 1 for a given week start.
func LeadingBlanks(year, month int, weekStart time.Weekday) int {
	return (FirstWeekday(year, month) - int(weekStart) + 7) % 7
}

// BuildMonthGrid lays out the month as leading blanks followed by one cell
// per day. No trailing blanks are added. Only the calendar date of today is
// considered; its time of day and location offset are ignored.
func BuildMonthGrid(year, month int, today time.Time, events []model.Event, opts Options) []model.CalendarCell {
	days := DaysIn(year, month)
	if days == 0 {
		return nil
	}
	blanks := LeadingBlanks(year, month, opts.WeekStart)

	ty, tm, td := today.Date()
	todayKey := dateKey(ty, int(tm)-1, td)

	withEvents := make(map[int]bool, len(events))
	for _, ev := range events {
		withEvents[ev.Date] = true
	}

	cells := make([]model.CalendarCell, blanks, blanks+days)
	for day := 1; day <= days; day++ {
		key := dateKey(year, month, day)
		isToday := key == todayKey
		isPast := key < todayKey

		if isPast && !opts.IncludePast {
			cells = append(cells, model.CalendarCell{})
			continue
		}
		cells = append(cells, model.CalendarCell{
			Day:       day,
			IsToday:   isToday,
			IsPast:    isPast,
			HasEvents: withEvents[day],
		})
	}
	return cells
}

// Selectable reports whether day is a rendered, non-blank, non-past cell.
func Selectable(cells []model.CalendarCell, day int) bool {
	if day <= 0 {
		return false
	}
	for _, c := range cells {
		if c.Day == day {
			return !c.IsPast
		}
	}
	return false
}

// NextMonth advances a zero-based month, carrying into the year.
func NextMonth(month, year int) (int, int) {
	if month >= 11 {
		return 0, year + 1
	}
	return month + 1, year
}

// PreviousMonth steps back a zero-based month, borrowing from the year.
func PreviousMonth(month, year int) (int, int) {
	if month <= 0 {
		return 11, year - 1
	}
	return month - 1, year
}

func dateKey(year, month, day int) int {
	return year*10000 + (month+1)*100 + day
}
