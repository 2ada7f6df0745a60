package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carecal/internal/model"
)

func TestIsLeap(t *testing.T) {
	assert.True(t, IsLeap(2024))
	assert.True(t, IsLeap(2000))
	assert.False(t, IsLeap(1900))
	assert.False(t, IsLeap(2025))
	assert.False(t, IsLeap(2100))
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(2024, 1))
	assert.Equal(t, 28, DaysIn(2025, 1))
	assert.Equal(t, 28, DaysIn(1900, 1))
	assert.Equal(t, 29, DaysIn(2000, 1))
	assert.Equal(t, 31, DaysIn(2025, 6))
	assert.Equal(t, 30, DaysIn(2025, 10))
	assert.Equal(t, 0, DaysIn(2025, 12))
	assert.Equal(t, 0, DaysIn(2025, -1))
}

func TestFirstWeekdayMatchesTimePackage(t *testing.T) {
	for year := 1899; year <= 2101; year++ {
		for month := 0; month < 12; month++ {
			want := int(time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC).Weekday())
			require.Equal(t, want, FirstWeekday(year, month), "%d-%02d", year, month+1)
		}
	}
}

func TestBuildMonthGrid_CellCount(t *testing.T) {
	today := time.Date(2025, time.July, 12, 15, 0, 0, 0, time.UTC)
	for year := 2023; year <= 2026; year++ {
		for month := 0; month < 12; month++ {
			cells := BuildMonthGrid(year, month, today, nil, Options{IncludePast: true})
			assert.Len(t, cells, FirstWeekday(year, month)+DaysIn(year, month), "%d-%02d", year, month+1)
		}
	}
}

func TestBuildMonthGrid_July2025(t *testing.T) {
	today := time.Date(2025, time.July, 12, 9, 30, 0, 0, time.UTC)
	cells := BuildMonthGrid(2025, 6, today, nil, Options{IncludePast: true})

	require.Len(t, cells, 2+31)
	assert.True(t, cells[0].Blank())
	assert.True(t, cells[1].Blank())

	for i, c := range cells[2:] {
		day := i + 1
		assert.Equal(t, day, c.Day)
		assert.Equal(t, day == 12, c.IsToday, "day %d", day)
		assert.Equal(t, day < 12, c.IsPast, "day %d", day)
	}
}

func TestBuildMonthGrid_TodayOnlyInsideMonth(t *testing.T) {
	today := time.Date(2025, time.July, 12, 0, 0, 0, 0, time.UTC)

	count := func(cells []model.CalendarCell) int {
		n := 0
		for _, c := range cells {
			if c.IsToday {
				n++
				assert.False(t, c.IsPast)
			}
		}
		return n
	}

	assert.Equal(t, 1, count(BuildMonthGrid(2025, 6, today, nil, Options{IncludePast: true})))
	assert.Equal(t, 0, count(BuildMonthGrid(2025, 7, today, nil, Options{IncludePast: true})))
	assert.Equal(t, 0, count(BuildMonthGrid(2024, 6, today, nil, Options{IncludePast: true})))
}

func TestBuildMonthGrid_PastAndFutureMonths(t *testing.T) {
	today := time.Date(2025, time.July, 12, 0, 0, 0, 0, time.UTC)

	for _, c := range BuildMonthGrid(2025, 5, today, nil, Options{IncludePast: true}) {
		if !c.Blank() {
			assert.True(t, c.IsPast, "june %d", c.Day)
		}
	}
	for _, c := range BuildMonthGrid(2025, 7, today, nil, Options{IncludePast: true}) {
		assert.False(t, c.IsPast, "august %d", c.Day)
	}
}

func TestBuildMonthGrid_HasEvents(t *testing.T) {
	today := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	events := []model.Event{
		{ID: "1", Title: "Temple", Time: "8.00 AM", Date: 5},
		{ID: "2", Title: "Hospital", Time: "4.00 PM", Date: 5},
		{ID: "3", Title: "Doctor", Time: "10.00 AM", Date: 9},
	}
	cells := BuildMonthGrid(2025, 6, today, events, Options{IncludePast: true})
	for _, c := range cells {
		if c.Blank() {
			assert.False(t, c.HasEvents)
			continue
		}
		assert.Equal(t, c.Day == 5 || c.Day == 9, c.HasEvents, "day %d", c.Day)
	}
}

func TestBuildMonthGrid_ExcludePast(t *testing.T) {
	today := time.Date(2025, time.July, 12, 0, 0, 0, 0, time.UTC)
	events := []model.Event{{ID: "1", Title: "Old", Time: "8.00 AM", Date: 3}}

	cells := BuildMonthGrid(2025, 6, today, events, Options{IncludePast: false})
	require.Len(t, cells, 2+31)

	for i, c := range cells {
		if i < 2+11 {
			assert.Equal(t, model.CalendarCell{}, c, "slot %d must be blank", i)
			continue
		}
		assert.Equal(t, i-1, c.Day)
		assert.False(t, c.IsPast)
	}
	assert.True(t, cells[2+11].IsToday)
}

func TestBuildMonthGrid_MondayStart(t *testing.T) {
	today := time.Date(2025, time.July, 12, 0, 0, 0, 0, time.UTC)
	// July 1 2025 is a Tuesday: one blank under Monday.
	cells := BuildMonthGrid(2025, 6, today, nil, Options{IncludePast: true, WeekStart: time.Monday})
	require.Len(t, cells, 1+31)
	assert.True(t, cells[0].Blank())
	assert.Equal(t, 1, cells[1].Day)

	// June 1 2025 is a Sunday: six blanks under Monday.
	assert.Equal(t, 6, LeadingBlanks(2025, 5, time.Monday))
	assert.Equal(t, 0, LeadingBlanks(2025, 5, time.Sunday))
}

func TestBuildMonthGrid_InvalidMonth(t *testing.T) {
	assert.Nil(t, BuildMonthGrid(2025, 12, time.Now(), nil, Options{}))
}

func TestSelectable(t *testing.T) {
	today := time.Date(2025, time.July, 12, 0, 0, 0, 0, time.UTC)
	dimmed := BuildMonthGrid(2025, 6, today, nil, Options{IncludePast: true})
	hidden := BuildMonthGrid(2025, 6, today, nil, Options{IncludePast: false})

	assert.True(t, Selectable(dimmed, 12))
	assert.True(t, Selectable(dimmed, 31))
	assert.False(t, Selectable(dimmed, 11))
	assert.False(t, Selectable(dimmed, 0))
	assert.False(t, Selectable(dimmed, 32))

	assert.True(t, Selectable(hidden, 12))
	assert.False(t, Selectable(hidden, 11))
}

func TestMonthNavigation(t *testing.T) {
	m, y := NextMonth(11, 2025)
	assert.Equal(t, 0, m)
	assert.Equal(t, 2026, y)

	m, y = PreviousMonth(0, 2025)
	assert.Equal(t, 11, m)
	assert.Equal(t, 2024, y)

	m, y = NextMonth(6, 2025)
	assert.Equal(t, 7, m)
	assert.Equal(t, 2025, y)
}

func TestMonthNavigationIsCyclic(t *testing.T) {
	for start := 0; start < 12; start++ {
		m, y := start, 2025
		for i := 0; i < 12; i++ {
			m, y = NextMonth(m, y)
		}
		assert.Equal(t, start, m)
		assert.Equal(t, 2026, y)

		for i := 0; i < 12; i++ {
			m, y = PreviousMonth(m, y)
		}
		assert.Equal(t, start, m)
		assert.Equal(t, 2025, y)

		nm, ny := NextMonth(start, 2025)
		pm, py := PreviousMonth(nm, ny)
		assert.Equal(t, start, pm)
		assert.Equal(t, 2025, py)
	}
}
