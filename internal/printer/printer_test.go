package printer

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carecal/internal/calendar"
	"carecal/internal/model"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type englishLabels struct{}

func (englishLabels) MonthTitle(month, year int) string {
	return time.Month(month+1).String() + " " + time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006")
}

func (englishLabels) WeekdayHeaders(weekStart time.Weekday) []string {
	out := make([]string, 7)
	for i := range out {
		out[i] = time.Weekday((int(weekStart) + i) % 7).String()[:2]
	}
	return out
}

func TestMonth(t *testing.T) {
	today := time.Date(2025, time.July, 15, 9, 0, 0, 0, time.UTC)
	cells := calendar.BuildMonthGrid(2025, 6, today, nil, calendar.Options{IncludePast: true})

	var buf bytes.Buffer
	New(&buf, englishLabels{}).Month(2025, 6, time.Sunday, cells)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "     July 2025", lines[0])
	assert.Equal(t, "Su Mo Tu We Th Fr Sa", lines[1])
	assert.Equal(t, "       1  2  3  4  5", lines[2])
	assert.Equal(t, " 6  7  8  9 10 11 12", lines[3])
	assert.Equal(t, "27 28 29 30 31", lines[6])
}

func TestMonthHiddenPast(t *testing.T) {
	today := time.Date(2025, time.July, 3, 9, 0, 0, 0, time.UTC)
	cells := calendar.BuildMonthGrid(2025, 6, today, nil, calendar.Options{})

	var buf bytes.Buffer
	New(&buf, englishLabels{}).Month(2025, 6, time.Sunday, cells)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, "             3  4  5", lines[2])
}

func TestMonthMondayStart(t *testing.T) {
	today := time.Date(2025, time.July, 15, 9, 0, 0, 0, time.UTC)
	cells := calendar.BuildMonthGrid(2025, 6, today, nil, calendar.Options{IncludePast: true, WeekStart: time.Monday})

	var buf bytes.Buffer
	New(&buf, englishLabels{}).Month(2025, 6, time.Monday, cells)

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "Mo Tu We Th Fr Sa Su", lines[1])
	assert.Equal(t, "    1  2  3  4  5  6", lines[2])
}

func TestEvents(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, englishLabels{})

	p.Events(nil, "No events")
	assert.Equal(t, "No events\n", buf.String())

	buf.Reset()
	p.Events([]model.Event{
		{ID: "1", Title: "Morning walk", Time: "8.00 AM", Date: 5},
		{ID: "2", Title: "Doctor visit", Time: "2.00 PM", Date: 12},
	}, "No events")

	out := buf.String()
	assert.Contains(t, out, "Day")
	assert.Contains(t, out, "Morning walk")
	assert.Contains(t, out, "2.00 PM")
	assert.Equal(t, 3, strings.Count(strings.TrimRight(out, "\n"), "\n")+1)
}

func TestContacts(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, englishLabels{}).Contacts(
		[]model.Member{{ID: "1", Name: "Kavi", Relation: "Son", Phone: "0771234567"}},
		[]model.Contact{{Title: "Ambulance", Phone: "1990"}},
	)
	out := buf.String()
	assert.Contains(t, out, "Kavi")
	assert.Contains(t, out, "Son")
	assert.Contains(t, out, "Ambulance")
	assert.Contains(t, out, "1990")
}
