package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carecal/internal/model"
)

const careFeed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:meds@test\r\n" +
	"DTSTAMP:20250701T000000Z\r\n" +
	"DTSTART:20250710T023000Z\r\n" +
	"DTEND:20250710T030000Z\r\n" +
	"RRULE:FREQ=DAILY;COUNT=5\r\n" +
	"EXDATE:20250712T023000Z\r\n" +
	"SUMMARY:Blood pressure tablet\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:meds@test\r\n" +
	"DTSTAMP:20250701T000000Z\r\n" +
	"RECURRENCE-ID:20250713T023000Z\r\n" +
	"DTSTART:20250713T043000Z\r\n" +
	"DTEND:20250713T050000Z\r\n" +
	"SUMMARY:Blood pressure tablet (late)\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:poya@test\r\n" +
	"DTSTAMP:20250701T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20250710\r\n" +
	"DTEND;VALUE=DATE:20250711\r\n" +
	"SUMMARY:Poya day\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"DTSTAMP:20250701T000000Z\r\n" +
	"DTSTART:20250715T023000Z\r\n" +
	"SUMMARY:No uid\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

var src = Source{ID: "care", URL: "https://example.com/care.ics"}

func julyWindow() ExpandConfig {
	return ExpandConfig{
		Location:   time.UTC,
		RangeStart: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2025, time.July, 31, 23, 59, 59, 0, time.UTC),
	}
}

func TestParse(t *testing.T) {
	events, err := Parse(src, []byte(careFeed))
	require.NoError(t, err)
	require.Len(t, events, 3, "event without UID is skipped")

	base := events[0]
	assert.Equal(t, "meds@test", base.UID)
	assert.Equal(t, "FREQ=DAILY;COUNT=5", base.RawRRule)
	assert.False(t, base.AllDay)
	assert.False(t, base.IsOverride())
	require.Len(t, base.ExDates, 1)
	assert.True(t, base.ExDates[0].Equal(time.Date(2025, time.July, 12, 2, 30, 0, 0, time.UTC)))

	assert.True(t, events[1].IsOverride())
	assert.True(t, events[2].AllDay)
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(src, nil)
	assert.Error(t, err)
}

func TestExpand(t *testing.T) {
	events, err := Parse(src, []byte(careFeed))
	require.NoError(t, err)

	res, err := Expand(events, julyWindow())
	require.NoError(t, err)
	assert.Empty(t, res.Truncated)

	var days []int
	var titles []string
	for _, o := range res.Occurrences {
		days = append(days, o.Start.Day())
		titles = append(titles, o.Summary)
	}
	// 10 (poya), 10, 11, [12 excluded], 13 overridden, 14.
	assert.Equal(t, []int{10, 10, 11, 13, 14}, days)
	assert.Contains(t, titles, "Blood pressure tablet (late)")
	assert.Equal(t, 4, res.Occurrences[3].Start.Hour())
}

func TestExpandCap(t *testing.T) {
	events, err := Parse(src, []byte(careFeed))
	require.NoError(t, err)

	cfg := julyWindow()
	cfg.MaxPerEvent = 2
	res, err := Expand(events, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"meds@test"}, res.Truncated)
}

func TestExpandBadRange(t *testing.T) {
	cfg := julyWindow()
	cfg.RangeEnd = cfg.RangeStart.Add(-time.Hour)
	_, err := Expand(nil, cfg)
	assert.Error(t, err)
}

func TestImportMonth(t *testing.T) {
	occs := []model.Occurrence{
		{SourceID: "care", UID: "a", InstanceKey: "k1", Summary: "Walk", Start: time.Date(2025, time.July, 3, 8, 0, 0, 0, time.UTC)},
		{SourceID: "care", UID: "b", InstanceKey: "k2", Summary: " ", AllDay: true, Start: time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)},
		{SourceID: "care", UID: "c", InstanceKey: "k3", Summary: "August", Start: time.Date(2025, time.August, 1, 9, 0, 0, 0, time.UTC)},
		{SourceID: "care", UID: "d", InstanceKey: "k4", Summary: "Pills", Start: time.Date(2025, time.July, 3, 16, 5, 0, 0, time.UTC)},
	}

	got := ImportMonth(occs, 2025, 6, time.UTC)
	assert.Equal(t, []model.Event{
		{ID: "care:a:k1", Title: "Walk", Time: "8.00 AM", Date: 3},
		{ID: "care:b:k2", Title: "Untitled", Time: AllDayLabel, Date: 4},
		{ID: "care:d:k4", Title: "Pills", Time: "4.05 PM", Date: 3},
	}, got)
}

func TestParseDisplayTime(t *testing.T) {
	cases := []struct {
		in     string
		h, m   int
		wantOK bool
	}{
		{"8.00 AM", 8, 0, true},
		{"4.00 PM", 16, 0, true},
		{"12.00 PM", 12, 0, true},
		{"10:30 am", 10, 30, true},
		{"14:45", 14, 45, true},
		{"after lunch", 0, 0, false},
		{AllDayLabel, 0, 0, false},
	}
	for _, c := range cases {
		h, m, ok := ParseDisplayTime(c.in)
		assert.Equal(t, c.wantOK, ok, c.in)
		assert.Equal(t, c.h, h, c.in)
		assert.Equal(t, c.m, m, c.in)
	}
}

func TestExportParsesBack(t *testing.T) {
	events := []model.Event{
		{ID: "1", Title: "Go to Temple", Time: "8.00 AM", Date: 5},
		{ID: "2", Title: "Family visit", Time: "evening", Date: 9},
		{ID: "3", Title: "Impossible", Time: "8.00 AM", Date: 31},
	}
	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	body, err := Export(events, 2025, 5, time.UTC, now)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "BEGIN:VCALENDAR"))

	parsed, err := Parse(Source{ID: "export"}, body)
	require.NoError(t, err)
	require.Len(t, parsed, 2, "June 31 does not exist")

	assert.Equal(t, "1@carecal", parsed[0].UID)
	assert.Equal(t, "Go to Temple", parsed[0].Summary)
	assert.False(t, parsed[0].AllDay)
	assert.True(t, parsed[0].Start.Equal(time.Date(2025, time.June, 5, 8, 0, 0, 0, time.UTC)))

	assert.True(t, parsed[1].AllDay)
	assert.Equal(t, 9, parsed[1].Start.Day())
}

func TestExportRejectsBadMonth(t *testing.T) {
	_, err := Export(nil, 2025, 12, time.UTC, time.Now())
	assert.Error(t, err)
}

func TestFetcherCaching(t *testing.T) {
	var hits, notModified atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "nimal" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("If-None-Match") == `"v1"` {
			notModified.Add(1)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(careFeed))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), srv.Client())
	source := Source{ID: "care", URL: srv.URL + "/care.ics", Username: "nimal", Password: "secret"}

	first, err := f.Fetch(context.Background(), source)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, careFeed, string(first.Body))

	second, err := f.Fetch(context.Background(), source)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, careFeed, string(second.Body))
	assert.Equal(t, int32(1), notModified.Load())

	// Wrong credentials: the server refuses, the cached body is served.
	source.Password = "wrong"
	third, err := f.Fetch(context.Background(), source)
	require.NoError(t, err)
	assert.True(t, third.FromCache)
	assert.Equal(t, int32(3), hits.Load())
}

func TestFetcherErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), srv.Client())

	_, err := f.Fetch(context.Background(), Source{ID: "x", URL: srv.URL})
	assert.Error(t, err, "no cache to fall back on")

	_, err = f.Fetch(context.Background(), Source{ID: "x", URL: "ftp://example.com/a.ics"})
	assert.Error(t, err)

	_, err = f.Fetch(context.Background(), Source{ID: "x"})
	assert.Error(t, err)

	results, errs := f.FetchAll(context.Background(), []Source{{ID: "a", URL: srv.URL}, {ID: "b", URL: ""}})
	assert.Empty(t, results)
	assert.Len(t, errs, 2)
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://calendar.example.com/...(redacted)", redactURL("https://calendar.example.com/private/abc.ics?token=1"))
	assert.Equal(t, "ics://...(redacted)", redactURL("not a url"))
}
