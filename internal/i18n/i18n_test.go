package i18n

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnglish(t *testing.T) {
	bundle, err := NewBundle()
	require.NoError(t, err)

	tr := New(bundle, "en")
	assert.Equal(t, "en", tr.Lang())
	assert.Equal(t, "July", tr.MonthName(6))
	assert.Equal(t, "July 2025", tr.MonthTitle(6, 2025))
	assert.Equal(t, "Today", tr.Today())
	assert.Equal(t, []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}, tr.WeekdayHeaders(time.Sunday))
	assert.Equal(t, []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}, tr.WeekdayHeaders(time.Monday))
}

func TestTamilAndSinhala(t *testing.T) {
	bundle, err := NewBundle()
	require.NoError(t, err)

	ta := New(bundle, "ta")
	assert.Equal(t, "ta", ta.Lang())
	assert.Equal(t, "ஜூலை 2025", ta.MonthTitle(6, 2025))
	assert.Equal(t, "இன்று", ta.Today())

	si := New(bundle, "si-LK")
	assert.Equal(t, "si", si.Lang())
	assert.Equal(t, "2025 ජූලි", si.MonthTitle(6, 2025))
	assert.Equal(t, "අද", si.Today())
}

func TestFallbackToEnglish(t *testing.T) {
	bundle, err := NewBundle()
	require.NoError(t, err)

	for _, lang := range []string{"fr", "", "not a tag"} {
		tr := New(bundle, lang)
		assert.Equal(t, "en", tr.Lang(), "lang %q", lang)
		assert.Equal(t, "December", tr.MonthName(11))
	}
}

func TestEveryLocaleHasAllMessages(t *testing.T) {
	bundle, err := NewBundle()
	require.NoError(t, err)

	for _, l := range Languages {
		tr := New(bundle, l.Code)
		for m := 0; m < 12; m++ {
			assert.NotContains(t, tr.MonthName(m), "Month", "%s month %d", l.Code, m)
		}
		for _, h := range tr.WeekdayHeaders(time.Sunday) {
			assert.NotContains(t, h, "Weekday", l.Code)
		}
	}
}
