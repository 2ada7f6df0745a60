// Package i18n localizes the calendar chrome: month titles, weekday headers
// and the "Today" label.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"time"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	appLog "carecal/internal/log"
)

//go:embed locales/*.json
var localeFS embed.FS

// Language is an option of the language screen.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Languages lists the supported languages in screen order.
var Languages = []Language{
	{Code: "ta", Name: "தமிழ்"},
	{Code: "en", Name: "English"},
	{Code: "si", Name: "සිංහල"},
}

var (
	supported = []language.Tag{language.English, language.Tamil, language.Sinhala}
	matcher   = language.NewMatcher(supported)
)

// Translator renders calendar labels in one language.
type Translator struct {
	lang      language.Tag
	localizer *goi18n.Localizer
}

// NewBundle loads every embedded locale file.
func NewBundle() (*goi18n.Bundle, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}
	for _, e := range entries {
		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+e.Name()); err != nil {
			return nil, fmt.Errorf("load locale %s: %w", e.Name(), err)
		}
	}
	return bundle, nil
}

// New returns a Translator for lang. Unsupported or malformed tags fall back
// to English.
func New(bundle *goi18n.Bundle, lang string) *Translator {
	_, idx := language.MatchStrings(matcher, lang)
	tag := supported[idx]
	return &Translator{
		lang:      tag,
		localizer: goi18n.NewLocalizer(bundle, tag.String()),
	}
}

// Lang is the resolved language code.
func (t *Translator) Lang() string {
	return t.lang.String()
}

func (t *Translator) msg(id string, data map[string]any) string {
	out, err := t.localizer.Localize(&goi18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil {
		appLog.Debug("i18n: missing translation", "lang", t.lang.String(), "id", id, "err", err)
		return id
	}
	return out
}

// MonthName takes a zero-based month.
func (t *Translator) MonthName(month int) string {
	return t.msg(fmt.Sprintf("Month%d", month), nil)
}

func (t *Translator) MonthTitle(month, year int) string {
	return t.msg("MonthTitle", map[string]any{
		"Month": t.MonthName(month),
		"Year":  year,
	})
}

// WeekdayHeaders returns the seven column headers starting at weekStart.
func (t *Translator) WeekdayHeaders(weekStart time.Weekday) []string {
	out := make([]string, 7)
	for i := range out {
		out[i] = t.msg(fmt.Sprintf("Weekday%d", (int(weekStart)+i)%7), nil)
	}
	return out
}

func (t *Translator) Today() string {
	return t.msg("Today", nil)
}
