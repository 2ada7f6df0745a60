package ics

import (
	"errors"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	appLog "carecal/internal/log"
	"carecal/internal/model"
)

const defaultMaxOccurrences = 1000

// ExpandConfig bounds recurrence expansion.
type ExpandConfig struct {
	// Location is the display zone; nil means time.Local.
	Location *time.Location

	// RangeStart / RangeEnd is the inclusive window.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxPerEvent caps the occurrences of one series. Zero uses a default.
	MaxPerEvent int
}

// ExpandResult holds the occurrences in start order and the UIDs that hit
// the cap.
type ExpandResult struct {
	Occurrences []model.Occurrence
	Truncated   []string
}

// Expand turns parsed events into concrete occurrences inside the window,
// applying RRULE, EXDATE and RECURRENCE-ID overrides.
func Expand(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("expand: range end before range start")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxPerEvent <= 0 {
		cfg.MaxPerEvent = defaultMaxOccurrences
	}

	var uids []string
	bases := make(map[string][]ParsedEvent)
	overrides := make(map[string][]ParsedEvent)
	for _, ev := range events {
		if ev.IsOverride() {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
			continue
		}
		if _, seen := bases[ev.UID]; !seen {
			uids = append(uids, ev.UID)
		}
		bases[ev.UID] = append(bases[ev.UID], ev)
	}

	for _, uid := range uids {
		truncated := false
		for _, ev := range bases[uid] {
			var occ []model.Occurrence
			if ev.RawRRule == "" {
				occ = expandSingle(ev, overrides[uid], cfg)
			} else {
				var capped bool
				occ, capped = expandSeries(ev, overrides[uid], cfg)
				truncated = truncated || capped
			}
			result.Occurrences = append(result.Occurrences, occ...)
		}
		if truncated {
			result.Truncated = append(result.Truncated, uid)
			appLog.Warn("expand: occurrences truncated", "uid", uid, "cap", cfg.MaxPerEvent)
		}
	}

	sort.SliceStable(result.Occurrences, func(i, j int) bool {
		return result.Occurrences[i].Start.Before(result.Occurrences[j].Start)
	})
	return result, nil
}

func expandSingle(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) []model.Occurrence {
	if !overlaps(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) {
		return nil
	}
	start, end := ev.Start, ev.End
	if o, ok := overrideFor(overrides, start); ok {
		ev, start, end = o, o.Start, o.End
	}
	return []model.Occurrence{occurrence(ev, start, end, cfg.Location)}
}

func expandSeries(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Occurrence, bool) {
	rule, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: bad RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil, false
	}
	rule.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(rule)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	loc := ev.Start.Location()
	starts := set.Between(cfg.RangeStart.In(loc), cfg.RangeEnd.In(loc), true)

	capped := false
	if len(starts) > cfg.MaxPerEvent {
		starts = starts[:cfg.MaxPerEvent]
		capped = true
	}

	duration := ev.End.Sub(ev.Start)
	out := make([]model.Occurrence, 0, len(starts))
	for _, s := range starts {
		var e time.Time
		if ev.AllDay {
			s = time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, s.Location())
			e = s.AddDate(0, 0, 1)
		} else {
			e = s.Add(duration)
		}

		base := ev
		if o, ok := overrideFor(overrides, s); ok {
			base, s, e = o, o.Start, o.End
		}
		out = append(out, occurrence(base, s, e, cfg.Location))
	}
	return out, capped
}

// overrideFor finds the override whose RECURRENCE-ID equals start.
func overrideFor(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, o := range overrides {
		if o.Recurrence != nil && o.Recurrence.Equal(start) {
			return o, true
		}
	}
	return ParsedEvent{}, false
}

func occurrence(ev ParsedEvent, start, end time.Time, loc *time.Location) model.Occurrence {
	s := start.In(loc)
	if ev.AllDay {
		// All-day dates are floating; keep the calendar date in the display zone.
		s = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
		end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)
	}
	return model.Occurrence{
		SourceID:    ev.Source.ID,
		UID:         ev.UID,
		InstanceKey: s.Format(time.RFC3339),
		Summary:     ev.Summary,
		Location:    ev.Location,
		AllDay:      ev.AllDay,
		Start:       s,
		End:         end.In(loc),
	}
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
