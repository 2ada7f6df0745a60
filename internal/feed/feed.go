// Package feed keeps an up-to-date import of the subscribed calendars for
// the current month. New schedule sessions are seeded from its snapshot.
package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zalando/go-keyring"

	"carecal/internal/calendar"
	"carecal/internal/config"
	"carecal/internal/ics"
	appLog "carecal/internal/log"
	"carecal/internal/model"
)

// SecretFunc looks up the password for a feed user.
type SecretFunc func(service, user string) (string, error)

// KeyringSecret reads from the OS keyring.
func KeyringSecret(service, user string) (string, error) {
	return keyring.Get(service, user)
}

// Sources builds fetch sources from configuration. A keyring failure leaves
// the password empty so the feed still works when it is public.
func Sources(feeds []config.ICSConfig, secret SecretFunc) []ics.Source {
	out := make([]ics.Source, 0, len(feeds))
	for _, f := range feeds {
		if f.URL == "" {
			continue
		}
		src := ics.Source{ID: f.ID, URL: f.URL, Username: f.Username}
		if f.Username != "" && f.Keyring && secret != nil {
			pw, err := secret(config.KeyringService, f.Username)
			if err != nil {
				appLog.Warn("feed: keyring lookup failed", "id", f.ID, "user", f.Username, "err", err)
			} else {
				src.Password = pw
			}
		}
		out = append(out, src)
	}
	return out
}

// Fetcher is the part of ics.Fetcher the refresher needs.
type Fetcher interface {
	FetchAll(ctx context.Context, sources []ics.Source) ([]ics.FetchResult, []error)
}

// Snapshot is the result of the last refresh.
type Snapshot struct {
	Year      int           `json:"year"`
	Month     int           `json:"month"`
	Events    []model.Event `json:"events"`
	Truncated []string      `json:"truncated,omitempty"`
	Errors    []string      `json:"errors,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Refresher fetches, expands and imports the subscriptions.
type Refresher struct {
	fetcher  Fetcher
	sources  []ics.Source
	location *time.Location
	now      func() time.Time

	mu   sync.RWMutex
	last Snapshot

	cron *cron.Cron
}

// NewRefresher returns a refresher whose snapshot starts empty for the
// current month.
func NewRefresher(fetcher Fetcher, sources []ics.Source, loc *time.Location, now func() time.Time) *Refresher {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	r := &Refresher{fetcher: fetcher, sources: sources, location: loc, now: now}
	t := now().In(loc)
	r.last = Snapshot{Year: t.Year(), Month: int(t.Month()) - 1, Events: []model.Event{}}
	return r
}

// Refresh runs one fetch/parse/expand/import cycle for the current month and
// publishes the result. Individual feed failures are recorded, not fatal.
func (r *Refresher) Refresh(ctx context.Context) (Snapshot, error) {
	now := r.now().In(r.location)
	year, month := now.Year(), int(now.Month())-1

	snap := Snapshot{Year: year, Month: month, Events: []model.Event{}, UpdatedAt: now}
	if len(r.sources) == 0 {
		r.publish(snap)
		return snap, nil
	}

	results, errs := r.fetcher.FetchAll(ctx, r.sources)
	for _, err := range errs {
		snap.Errors = append(snap.Errors, err.Error())
	}
	if err := ctx.Err(); err != nil {
		return snap, err
	}

	var parsed []ics.ParsedEvent
	for _, res := range results {
		events, err := ics.Parse(res.Source, res.Body)
		if err != nil {
			appLog.Error("feed: parse failed", err, "id", res.Source.ID)
			snap.Errors = append(snap.Errors, err.Error())
			continue
		}
		parsed = append(parsed, events...)
	}

	start := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, r.location)
	end := time.Date(year, time.Month(month+1), calendar.DaysIn(year, month), 23, 59, 59, 0, r.location)
	expanded, err := ics.Expand(parsed, ics.ExpandConfig{
		Location:   r.location,
		RangeStart: start,
		RangeEnd:   end,
	})
	if err != nil {
		return snap, err
	}
	snap.Truncated = expanded.Truncated
	snap.Events = ics.ImportMonth(expanded.Occurrences, year, month, r.location)

	r.publish(snap)
	appLog.Info("feed refreshed", "sources", len(r.sources), "events", len(snap.Events), "errors", len(snap.Errors))
	return snap, nil
}

func (r *Refresher) publish(s Snapshot) {
	r.mu.Lock()
	r.last = s
	r.mu.Unlock()
}

// Snapshot returns the last published import. Events is a copy.
func (r *Refresher) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := r.last
	s.Events = append([]model.Event(nil), r.last.Events...)
	return s
}

// Start schedules Refresh on spec and runs it once immediately. It returns
// once the scheduler is running; Stop ends it.
func (r *Refresher) Start(ctx context.Context, spec string) error {
	if spec == "" {
		return errors.New("feed: empty refresh schedule")
	}
	c := cron.New(cron.WithLocation(r.location))
	if _, err := c.AddFunc(spec, func() {
		if _, err := r.Refresh(ctx); err != nil {
			appLog.Error("feed: scheduled refresh failed", err)
		}
	}); err != nil {
		return err
	}
	r.cron = c
	c.Start()

	go func() {
		if _, err := r.Refresh(ctx); err != nil {
			appLog.Error("feed: initial refresh failed", err)
		}
	}()
	appLog.Info("feed scheduler started", "schedule", spec, "sources", len(r.sources))
	return nil
}

// Stop halts the scheduler and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}
