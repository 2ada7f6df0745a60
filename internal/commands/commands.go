package commands

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"carecal/internal/commands/options"
	"carecal/internal/config"
	"carecal/internal/family"
	"carecal/internal/feed"
	"carecal/internal/ics"
	appLog "carecal/internal/log"
	"carecal/internal/model"
)

var (
	co = &options.ConfigOptions{}
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "carecal",
		Short: "Family care calendar: schedules, reminders and contacts for an elder.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
	options.AddConfigArgs(cmd, co)

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addServe(topLevel)
	addMonth(topLevel)
	addEvents(topLevel)
	addFamily(topLevel)
	addVersion(topLevel)
}

func location(cfg *config.Config) *time.Location {
	loc, err := cfg.Location()
	if err != nil {
		appLog.Warn("falling back to local timezone", "timezone", cfg.Timezone, "err", err)
	}
	return loc
}

func newRefresher(cfg *config.Config, loc *time.Location) (*feed.Refresher, error) {
	cacheDir, err := config.ExpandPath(cfg.CacheDir)
	if err != nil {
		return nil, err
	}
	fetcher := ics.NewFetcher(cacheDir, &http.Client{Timeout: 30 * time.Second})
	return feed.NewRefresher(fetcher, feed.Sources(cfg.ICS, feed.KeyringSecret), loc, nil), nil
}

// loadEvents is the configured seed plus, with withFeeds, a one-shot import
// of the subscriptions. Imported events only apply to the month they were
// imported for.
func loadEvents(ctx context.Context, cfg *config.Config, loc *time.Location, year, month int, withFeeds bool) ([]model.Event, error) {
	events := append([]model.Event(nil), cfg.SeedEvents...)
	if !withFeeds {
		return events, nil
	}
	r, err := newRefresher(cfg, loc)
	if err != nil {
		return nil, err
	}
	snap, err := r.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range snap.Errors {
		appLog.Warn("subscription failed", "err", e)
	}
	if snap.Year == year && snap.Month == month {
		events = append(events, snap.Events...)
	}
	return events, nil
}

// loadRoster seeds the roster from the configured vCard file, if any.
func loadRoster(cfg *config.Config) (*family.Roster, error) {
	if cfg.FamilyVCard == "" {
		return family.NewRoster(), nil
	}
	path, err := config.ExpandPath(cfg.FamilyVCard)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	members, err := family.ImportVCard(f)
	if err != nil {
		return nil, err
	}
	appLog.Info("family imported", "path", path, "members", len(members))
	return family.NewRoster(members...), nil
}
