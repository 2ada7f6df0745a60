package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	appLog "carecal/internal/log"
	"carecal/internal/web"
)

func addServe(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the subscription refresher.",
		Example: `
carecal serve
carecal serve --config ./carecal.yaml --debug
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := co.Load()
			if err != nil {
				return err
			}
			loc := location(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			appLog.Info("carecal starting",
				"listen", cfg.Listen,
				"timezone", cfg.Timezone,
				"week_start", cfg.WeekStart,
				"language", cfg.Language,
				"ics_count", len(cfg.ICS),
				"refresh", cfg.RefreshCron,
			)

			refresher, err := newRefresher(cfg, loc)
			if err != nil {
				return err
			}
			if err := refresher.Start(ctx, cfg.RefreshCron); err != nil {
				return err
			}
			defer refresher.Stop()

			roster, err := loadRoster(cfg)
			if err != nil {
				return err
			}

			srv, err := web.NewServer(cfg, web.Deps{Feed: refresher, Roster: roster})
			if err != nil {
				return err
			}
			err = srv.Start(ctx)
			appLog.Info("carecal exiting")
			return err
		},
	}

	topLevel.AddCommand(cmd)
}
