package commands

import (
	"github.com/spf13/cobra"

	"carecal/internal/commands/options"
	"carecal/internal/printer"
	"carecal/internal/schedule"
)

func addEvents(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	day := 0
	feeds := false

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List this month's events, or one day's with --day.",
		Example: `
carecal events
carecal events --day 12 --feeds
carecal events --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := co.Load()
			if err != nil {
				return err
			}
			loc := location(cfg)
			sel := schedule.NewSelection(schedule.RealClock{Location: loc}.Now())

			events, err := loadEvents(cmd.Context(), cfg, loc, sel.Year, sel.Month, feeds)
			if err != nil {
				return oo.HandleError(cmd.OutOrStdout(), err)
			}
			if day > 0 {
				events = schedule.EventsForDay(events, day)
			}

			if oo.JSON {
				return oo.PrintJSON(cmd.OutOrStdout(), events)
			}
			printer.New(cmd.OutOrStdout(), nil).Events(events, "No events")
			return nil
		},
	}
	cmd.Flags().IntVar(&day, "day", 0, "Only show events on this day of the month.")
	options.AddFeedsArg(cmd, &feeds)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
