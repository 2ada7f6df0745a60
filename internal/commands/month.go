package commands

import (
	"github.com/spf13/cobra"

	"carecal/internal/calendar"
	"carecal/internal/commands/options"
	"carecal/internal/i18n"
	"carecal/internal/printer"
	"carecal/internal/schedule"
)

func addMonth(topLevel *cobra.Command) {
	mo := &options.MonthOptions{}

	cmd := &cobra.Command{
		Use:   "month [year] [month]",
		Short: "Print a month grid. Today is bold, past days are faint and days with events stand out.",
		Example: `
carecal month
carecal month 2025 7 --lang ta
carecal month --hide-past --feeds
`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := co.Load()
			if err != nil {
				return err
			}
			loc := location(cfg)
			today := schedule.RealClock{Location: loc}.Now()
			if err := mo.ParseArgs(args, today); err != nil {
				return err
			}

			events, err := loadEvents(cmd.Context(), cfg, loc, mo.Year, mo.Month, mo.Feeds)
			if err != nil {
				return err
			}

			bundle, err := i18n.NewBundle()
			if err != nil {
				return err
			}
			lang := mo.Lang
			if lang == "" {
				lang = cfg.Language
			}

			cells := calendar.BuildMonthGrid(mo.Year, mo.Month, today, events, calendar.Options{
				IncludePast: !mo.HidePast,
				WeekStart:   cfg.Weekday(),
			})
			printer.New(cmd.OutOrStdout(), i18n.New(bundle, lang)).Month(mo.Year, mo.Month, cfg.Weekday(), cells)
			return nil
		},
	}
	options.AddMonthArgs(cmd, mo)

	topLevel.AddCommand(cmd)
}
