package options

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// MonthOptions select the month to show and how to draw it.
type MonthOptions struct {
	Year  int
	Month int // zero-based

	Lang     string
	HidePast bool
	Feeds    bool
}

func AddMonthArgs(cmd *cobra.Command, o *MonthOptions) {
	cmd.Flags().StringVar(&o.Lang, "lang", "",
		"Label language: en, ta or si. Defaults to the configured language.")
	cmd.Flags().BoolVar(&o.HidePast, "hide-past", false,
		"Blank out past days like the add-schedule screen.")
	AddFeedsArg(cmd, &o.Feeds)
}

func AddFeedsArg(cmd *cobra.Command, feeds *bool) {
	cmd.Flags().BoolVar(feeds, "feeds", false,
		"Fetch the subscribed calendars once and include their events.")
}

// ParseArgs reads optional [year] [month] arguments, month as 1-12.
// Missing values default to today's.
func (o *MonthOptions) ParseArgs(args []string, today time.Time) error {
	o.Year = today.Year()
	o.Month = int(today.Month()) - 1
	if len(args) > 2 {
		return fmt.Errorf("expected at most [year] [month], got %d arguments", len(args))
	}
	if len(args) > 0 {
		y, err := strconv.Atoi(args[0])
		if err != nil || y < 1 {
			return fmt.Errorf("invalid year %q", args[0])
		}
		o.Year = y
	}
	if len(args) > 1 {
		m, err := strconv.Atoi(args[1])
		if err != nil || m < 1 || m > 12 {
			return fmt.Errorf("invalid month %q, want 1-12", args[1])
		}
		o.Month = m - 1
	}
	return nil
}
