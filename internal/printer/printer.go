// Package printer renders month grids and event lists for the terminal.
package printer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/mattn/go-runewidth"

	"carecal/internal/model"
)

const cellWidth = 2

// width of one week row: seven cells and the spaces between them.
const width = 7*cellWidth + 6

// Labels supplies the localized chrome. *i18n.Translator satisfies it.
type Labels interface {
	MonthTitle(month, year int) string
	WeekdayHeaders(weekStart time.Weekday) []string
}

type Printer struct {
	Out    io.Writer
	Labels Labels

	title  *color.Color
	header *color.Color
	today  *color.Color
	past   *color.Color
	busy   *color.Color
	plain  *color.Color
}

func New(out io.Writer, labels Labels) *Printer {
	if out == nil {
		out = color.Output
	}
	return &Printer{
		Out:    out,
		Labels: labels,
		title:  color.New(color.FgWhite, color.Italic),
		header: color.New(color.Underline),
		today:  color.New(color.Bold, color.FgHiWhite, color.Underline),
		past:   color.New(color.Faint, color.FgWhite),
		busy:   color.New(color.Bold, color.FgHiCyan),
		plain:  color.New(),
	}
}

// Month prints a centred title, the weekday header row and the grid, seven
// cells per row. Blank cells print as spaces.
func (p *Printer) Month(year, month int, weekStart time.Weekday, cells []model.CalendarCell) {
	t := p.Labels.MonthTitle(month, year)
	pad := (width - runewidth.StringWidth(t)) / 2
	if pad < 0 {
		pad = 0
	}
	_, _ = p.title.Fprintln(p.Out, strings.Repeat(" ", pad)+t)

	headers := p.Labels.WeekdayHeaders(weekStart)
	for i, h := range headers {
		_, _ = p.header.Fprint(p.Out, runewidth.FillLeft(runewidth.Truncate(h, cellWidth, ""), cellWidth))
		if i < len(headers)-1 {
			_, _ = fmt.Fprint(p.Out, " ")
		}
	}
	_, _ = fmt.Fprintln(p.Out)

	for i, c := range cells {
		p.cell(c)
		switch {
		case i%7 == 6 || i == len(cells)-1:
			_, _ = fmt.Fprintln(p.Out)
		default:
			_, _ = fmt.Fprint(p.Out, " ")
		}
	}
}

func (p *Printer) cell(c model.CalendarCell) {
	if c.Blank() {
		_, _ = fmt.Fprint(p.Out, strings.Repeat(" ", cellWidth))
		return
	}
	style := p.plain
	switch {
	case c.IsToday:
		style = p.today
	case c.IsPast:
		style = p.past
	case c.HasEvents:
		style = p.busy
	}
	_, _ = style.Fprintf(p.Out, "%*d", cellWidth, c.Day)
}

// Events prints one row per event. An empty list prints the empty text.
func (p *Printer) Events(events []model.Event, empty string) {
	if len(events) == 0 {
		_, _ = p.past.Fprintln(p.Out, empty)
		return
	}

	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 48
	tbl.Wrap = true
	tbl.AddRow(bold.Sprint("Day"), bold.Sprint("Time"), bold.Sprint("Title"))
	for _, ev := range events {
		tbl.AddRow(ev.Date, ev.Time, ev.Title)
	}
	tbl.RightAlign(0)

	_, _ = fmt.Fprintln(p.Out, tbl)
}

// Contacts prints name / relation / phone rows.
func (p *Printer) Contacts(members []model.Member, emergency []model.Contact) {
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Name"), bold.Sprint("Relation"), bold.Sprint("Phone"))
	for _, m := range members {
		tbl.AddRow(m.Name, m.Relation, m.Phone)
	}
	for _, c := range emergency {
		tbl.AddRow(c.Title, "Emergency", c.Phone)
	}
	_, _ = fmt.Fprintln(p.Out, tbl)
}
