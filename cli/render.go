package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/warp/drinklog/tracker"
)

// displayDate is how summaries print a date, e.g. "Monday, January 01, 2024".
const displayDate = "Monday, January 02, 2006"

// ------- minimal styling helpers (Lip Gloss) -------

type styles struct {
	title   lipgloss.Style
	muted   lipgloss.Style
	accent  lipgloss.Style
	success lipgloss.Style
	fail    lipgloss.Style
	panel   lipgloss.Style
}

// newStyles binds styles to w so color is only emitted when w is a terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:   r.NewStyle().Bold(true),
		muted:   r.NewStyle().Faint(true),
		accent:  r.NewStyle().Foreground(lipgloss.Color("12")),
		success: r.NewStyle().Foreground(lipgloss.Color("42")),
		fail:    r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1),
	}
}

func (r *Runner) ok(msg string) {
	fmt.Fprintln(r.out, r.st.success.Render(msg))
}

func (r *Runner) fail(msg string) {
	fmt.Fprintln(r.out, r.st.fail.Render(msg))
}

func (r *Runner) info(msg string) {
	fmt.Fprintln(r.out, msg)
}

func (r *Runner) panel(lines []string) {
	fmt.Fprintln(r.out, r.st.panel.Render(strings.Join(lines, "\n")))
}

// -------------- number formatting --------------

// oz renders a quantity without float noise: 24, 8.5, 0.1.
func oz(q float64) string {
	return decimal.NewFromFloat(q).String() + " oz"
}

// percent renders progress with two decimals: 37.50%.
func percent(p float64) string {
	return decimal.NewFromFloat(p).StringFixed(2) + "%"
}

// -------------- summaries --------------

// visibleEntries hides records with an empty type or no quantity.
// Totals still include them.
func visibleEntries(entries []tracker.Entry) []tracker.Entry {
	var out []tracker.Entry
	for _, e := range entries {
		if strings.TrimSpace(e.Type) != "" && e.Quantity > 0 {
			out = append(out, e)
		}
	}
	return out
}

func entryLine(e tracker.Entry) string {
	return fmt.Sprintf("ID: %d, Type: %s, Ounces: %s", e.ID, e.Type, oz(e.Quantity))
}

func (r *Runner) printDailySummary(s tracker.Summary) {
	lines := []string{
		r.st.title.Render("Daily Summary"),
		"",
		"Date: " + s.Date.Format(displayDate),
		"Total Ounces Consumed: " + oz(s.Total),
		"Daily Goal: " + oz(s.Goal),
		"Goal Progress: " + percent(s.ProgressPercent),
	}

	if visible := visibleEntries(s.Entries); len(visible) > 0 {
		lines = append(lines, "", r.st.accent.Render("Entries:"))
		for _, e := range visible {
			lines = append(lines, entryLine(e))
		}
	} else {
		lines = append(lines, "", r.st.muted.Render("No valid entries for the day."))
	}
	r.panel(lines)
}

func (r *Runner) printDayConsumption(s tracker.Summary) {
	lines := []string{
		r.st.title.Render("Consumption for " + s.Date.String()),
		"Total Ounces Consumed: " + oz(s.Total),
	}
	if len(s.Entries) > 0 {
		lines = append(lines, "", r.st.accent.Render("Entries:"))
		for _, e := range s.Entries {
			lines = append(lines, entryLine(e))
		}
	} else {
		lines = append(lines, r.st.muted.Render("No entries for the specified day."))
	}
	r.panel(lines)
}

func (r *Runner) printDays(title string, days []tracker.Summary, total float64, totalLabel string) {
	lines := []string{r.st.title.Render(title)}
	for _, s := range days {
		formatted := s.Date.Format(displayDate)
		visible := visibleEntries(s.Entries)
		if len(visible) == 0 {
			lines = append(lines, "", r.st.muted.Render("No valid entries for: "+formatted))
			continue
		}
		lines = append(lines,
			"",
			"Date: "+formatted,
			"Total Ounces Consumed: "+oz(s.Total)+" ("+percent(s.ProgressPercent)+")",
		)
		for _, e := range visible {
			lines = append(lines, "  "+entryLine(e))
		}
	}
	lines = append(lines, "", r.st.title.Render(totalLabel+": "+oz(total)))
	r.panel(lines)
}

func (r *Runner) printWeeklySummary(w tracker.WeeklySummary) {
	r.printDays("Weekly Summary "+w.Week.String(), w.Days, w.TotalWeekly, "Total Ounces Consumed for the Week")
}

func (r *Runner) printRangeSummary(s tracker.RangeSummary) {
	r.printDays("History ["+s.Start.String()+", "+s.End.String()+"]", s.Days, s.Total, "Total Ounces Consumed")
}
