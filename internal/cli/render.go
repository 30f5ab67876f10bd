package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/spendline/internal/model"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
	valueStyle = lipgloss.NewStyle().Bold(true)
)

// RenderTotals formats current window totals for terminal display.
func RenderTotals(t model.Totals) string {
	var b strings.Builder
	row := func(label string, v float64) {
		fmt.Fprintf(&b, "  %s %s\n",
			labelStyle.Render(fmt.Sprintf("%-10s", label)),
			valueStyle.Render(FormatCost(v)))
	}
	row("This hour", t.Hourly)
	row("Today", t.Daily)
	row("This week", t.Weekly)
	return b.String()
}

// RenderStatistics formats historical statistics for terminal display.
func RenderStatistics(s model.Statistics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s\n", labelStyle.Render("window    periods      total        avg"))
	row := func(label string, ks model.KindStats) {
		fmt.Fprintf(&b, "  %-8s %8d %10s %10s\n",
			label, ks.Periods, FormatCost(ks.Total), FormatCost(ks.Average))
	}
	row("hourly", s.Hourly)
	row("daily", s.Daily)
	row("weekly", s.Weekly)
	fmt.Fprintf(&b, "\n  %s %d\n", labelStyle.Render("Tracked sessions:"), s.TrackedSessions)
	return b.String()
}
