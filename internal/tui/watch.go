// Package tui implements the live watch dashboard: a small polling view
// over the same store the statusline hook writes to.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/spendline/internal/cli"
	"github.com/theirongolddev/spendline/internal/model"
	"github.com/theirongolddev/spendline/internal/pipeline"
)

const refreshTimeout = 3 * time.Second

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "250", Dark: "238"}).
			Padding(0, 1)
	cardLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
	cardValueStyle = lipgloss.NewStyle().Bold(true)
	errStyle       = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"})
	footStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "244", Dark: "241"}).
			Padding(0, 1)
)

type tickMsg time.Time

type refreshMsg struct {
	totals model.Totals
	stats  model.Statistics
	err    error
}

// Model is the bubbletea model for the watch dashboard.
type Model struct {
	engine   *pipeline.Engine
	interval time.Duration

	width  int
	totals model.Totals
	stats  model.Statistics
	table  table.Model
	err    error
	loaded bool
}

// New returns a watch dashboard polling engine every interval.
func New(engine *pipeline.Engine, interval time.Duration) Model {
	if interval < time.Second {
		interval = 2 * time.Second
	}

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "window", Width: 8},
			{Title: "periods", Width: 8},
			{Title: "total", Width: 10},
			{Title: "avg", Width: 10},
		}),
		table.WithHeight(3),
	)
	st := table.DefaultStyles()
	st.Selected = st.Cell
	t.SetStyles(st)

	return Model{engine: engine, interval: interval, table: t, width: 80}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), m.tick())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.refresh()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		return m, tea.Batch(m.refresh(), m.tick())

	case refreshMsg:
		m.err = msg.err
		if msg.err == nil {
			m.loaded = true
			m.totals = msg.totals
			m.stats = msg.stats
			m.table.SetRows([]table.Row{
				statsRow("hourly", msg.stats.Hourly),
				statsRow("daily", msg.stats.Daily),
				statsRow("weekly", msg.stats.Weekly),
			})
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	header := titleStyle.Render("spendline watch")

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		metricCard("This hour", m.totals.Hourly),
		metricCard("Today", m.totals.Daily),
		metricCard("This week", m.totals.Weekly),
	)

	body := m.table.View()
	if !m.loaded {
		body = cardLabelStyle.Render("  loading…")
	}

	foot := footStyle.Render("q quit · r refresh · polls every " + m.interval.String())
	if m.err != nil {
		foot = errStyle.Render("  " + m.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, cards, body, foot)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) refresh() tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		totals, err := engine.CurrentTotals(ctx)
		if err != nil {
			return refreshMsg{err: err}
		}
		stats, err := engine.Statistics(ctx)
		if err != nil {
			return refreshMsg{err: err}
		}
		return refreshMsg{totals: totals, stats: stats}
	}
}

func metricCard(label string, value float64) string {
	content := cardLabelStyle.Render(label) + "\n" +
		cardValueStyle.Render(cli.FormatCost(value))
	return cardStyle.Width(14).Render(content)
}

func statsRow(label string, ks model.KindStats) table.Row {
	return table.Row{
		label,
		cli.FormatNumber(int64(ks.Periods)),
		cli.FormatCost(ks.Total),
		cli.FormatCost(ks.Average),
	}
}
