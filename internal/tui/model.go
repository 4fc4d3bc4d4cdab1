package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gonetids/internal/analysis"
)

// StatsSource is what the dashboard polls. The dispatcher implements it.
type StatsSource interface {
	Snapshot() analysis.Report
	RecentAlerts(limit int) []analysis.Alert
	QueueDepth() int
	Workers() int
}

// TickMsg drives the periodic refresh.
type TickMsg time.Time

const refreshInterval = 250 * time.Millisecond

type DashboardModel struct {
	stats      StatsSource
	sourceName string
	sessionID  string

	report     analysis.Report
	alerts     []analysis.Alert
	queueDepth int
	fps        float64

	lastFrames int64
	lastTick   time.Time

	table table.Model
}

func NewDashboardModel(stats StatsSource, sourceName, sessionID string) DashboardModel {
	columns := []table.Column{
		{Title: "Label", Width: 12},
		{Title: "Host", Width: 28},
		{Title: "Hits", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
		table.WithHeight(6),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return DashboardModel{
		stats:      stats,
		sourceName: sourceName,
		sessionID:  sessionID,
		table:      t,
		lastTick:   time.Now(),
	}
}

func (m DashboardModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
