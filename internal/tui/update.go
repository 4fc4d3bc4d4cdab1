package tui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case TickMsg:
		m = m.refresh(time.Time(msg))
		return m, tickCmd()
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m DashboardModel) refresh(now time.Time) DashboardModel {
	m.report = m.stats.Snapshot()
	m.alerts = m.stats.RecentAlerts(5)
	m.queueDepth = m.stats.QueueDepth()

	if elapsed := now.Sub(m.lastTick).Seconds(); elapsed > 0 {
		m.fps = float64(m.report.FramesAnalyzed-m.lastFrames) / elapsed
	}
	m.lastFrames = m.report.FramesAnalyzed
	m.lastTick = now

	rows := make([]table.Row, len(m.report.Blacklist))
	for i, b := range m.report.Blacklist {
		rows[i] = table.Row{b.Label, b.Host, strconv.Itoa(b.Hits)}
	}
	m.table.SetRows(rows)

	return m
}
