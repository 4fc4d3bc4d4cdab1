package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF7DB")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Margin(0, 1)

	alertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F"))
)

func (m DashboardModel) View() string {
	headerText := fmt.Sprintf("gonetids - Monitoring: %s", m.sourceName)
	if m.sessionID != "" {
		headerText += fmt.Sprintf(" [session %s]", shortID(m.sessionID))
	}
	title := titleStyle.Render(headerText)

	// Pipeline panel
	pipeline := fmt.Sprintf("Frames: %d (%.1f/s)\nMalformed: %d\nQueued: %d\nWorkers: %d",
		m.report.FramesAnalyzed, m.fps, m.report.MalformedFrames, m.queueDepth, m.stats.Workers())
	pipelineBox := infoStyle.Render(pipeline)

	// Detection panel
	detections := fmt.Sprintf("SYN packets: %d from %d IPs\nARP responses: %d\nBlacklist violations: %d",
		m.report.SYNCount, len(m.report.UniqueAttackers), m.report.ARPCount, m.report.TotalViolations())
	detectBox := infoStyle.Render(detections)

	blBox := infoStyle.Render("URL Blacklist\n" + m.table.View())

	var alertLines []string
	for _, a := range m.alerts {
		alertLines = append(alertLines, alertStyle.Render(
			fmt.Sprintf("%s %-16s %s", a.Timestamp.Format("15:04:05"), a.Type, a.Message)))
	}
	if len(alertLines) == 0 {
		alertLines = append(alertLines, "Waiting for data...")
	}
	alertBox := infoStyle.Render("Recent Alerts:\n" + strings.Join(alertLines, "\n"))

	// Layout
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, pipelineBox, detectBox)
	body := lipgloss.JoinVertical(lipgloss.Left, title, row1, blBox, alertBox)

	return body + "\nPress q to stop capture and print the report."
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
