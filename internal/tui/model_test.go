package tui

import (
	"net/netip"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonetids/internal/analysis"
)

type fakeStats struct {
	report analysis.Report
	alerts []analysis.Alert
}

func (f *fakeStats) Snapshot() analysis.Report {
	return f.report
}

func (f *fakeStats) RecentAlerts(limit int) []analysis.Alert {
	return f.alerts
}

func (f *fakeStats) QueueDepth() int {
	return 7
}

func (f *fakeStats) Workers() int {
	return 8
}

func TestDashboardRefreshAndView(t *testing.T) {
	stats := &fakeStats{
		report: analysis.Report{
			SYNCount:        4,
			UniqueAttackers: []netip.Addr{netip.MustParseAddr("10.0.0.1")},
			ARPCount:        2,
			Blacklist:       []analysis.BlacklistCount{{Label: "bbc", Host: "www.bbc.co.uk", Hits: 3}},
			FramesAnalyzed:  100,
		},
		alerts: []analysis.Alert{{
			Type: analysis.AnomalyBlacklist, Source: "10.0.0.1",
			Message: "10.0.0.1 requested www.bbc.co.uk (bbc)", Timestamp: time.Now(),
		}},
	}

	m := NewDashboardModel(stats, "eth0", "0123456789abcdef")
	updated, cmd := m.Update(TickMsg(time.Now().Add(time.Second)))
	require.NotNil(t, cmd)

	view := updated.View()
	assert.Contains(t, view, "Monitoring: eth0")
	assert.Contains(t, view, "session 01234567")
	assert.Contains(t, view, "SYN packets: 4 from 1 IPs")
	assert.Contains(t, view, "Queued: 7")
	assert.Contains(t, view, "www.bbc.co.uk")
	assert.Contains(t, view, "requested www.bbc.co.uk")
}

func TestDashboardQuitKey(t *testing.T) {
	m := NewDashboardModel(&fakeStats{}, "eth0", "")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
