package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// WriteText renders the human-readable intrusion detection report.
func WriteText(w io.Writer, s Summary) error {
	r := s.Report
	var b strings.Builder

	b.WriteString("\nIntrusion Detection Report:\n")
	fmt.Fprintf(&b, "%d SYN packets detected from %d different IPs (syn attack)\n", r.SYNCount, len(r.UniqueAttackers))
	fmt.Fprintf(&b, "%d ARP responses (cache poisoning)\n", r.ARPCount)
	fmt.Fprintf(&b, "%d URL Blacklist violations %s\n", r.TotalViolations(), violationBreakdown(r))

	b.WriteString("\n")
	b.WriteString(sessionTable(s))
	b.WriteString("\n")

	if len(r.Blacklist) > 0 {
		b.WriteString("\n")
		b.WriteString(blacklistTable(s))
		b.WriteString("\n")
	}

	if len(r.UniqueAttackers) > 0 {
		b.WriteString("\n")
		b.WriteString(attackerTable(s))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func sessionTable(s Summary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Session")

	if s.SessionID != "" {
		tw.AppendRow(table.Row{"Session ID", s.SessionID})
	}
	if s.Source != "" {
		tw.AppendRow(table.Row{"Source", s.Source})
	}
	if d := s.Duration(); d > 0 {
		tw.AppendRow(table.Row{"Duration", d.String()})
	}
	tw.AppendRow(table.Row{"Frames analysed", s.Report.FramesAnalyzed})
	tw.AppendRow(table.Row{"Malformed frames skipped", s.Report.MalformedFrames})
	if s.DiagnosticsDropped > 0 {
		tw.AppendRow(table.Row{"Diagnostic lines dropped", s.DiagnosticsDropped})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})

	return tw.Render()
}

func blacklistTable(s Summary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("URL Blacklist")
	tw.AppendHeader(table.Row{"Label", "Host", "Violations"})
	for _, b := range s.Report.Blacklist {
		tw.AppendRow(table.Row{b.Label, b.Host, b.Hits})
	}
	tw.AppendFooter(table.Row{"", "Total", s.Report.TotalViolations()})
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight}})

	return tw.Render()
}

func attackerTable(s Summary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Bare SYN Sources")
	tw.AppendHeader(table.Row{"#", "Source IP"})
	for i, a := range s.Report.UniqueAttackers {
		tw.AppendRow(table.Row{i + 1, a.String()})
	}

	return tw.Render()
}
