package reporting

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"time"
)

var htmlReport = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>gonetids Intrusion Detection Report - {{.Stamp}}</title>
    <style>
        body { font-family: sans-serif; margin: 20px; color: #333; }
        h1, h2 { color: #2c3e50; }
        table { width: 100%; border-collapse: collapse; margin-bottom: 20px; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f2f2f2; }
        tr:nth-child(even) { background-color: #f9f9f9; }
        .summary { background: #eef; padding: 15px; border-radius: 5px; margin-bottom: 20px; }
        .alert { color: #d9534f; font-weight: bold; }
    </style>
</head>
<body>
    <h1>gonetids Intrusion Detection Report</h1>
    <div class="summary">
        <p><strong>Date:</strong> {{.Date}}</p>
        {{- if .S.SessionID}}
        <p><strong>Session:</strong> {{.S.SessionID}}</p>
        {{- end}}
        {{- if .S.Source}}
        <p><strong>Source:</strong> {{.S.Source}}</p>
        {{- end}}
        <p><strong>Frames analysed:</strong> {{.S.Report.FramesAnalyzed}} ({{.S.Report.MalformedFrames}} malformed)</p>
    </div>

    <h2>Detections</h2>
    <table>
        <thead>
            <tr><th>Detection</th><th>Count</th></tr>
        </thead>
        <tbody>
            <tr><td>SYN packets (syn attack)</td><td class="alert">{{.S.Report.SYNCount}}</td></tr>
            <tr><td>Distinct SYN sources</td><td>{{len .S.Report.UniqueAttackers}}</td></tr>
            <tr><td>ARP responses (cache poisoning)</td><td class="alert">{{.S.Report.ARPCount}}</td></tr>
            <tr><td>URL blacklist violations</td><td class="alert">{{.S.Report.TotalViolations}}</td></tr>
        </tbody>
    </table>

    <h2>URL Blacklist</h2>
    <table>
        <thead>
            <tr><th>Label</th><th>Host</th><th>Violations</th></tr>
        </thead>
        <tbody>
        {{- range .S.Report.Blacklist}}
            <tr><td>{{.Label}}</td><td>{{.Host}}</td><td>{{.Hits}}</td></tr>
        {{- else}}
            <tr><td colspan="3">No blacklist configured.</td></tr>
        {{- end}}
        </tbody>
    </table>

    <h2>Bare SYN Sources</h2>
    <table>
        <thead>
            <tr><th>Source IP</th></tr>
        </thead>
        <tbody>
        {{- range .S.Report.UniqueAttackers}}
            <tr><td>{{.}}</td></tr>
        {{- else}}
            <tr><td>No bare SYN packets seen during this session.</td></tr>
        {{- end}}
        </tbody>
    </table>
</body>
</html>
`))

// WriteHTML renders the session report as a standalone HTML page.
func WriteHTML(w io.Writer, s Summary) error {
	when := s.Finished
	if when.IsZero() {
		when = time.Now()
	}

	return htmlReport.Execute(w, struct {
		S     Summary
		Stamp string
		Date  string
	}{
		S:     s,
		Stamp: when.Format("20060102_150405"),
		Date:  when.Format(time.RFC1123),
	})
}

// GenerateSessionReport writes the report in format to path and returns the
// file name. An empty path picks report_<timestamp>.html in the working directory.
// Currently supports "html" format.
func GenerateSessionReport(s Summary, format, path string) (string, error) {
	if format != "html" {
		return "", fmt.Errorf("unsupported format: %s", format)
	}

	filename := path
	if filename == "" {
		filename = fmt.Sprintf("report_%s.html", time.Now().Format("20060102_150405"))
	}

	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := WriteHTML(file, s); err != nil {
		return "", fmt.Errorf("render html report: %w", err)
	}

	return filename, file.Close()
}
