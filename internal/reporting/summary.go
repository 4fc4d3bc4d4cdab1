package reporting

import (
	"strconv"
	"time"

	"gonetids/internal/analysis"
)

// Summary is everything the final report shows about one session.
type Summary struct {
	SessionID          string
	Source             string
	Started            time.Time
	Finished           time.Time
	Report             analysis.Report
	DiagnosticsDropped int64
}

// Duration is the wall time the session ran.
func (s Summary) Duration() time.Duration {
	if s.Started.IsZero() || s.Finished.IsZero() {
		return 0
	}
	return s.Finished.Sub(s.Started).Round(time.Millisecond)
}

// violationBreakdown renders "(3 google and 1 bbc)" style text.
func violationBreakdown(r analysis.Report) string {
	out := "("
	for i, b := range r.Blacklist {
		switch {
		case i == 0:
		case i == len(r.Blacklist)-1:
			out += " and "
		default:
			out += ", "
		}
		out += strconv.Itoa(b.Hits) + " " + b.Label
	}
	return out + ")"
}
