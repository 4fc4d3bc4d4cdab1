package analysis

import (
	"net/netip"
	"sort"
	"sync"
	"sync/atomic"
)

// BlacklistCount is the number of violations recorded for one rule.
type BlacklistCount struct {
	Label string
	Host  string
	Hits  int
}

// Report is a point-in-time copy of the detection counters.
type Report struct {
	SYNCount        int
	UniqueAttackers []netip.Addr // sorted
	ARPCount        int
	Blacklist       []BlacklistCount // in rule order
	FramesAnalyzed  int64
	MalformedFrames int64
}

// TotalViolations sums the blacklist hits across all rules.
func (r Report) TotalViolations() int {
	total := 0
	for _, b := range r.Blacklist {
		total += b.Hits
	}
	return total
}

// Hits returns the violation count recorded for label.
func (r Report) Hits(label string) int {
	for _, b := range r.Blacklist {
		if b.Label == label {
			return b.Hits
		}
	}
	return 0
}

type hostCounter struct {
	mu   sync.Mutex
	rule BlacklistRule
	hits int
}

// ReportState holds the counters every worker updates.
//
// Each metric group has its own mutex: the SYN counter together with the
// attacker set, the ARP counter, and one per blacklist rule. No method holds
// two of them at once.
type ReportState struct {
	synMu     sync.Mutex
	synCount  int
	attackers map[netip.Addr]struct{}

	arpMu    sync.Mutex
	arpCount int

	blacklist []*hostCounter

	alertMu   sync.Mutex
	alerts    []Alert
	maxAlerts int

	framesAnalyzed  atomic.Int64
	malformedFrames atomic.Int64
}

// NewReportState creates zeroed counters for the given blacklist rules.
func NewReportState(rules []BlacklistRule, maxAlerts int) *ReportState {
	s := &ReportState{
		attackers: make(map[netip.Addr]struct{}),
		blacklist: make([]*hostCounter, len(rules)),
		maxAlerts: maxAlerts,
	}
	for i, r := range rules {
		s.blacklist[i] = &hostCounter{rule: r}
	}
	return s
}

// RecordSYN counts one bare SYN and remembers its source.
// It reports whether src had not been seen before.
func (s *ReportState) RecordSYN(src netip.Addr) bool {
	s.synMu.Lock()
	defer s.synMu.Unlock()

	s.synCount++
	if _, seen := s.attackers[src]; seen {
		return false
	}
	s.attackers[src] = struct{}{}
	return true
}

// RecordARP counts one ARP frame.
func (s *ReportState) RecordARP() {
	s.arpMu.Lock()
	s.arpCount++
	s.arpMu.Unlock()
}

// RecordBlacklistHit counts one violation against the rule at index i.
func (s *ReportState) RecordBlacklistHit(i int) {
	c := s.blacklist[i]
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func (s *ReportState) addAlert(alert Alert) {
	if s.maxAlerts <= 0 {
		return
	}

	s.alertMu.Lock()
	defer s.alertMu.Unlock()

	s.alerts = append(s.alerts, alert)
	if len(s.alerts) > s.maxAlerts {
		s.alerts = s.alerts[len(s.alerts)-s.maxAlerts:]
	}
}

// RecentAlerts returns up to limit of the newest alerts, newest last.
func (s *ReportState) RecentAlerts(limit int) []Alert {
	s.alertMu.Lock()
	defer s.alertMu.Unlock()

	start := 0
	if len(s.alerts) > limit {
		start = len(s.alerts) - limit
	}

	result := make([]Alert, len(s.alerts)-start)
	copy(result, s.alerts[start:])
	return result
}

// Snapshot copies the counters while workers may still be running.
// Each group is read under its own lock, so the groups may be from slightly
// different instants.
func (s *ReportState) Snapshot() Report {
	var r Report

	s.synMu.Lock()
	r.SYNCount = s.synCount
	r.UniqueAttackers = sortedAddrs(s.attackers)
	s.synMu.Unlock()

	s.arpMu.Lock()
	r.ARPCount = s.arpCount
	s.arpMu.Unlock()

	r.Blacklist = make([]BlacklistCount, len(s.blacklist))
	for i, c := range s.blacklist {
		c.mu.Lock()
		r.Blacklist[i] = BlacklistCount{Label: c.rule.Label, Host: c.rule.Host, Hits: c.hits}
		c.mu.Unlock()
	}

	r.FramesAnalyzed = s.framesAnalyzed.Load()
	r.MalformedFrames = s.malformedFrames.Load()

	return r
}

// Final copies the counters without locking. The caller must have joined
// every goroutine that records into s.
func (s *ReportState) Final() Report {
	r := Report{
		SYNCount:        s.synCount,
		UniqueAttackers: sortedAddrs(s.attackers),
		ARPCount:        s.arpCount,
		Blacklist:       make([]BlacklistCount, len(s.blacklist)),
		FramesAnalyzed:  s.framesAnalyzed.Load(),
		MalformedFrames: s.malformedFrames.Load(),
	}
	for i, c := range s.blacklist {
		r.Blacklist[i] = BlacklistCount{Label: c.rule.Label, Host: c.rule.Host, Hits: c.hits}
	}
	return r
}

func sortedAddrs(set map[netip.Addr]struct{}) []netip.Addr {
	out := make([]netip.Addr, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Less(out[j])
	})
	return out
}
