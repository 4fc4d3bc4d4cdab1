package analysis

import (
	"bytes"
	"time"

	"github.com/google/gopacket/layers"
)

// AnomalyType represents the type of anomaly detected.
type AnomalyType string

const (
	AnomalySYNSource AnomalyType = "SYN_SOURCE"
	AnomalyBlacklist AnomalyType = "BLACKLISTED_HOST"
)

// DefaultHTTPPort is the destination port whose payloads are searched for
// blacklisted hosts.
const DefaultHTTPPort = 80

// BlacklistRule maps a report label to the host string searched for.
type BlacklistRule struct {
	Label string
	Host  string
}

// Config holds configuration for the analysis engine.
type Config struct {
	HTTPPort  uint16
	Blacklist []BlacklistRule
	MaxAlerts int // Size of the recent alert history kept for the dashboard
}

// DefaultBlacklist returns the stock blacklisted hosts.
func DefaultBlacklist() []BlacklistRule {
	return []BlacklistRule{
		{Label: "google", Host: "www.google.co.uk"},
		{Label: "bbc", Host: "www.bbc.co.uk"},
	}
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		HTTPPort:  DefaultHTTPPort,
		Blacklist: DefaultBlacklist(),
		MaxAlerts: 20,
	}
}

// Alert represents a detected security event worth surfacing live.
type Alert struct {
	Type      AnomalyType
	Source    string // IP or source identifier
	Message   string // Human-readable description
	Timestamp time.Time
}

// IsSYNProbe reports whether flags carry a bare SYN: SYN set and every other
// control bit clear. The first packet of every legitimate handshake matches
// too; the count is a volume signal, not per-packet proof of an attack.
func IsSYNProbe(f TCPFlags) bool {
	return f.SYN && !f.FIN && !f.RST && !f.PSH && !f.ACK && !f.URG
}

// IsARP reports whether the ethertype announces an ARP frame.
// Every ARP frame counts, not only gratuitous replies.
func IsARP(et layers.EthernetType) bool {
	return et == layers.EthernetTypeARP
}

// PrintableProjection keeps only the printable ASCII bytes of payload
// (strictly between 31 and 127), in their original order. Removing bytes can
// join text that was separated on the wire, so a match may span a gap.
func PrintableProjection(payload []byte) []byte {
	out := make([]byte, 0, len(payload))
	for _, b := range payload {
		if b > 31 && b < 127 {
			out = append(out, b)
		}
	}
	return out
}

// MatchBlacklist returns the indexes of the rules whose host occurs in the
// printable projection of payload. Matching is case-sensitive.
func MatchBlacklist(rules []BlacklistRule, payload []byte) []int {
	if len(payload) == 0 {
		return nil
	}

	text := PrintableProjection(payload)

	var hits []int
	for i, rule := range rules {
		if rule.Host == "" {
			continue
		}
		if bytes.Contains(text, []byte(rule.Host)) {
			hits = append(hits, i)
		}
	}
	return hits
}
