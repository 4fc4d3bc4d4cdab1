package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSYNProbe(t *testing.T) {
	tests := []struct {
		name  string
		flags TCPFlags
		want  bool
	}{
		{"bare syn", TCPFlags{SYN: true}, true},
		{"syn ack", TCPFlags{SYN: true, ACK: true}, false},
		{"syn fin", TCPFlags{SYN: true, FIN: true}, false},
		{"syn rst", TCPFlags{SYN: true, RST: true}, false},
		{"syn psh", TCPFlags{SYN: true, PSH: true}, false},
		{"syn urg", TCPFlags{SYN: true, URG: true}, false},
		{"ack only", TCPFlags{ACK: true}, false},
		{"none", TCPFlags{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSYNProbe(tt.flags))
		})
	}
}

func TestPrintableProjection(t *testing.T) {
	in := []byte{'a', 0x00, 'b', '\r', '\n', 0x7f, 0x80, 0xff, ' ', '~', 0x1f}
	assert.Equal(t, []byte("ab ~"), PrintableProjection(in))
}

func TestMatchBlacklist(t *testing.T) {
	rules := DefaultBlacklist()

	assert.Equal(t, []int{0}, MatchBlacklist(rules, []byte("GET / HTTP/1.1\r\nHost: www.google.co.uk\r\n")))
	assert.Equal(t, []int{0, 1}, MatchBlacklist(rules, []byte("www.bbc.co.uk and www.google.co.uk")))
	assert.Empty(t, MatchBlacklist(rules, []byte("WWW.GOOGLE.CO.UK")))
	assert.Empty(t, MatchBlacklist(rules, nil))

	// Non-printable bytes are dropped before matching, so a host split by
	// control bytes still matches.
	assert.Equal(t, []int{1}, MatchBlacklist(rules, []byte("www.bbc\x00\x01.co.uk")))
}
