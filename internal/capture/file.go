package capture

import (
	"bufio"
	"bytes"
	"fmt"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// pcapng section header block type, the first four bytes of every pcapng file.
var pcapngMagic = []byte{0x0a, 0x0d, 0x0d, 0x0a}

// OpenFile opens a pcap or pcapng capture file. Only Ethernet captures are
// accepted since the analysis decodes Ethernet II frames.
func OpenFile(path string, opts Options) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture file: %w", err)
	}

	br := bufio.NewReader(f)
	magic, err := br.Peek(4)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read capture header from %s: %w", path, err)
	}

	var (
		data     gopacket.ZeroCopyPacketDataSource
		linkType layers.LinkType
	)
	if bytes.Equal(magic, pcapngMagic) {
		r, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("parse pcapng %s: %w", path, err)
		}
		data, linkType = r, r.LinkType()
	} else {
		r, err := pcapgo.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("parse pcap %s: %w", path, err)
		}
		data, linkType = r, r.LinkType()
	}

	if linkType != layers.LinkTypeEthernet {
		f.Close()
		return nil, fmt.Errorf("capture %s has link type %s, want Ethernet", path, linkType)
	}

	opts.Log.Info().Str("file", path).Msg("Reading capture file")
	return NewSource(path, data, f, opts), nil
}
