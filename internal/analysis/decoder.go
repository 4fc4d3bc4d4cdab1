package analysis

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// ErrMalformedFrame is returned when a frame is shorter than one of the
// headers it claims to carry. Such frames are skipped, never fatal.
var ErrMalformedFrame = errors.New("malformed frame")

const (
	ipv4MinHeaderLen = 20
	tcpMinHeaderLen  = 20
)

// TCPFlags holds the six classic TCP control bits.
type TCPFlags struct {
	FIN, SYN, RST, PSH, ACK, URG bool
}

// Frame is the decoded view of one captured frame.
// The layer pointers alias the Decoder that produced them and are only
// valid until its next Decode call.
type Frame struct {
	EtherType layers.EthernetType
	Ethernet  *layers.Ethernet

	IPv4    *layers.IPv4 // nil unless EtherType is IPv4
	SrcAddr netip.Addr
	DstAddr netip.Addr

	TCP     *layers.TCP // nil unless the IPv4 protocol is TCP
	Flags   TCPFlags
	SrcPort uint16
	DstPort uint16
	Payload []byte
}

// Decoder turns raw Ethernet frames into Frames.
// A Decoder reuses its layer structs between calls and must not be shared
// between goroutines; every worker owns one.
type Decoder struct {
	eth     layers.Ethernet
	ip4     layers.IPv4
	tcp     layers.TCP
	parser  *gopacket.DecodingLayerParser
	decoded []gopacket.LayerType
}

// NewDecoder builds a decoder for Ethernet II / IPv4 / TCP.
func NewDecoder() *Decoder {
	d := &Decoder{decoded: make([]gopacket.LayerType, 0, 2)}
	d.parser = gopacket.NewDecodingLayerParser(layers.LayerTypeIPv4, &d.ip4, &d.tcp)
	d.parser.IgnoreUnsupported = true

	return d
}

// Decode parses data. A frame is malformed only when the buffer is shorter
// than a header it claims: 14 bytes of Ethernet, IHL*4 bytes of IPv4 or
// data offset*4 bytes of TCP. Frames gopacket rejects for other reasons
// (bad options, inconsistent total length) or stops at (first fragments)
// are read field by field instead, so their flags are still classified.
func (d *Decoder) Decode(data []byte) (Frame, error) {
	var f Frame

	if err := d.eth.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		return f, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	f.Ethernet = &d.eth
	f.EtherType = d.eth.EthernetType

	if f.EtherType != layers.EthernetTypeIPv4 {
		return f, nil
	}

	if d.decodeLayers(&f) {
		return f, nil
	}

	if err := d.decodeRaw(&f, d.eth.Payload); err != nil {
		return Frame{}, err
	}
	return f, nil
}

// decodeLayers runs the gopacket layer decoders and reports whether they
// produced everything the classifiers need.
func (d *Decoder) decodeLayers(f *Frame) bool {
	if err := d.parser.DecodeLayers(d.eth.Payload, &d.decoded); err != nil {
		return false
	}

	var sawIP, sawTCP bool
	for _, lt := range d.decoded {
		switch lt {
		case layers.LayerTypeIPv4:
			sawIP = true
		case layers.LayerTypeTCP:
			sawTCP = true
		}
	}
	if !sawIP {
		return false
	}
	if d.ip4.Protocol == layers.IPProtocolTCP && d.ip4.FragOffset == 0 && !sawTCP {
		return false
	}

	f.setIPv4(&d.ip4)
	if sawTCP {
		f.setTCP(&d.tcp)
	}
	return true
}

// decodeRaw reads the IPv4 and TCP fixed fields straight from b, checking
// only the claimed header lengths against the buffer.
func (d *Decoder) decodeRaw(f *Frame, b []byte) error {
	if len(b) < ipv4MinHeaderLen {
		return fmt.Errorf("%w: ipv4 header needs %d bytes, have %d", ErrMalformedFrame, ipv4MinHeaderLen, len(b))
	}
	ihl := int(b[0]&0x0f) * 4
	if ihl < ipv4MinHeaderLen || ihl > len(b) {
		return fmt.Errorf("%w: ipv4 header length %d with %d bytes available", ErrMalformedFrame, ihl, len(b))
	}

	ip := &d.ip4
	*ip = layers.IPv4{
		Version:    b[0] >> 4,
		IHL:        b[0] & 0x0f,
		TOS:        b[1],
		Length:     binary.BigEndian.Uint16(b[2:4]),
		Id:         binary.BigEndian.Uint16(b[4:6]),
		Flags:      layers.IPv4Flag(b[6] >> 5),
		FragOffset: binary.BigEndian.Uint16(b[6:8]) & 0x1fff,
		TTL:        b[8],
		Protocol:   layers.IPProtocol(b[9]),
		Checksum:   binary.BigEndian.Uint16(b[10:12]),
		SrcIP:      net.IP(b[12:16]),
		DstIP:      net.IP(b[16:20]),
	}
	ip.Contents = b[:ihl]
	ip.Payload = b[ihl:]
	f.setIPv4(ip)

	// Later fragments carry no TCP header.
	if ip.Protocol != layers.IPProtocolTCP || ip.FragOffset != 0 {
		return nil
	}

	seg := b[ihl:]
	if len(seg) < tcpMinHeaderLen {
		return fmt.Errorf("%w: tcp header needs %d bytes, have %d", ErrMalformedFrame, tcpMinHeaderLen, len(seg))
	}
	doff := int(seg[12]>>4) * 4
	if doff < tcpMinHeaderLen || doff > len(seg) {
		return fmt.Errorf("%w: tcp data offset %d with %d bytes available", ErrMalformedFrame, doff, len(seg))
	}

	tcp := &d.tcp
	*tcp = layers.TCP{
		SrcPort:    layers.TCPPort(binary.BigEndian.Uint16(seg[0:2])),
		DstPort:    layers.TCPPort(binary.BigEndian.Uint16(seg[2:4])),
		Seq:        binary.BigEndian.Uint32(seg[4:8]),
		Ack:        binary.BigEndian.Uint32(seg[8:12]),
		DataOffset: seg[12] >> 4,
		NS:         seg[12]&0x01 != 0,
		FIN:        seg[13]&0x01 != 0,
		SYN:        seg[13]&0x02 != 0,
		RST:        seg[13]&0x04 != 0,
		PSH:        seg[13]&0x08 != 0,
		ACK:        seg[13]&0x10 != 0,
		URG:        seg[13]&0x20 != 0,
		ECE:        seg[13]&0x40 != 0,
		CWR:        seg[13]&0x80 != 0,
		Window:     binary.BigEndian.Uint16(seg[14:16]),
		Checksum:   binary.BigEndian.Uint16(seg[16:18]),
		Urgent:     binary.BigEndian.Uint16(seg[18:20]),
	}
	tcp.Contents = seg[:doff]

	// Trim link-layer padding when the total length is usable.
	end := len(b)
	if total := int(ip.Length); total >= ihl+doff && total <= len(b) {
		end = total
	}
	tcp.Payload = b[ihl+doff : end]
	f.setTCP(tcp)

	return nil
}

func (f *Frame) setIPv4(ip *layers.IPv4) {
	f.IPv4 = ip
	f.SrcAddr = addrFrom(ip.SrcIP)
	f.DstAddr = addrFrom(ip.DstIP)
}

func (f *Frame) setTCP(tcp *layers.TCP) {
	f.TCP = tcp
	f.SrcPort = uint16(tcp.SrcPort)
	f.DstPort = uint16(tcp.DstPort)
	f.Payload = tcp.Payload
	f.Flags = TCPFlags{
		FIN: tcp.FIN,
		SYN: tcp.SYN,
		RST: tcp.RST,
		PSH: tcp.PSH,
		ACK: tcp.ACK,
		URG: tcp.URG,
	}
}

func addrFrom(ip []byte) netip.Addr {
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return netip.Addr{}
	}
	return addr.Unmap()
}
