// Package frames builds Ethernet frames for exercising the pipeline without
// a capture device: the selftest command and the package tests use it.
package frames

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

var (
	defaultSrcMAC = net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01}
	defaultDstMAC = net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x02}
)

// TCPSegment describes a TCP segment carried over IPv4.
type TCPSegment struct {
	Src, Dst         netip.Addr
	SrcPort, DstPort uint16
	FIN, SYN, RST    bool
	PSH, ACK, URG    bool
	Seq              uint32
	Payload          []byte
	// Options pads the TCP header beyond 20 bytes.
	Options []layers.TCPOption
}

// TCP serializes an Ethernet/IPv4/TCP frame.
func TCP(seg TCPSegment) ([]byte, error) {
	eth := layers.Ethernet{
		SrcMAC:       defaultSrcMAC,
		DstMAC:       defaultDstMAC,
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    net.IP(seg.Src.AsSlice()),
		DstIP:    net.IP(seg.Dst.AsSlice()),
	}
	tcp := layers.TCP{
		SrcPort: layers.TCPPort(seg.SrcPort),
		DstPort: layers.TCPPort(seg.DstPort),
		Seq:     seg.Seq,
		FIN:     seg.FIN,
		SYN:     seg.SYN,
		RST:     seg.RST,
		PSH:     seg.PSH,
		ACK:     seg.ACK,
		URG:     seg.URG,
		Window:  64240,
		Options: seg.Options,
	}
	if err := tcp.SetNetworkLayerForChecksum(&ip); err != nil {
		return nil, fmt.Errorf("failed to bind tcp checksum: %w", err)
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, &eth, &ip, &tcp, gopacket.Payload(seg.Payload)); err != nil {
		return nil, fmt.Errorf("failed to serialize tcp frame: %w", err)
	}
	return buf.Bytes(), nil
}

// ARPReply serializes an ARP reply claiming that senderIP lives at senderMAC.
func ARPReply(senderMAC net.HardwareAddr, senderIP, targetIP netip.Addr) ([]byte, error) {
	if senderMAC == nil {
		senderMAC = defaultSrcMAC
	}
	eth := layers.Ethernet{
		SrcMAC:       senderMAC,
		DstMAC:       defaultDstMAC,
		EthernetType: layers.EthernetTypeARP,
	}
	arp := layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPReply,
		SourceHwAddress:   []byte(senderMAC),
		SourceProtAddress: senderIP.AsSlice(),
		DstHwAddress:      []byte(defaultDstMAC),
		DstProtAddress:    targetIP.AsSlice(),
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, &eth, &arp); err != nil {
		return nil, fmt.Errorf("failed to serialize arp frame: %w", err)
	}
	return buf.Bytes(), nil
}

// UDP serializes an Ethernet/IPv4/UDP frame, a non-TCP, non-ARP filler.
func UDP(src, dst netip.Addr, srcPort, dstPort uint16, payload []byte) ([]byte, error) {
	eth := layers.Ethernet{
		SrcMAC:       defaultSrcMAC,
		DstMAC:       defaultDstMAC,
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.IP(src.AsSlice()),
		DstIP:    net.IP(dst.AsSlice()),
	}
	udp := layers.UDP{
		SrcPort: layers.UDPPort(srcPort),
		DstPort: layers.UDPPort(dstPort),
	}
	if err := udp.SetNetworkLayerForChecksum(&ip); err != nil {
		return nil, fmt.Errorf("failed to bind udp checksum: %w", err)
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, &eth, &ip, &udp, gopacket.Payload(payload)); err != nil {
		return nil, fmt.Errorf("failed to serialize udp frame: %w", err)
	}
	return buf.Bytes(), nil
}

// MustTCP is TCP for tests and fixtures; it panics on error.
func MustTCP(seg TCPSegment) []byte {
	b, err := TCP(seg)
	if err != nil {
		panic(err)
	}
	return b
}

// MustARPReply is ARPReply for tests and fixtures; it panics on error.
func MustARPReply(senderMAC net.HardwareAddr, senderIP, targetIP netip.Addr) []byte {
	b, err := ARPReply(senderMAC, senderIP, targetIP)
	if err != nil {
		panic(err)
	}
	return b
}

// HTTPGet returns a minimal HTTP/1.1 request line and Host header for host.
func HTTPGet(host, path string) []byte {
	return []byte("GET " + path + " HTTP/1.1\r\nHost: " + host + "\r\nUser-Agent: gonetids\r\n\r\n")
}
