package analysis

import (
	"gonetids/internal/models"
)

// dumpFrame writes the decoded header fields of frame to the diagnostic sink.
// It only reads the frame and never feeds back into classification.
func (e *Engine) dumpFrame(job *models.PacketJob, frame *Frame) {
	eth := frame.Ethernet
	ev := e.diag.Info().
		Str("event", "frame").
		Time("captured", job.Metadata.Timestamp).
		Int("caplen", job.Metadata.CaptureLength).
		Int("len", job.Metadata.OriginalLength).
		Str("eth_src", eth.SrcMAC.String()).
		Str("eth_dst", eth.DstMAC.String()).
		Str("ethertype", eth.EthernetType.String())

	if ip := frame.IPv4; ip != nil {
		ev = ev.
			Uint8("ip_version", ip.Version).
			Uint8("ip_ihl", ip.IHL).
			Uint8("ip_tos", ip.TOS).
			Uint16("ip_total_len", ip.Length).
			Uint16("ip_id", ip.Id).
			Uint16("ip_frag_off", ip.FragOffset).
			Uint8("ip_ttl", ip.TTL).
			Str("ip_proto", ip.Protocol.String()).
			Uint16("ip_checksum", ip.Checksum).
			Str("ip_src", frame.SrcAddr.String()).
			Str("ip_dst", frame.DstAddr.String())
	}

	if tcp := frame.TCP; tcp != nil {
		ev = ev.
			Uint16("tcp_src_port", frame.SrcPort).
			Uint16("tcp_dst_port", frame.DstPort).
			Str("tcp_service", ServiceName(frame.DstPort)).
			Uint32("tcp_seq", tcp.Seq).
			Uint32("tcp_ack", tcp.Ack).
			Uint8("tcp_data_offset", tcp.DataOffset).
			Uint16("tcp_window", tcp.Window).
			Bool("fin", frame.Flags.FIN).
			Bool("syn", frame.Flags.SYN).
			Bool("rst", frame.Flags.RST).
			Bool("psh", frame.Flags.PSH).
			Bool("ack", frame.Flags.ACK).
			Bool("urg", frame.Flags.URG).
			Uint16("tcp_checksum", tcp.Checksum).
			Uint16("tcp_urgent", tcp.Urgent).
			Int("payload_len", len(frame.Payload))
	}

	ev.Msg("Decoded frame")
}
