// Package live opens capture sources on network interfaces through libpcap.
package live

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"gonetids/internal/capture"
)

// Config tunes the libpcap handle.
type Config struct {
	Interface   string
	SnapLen     int
	Promiscuous bool
	Timeout     time.Duration
	BPFFilter   string
}

// Open starts a live capture on cfg.Interface.
func Open(cfg Config, opts capture.Options) (*capture.Source, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = pcap.BlockForever
	}

	handle, err := pcap.OpenLive(cfg.Interface, int32(cfg.SnapLen), cfg.Promiscuous, timeout)
	if err != nil {
		return nil, fmt.Errorf("unable to open interface %s: %w", cfg.Interface, err)
	}

	if cfg.BPFFilter != "" {
		if err := handle.SetBPFFilter(cfg.BPFFilter); err != nil {
			handle.Close()
			return nil, fmt.Errorf("could not set BPF filter %q: %w", cfg.BPFFilter, err)
		}
	}

	if lt := handle.LinkType(); lt != layers.LinkTypeEthernet {
		handle.Close()
		return nil, fmt.Errorf("interface %s has link type %s, want Ethernet", cfg.Interface, lt)
	}

	opts.Retry = isTimeout
	opts.Log.Info().
		Str("interface", cfg.Interface).
		Int("snaplen", cfg.SnapLen).
		Bool("promiscuous", cfg.Promiscuous).
		Str("filter", cfg.BPFFilter).
		Msg("Opened interface for capture")

	return capture.NewSource(cfg.Interface, handle, closer{handle}, opts), nil
}

func isTimeout(err error) bool {
	return errors.Is(err, pcap.NextErrorTimeoutExpired)
}

type closer struct {
	h *pcap.Handle
}

func (c closer) Close() error {
	c.h.Close()
	return nil
}
