package main

import (
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/spf13/cobra"

	"gonetids/internal/analysis"
	"gonetids/internal/config"
	"gonetids/internal/dispatch"
	"gonetids/internal/frames"
	"gonetids/internal/logger"
	"gonetids/internal/models"
)

type expectation struct {
	name string
	got  func(analysis.Report) int
	want int
}

func newSelftestCommand(flags *runFlags) *cobra.Command {
	var workers int
	var verbose bool

	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Run synthetic attack frames through the pipeline and check the counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Analysis.Workers = workers
			}
			cfg.Analysis.Verbose = verbose
			cfg.Report.HTMLPath = ""
			// The synthetic frames target the built-in rules.
			defaults := config.Default()
			cfg.Blacklist = defaults.Blacklist
			cfg.Analysis.HTTPPort = defaults.Analysis.HTTPPort
			cfg.Normalize()
			if err := logger.Init(cfg.Logging); err != nil {
				return err
			}
			return runSelftest(cfg)
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of analysis workers (default: number of CPUs)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Dump decoded headers of every frame")

	return cmd
}

func selftestFrames() ([][]byte, []expectation, error) {
	var (
		attackerA = netip.MustParseAddr("10.0.0.1")
		attackerB = netip.MustParseAddr("10.0.0.2")
		server    = netip.MustParseAddr("192.168.1.10")
	)

	specs := []frames.TCPSegment{
		{Src: attackerA, Dst: server, SrcPort: 40001, DstPort: 443, SYN: true},
		{Src: attackerA, Dst: server, SrcPort: 40001, DstPort: 443, SYN: true, ACK: true},
		{Src: attackerB, Dst: server, SrcPort: 40002, DstPort: 443, SYN: true},
		{Src: attackerB, Dst: server, SrcPort: 40003, DstPort: 80, PSH: true, ACK: true,
			Payload: []byte("GET http://www.bbc.co.uk/news HTTP/1.1\r\n\r\n")},
	}

	var out [][]byte
	for _, s := range specs {
		b, err := frames.TCP(s)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, b)
	}

	arp, err := frames.ARPReply(nil, server, attackerA)
	if err != nil {
		return nil, nil, err
	}
	out = append(out, arp)

	// Truncated copy of the first frame, skipped as malformed.
	out = append(out, out[0][:20])

	want := []expectation{
		{"SYN packets", func(r analysis.Report) int { return r.SYNCount }, 2},
		{"distinct SYN sources", func(r analysis.Report) int { return len(r.UniqueAttackers) }, 2},
		{"ARP responses", func(r analysis.Report) int { return r.ARPCount }, 1},
		{"bbc violations", func(r analysis.Report) int { return r.Hits("bbc") }, 1},
		{"google violations", func(r analysis.Report) int { return r.Hits("google") }, 0},
		{"malformed frames", func(r analysis.Report) int { return int(r.MalformedFrames) }, 1},
	}

	return out, want, nil
}

func runSelftest(cfg *config.Config) error {
	data, want, err := selftestFrames()
	if err != nil {
		return err
	}

	p := newPipeline(cfg)
	coordinator := dispatch.NewCoordinator(p.dispatcher, nil, p.emitter(cfg, "selftest"), logger.WithComponent("coordinator"))

	for _, frame := range data {
		md := models.Metadata{CaptureLength: len(frame), OriginalLength: len(frame), Timestamp: time.Now()}
		if err := p.dispatcher.Submit(frame, md, cfg.Analysis.Verbose); err != nil {
			return err
		}
	}

	report, err := coordinator.Shutdown()
	if err != nil {
		return err
	}

	var errs []error
	for _, e := range want {
		if got := e.got(report); got != e.want {
			errs = append(errs, fmt.Errorf("%s: got %d, want %d", e.name, got, e.want))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("selftest failed: %w", err)
	}

	logger.Info().Int("frames", len(data)).Msg("Selftest passed")
	return nil
}
