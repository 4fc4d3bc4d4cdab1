package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"gonetids/internal/analysis"
	"gonetids/internal/capture"
	"gonetids/internal/capture/live"
	"gonetids/internal/config"
	"gonetids/internal/dispatch"
	"gonetids/internal/logger"
	"gonetids/internal/reporting"
	"gonetids/internal/tui"
)

// pipeline is the assembled analysis side of a session.
type pipeline struct {
	sessionID  string
	started    time.Time
	dispatcher *dispatch.Dispatcher
	diag       *logger.Diagnostics
}

func newPipeline(cfg *config.Config) *pipeline {
	p := &pipeline{
		sessionID: uuid.NewString(),
		started:   time.Now(),
	}

	diagLog := zerolog.Nop()
	if cfg.Analysis.Verbose {
		p.diag, diagLog = logger.NewDiagnostics(os.Stdout, 8192)
		diagLog = diagLog.With().Str("session", p.sessionID).Logger()
	}

	acfg := cfg.AnalysisConfig()
	state := analysis.NewReportState(acfg.Blacklist, acfg.MaxAlerts)
	engine := analysis.NewEngine(acfg, state, logger.WithComponent("analysis"), diagLog)
	p.dispatcher = dispatch.New(engine, cfg.Analysis.Workers, logger.WithComponent("dispatch"))

	return p
}

// emitter returns the function the coordinator calls with the final report.
func (p *pipeline) emitter(cfg *config.Config, sourceName string) dispatch.ReportFunc {
	return func(r analysis.Report) error {
		var dropped int64
		if p.diag != nil {
			// Workers have exited; flush their verbose output before the report.
			if err := p.diag.Close(); err != nil {
				logger.Warn().Err(err).Msg("Failed to flush diagnostics")
			}
			dropped = p.diag.Dropped()
		}

		summary := reporting.Summary{
			SessionID:          p.sessionID,
			Source:             sourceName,
			Started:            p.started,
			Finished:           time.Now(),
			Report:             r,
			DiagnosticsDropped: dropped,
		}

		if err := reporting.WriteText(os.Stdout, summary); err != nil {
			return fmt.Errorf("write report: %w", err)
		}

		if cfg.Report.HTMLPath != "" {
			filename, err := reporting.GenerateSessionReport(summary, "html", cfg.Report.HTMLPath)
			if err != nil {
				return fmt.Errorf("write html report: %w", err)
			}
			logger.Info().Str("file", filename).Msg("HTML report written")
		}
		return nil
	}
}

func openSource(cfg *config.Config) (*capture.Source, error) {
	opts := capture.Options{
		Verbose: cfg.Analysis.Verbose,
		Log:     logger.WithComponent("capture"),
	}

	if cfg.Capture.ReadFile != "" {
		return capture.OpenFile(cfg.Capture.ReadFile, opts)
	}

	return live.Open(live.Config{
		Interface:   cfg.Capture.Interface,
		SnapLen:     cfg.Capture.SnapLen,
		Promiscuous: cfg.Capture.Promiscuous,
		Timeout:     time.Duration(cfg.Capture.TimeoutMS) * time.Millisecond,
		BPFFilter:   cfg.Capture.BPFFilter,
	}, opts)
}

func runMonitor(parent context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging); err != nil {
		return err
	}

	if parent == nil {
		parent = context.Background()
	}
	// The signal handler only cancels ctx; the coordinator goroutine does
	// the draining, joining and reporting.
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := openSource(cfg)
	if err != nil {
		return err
	}

	p := newPipeline(cfg)
	log := logger.WithComponent("coordinator").With().Str("session", p.sessionID).Logger()

	coordinator := dispatch.NewCoordinator(p.dispatcher, src, p.emitter(cfg, src.Name()), log)

	go func() {
		err := src.Run(ctx, p.dispatcher)
		if err != nil && !errors.Is(err, dispatch.ErrShuttingDown) {
			log.Error().Err(err).Msg("Frame source stopped")
		}
		// End of a capture file, or a dead interface, ends the session too.
		stop()
	}()

	log.Info().Str("source", src.Name()).Int("workers", p.dispatcher.Workers()).Msg("Monitoring started, press Ctrl+C to stop")

	if cfg.UI.Dashboard {
		if isatty.IsTerminal(os.Stdout.Fd()) {
			// The report must print after the alternate screen is torn down,
			// so the dashboard path shuts down from this goroutine.
			runDashboard(ctx, stop, p, src.Name())
			_, err = coordinator.Shutdown()
			return err
		}
		log.Warn().Msg("Dashboard disabled: stdout is not a terminal")
	}

	coordinator.Watch(ctx)
	<-coordinator.Done()
	_, err = coordinator.Result()
	return err
}

func runDashboard(ctx context.Context, stop context.CancelFunc, p *pipeline, sourceName string) {
	model := tui.NewDashboardModel(p.dispatcher, sourceName, p.sessionID)
	prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("Dashboard failed")
	}
	// Quitting the dashboard ends the session.
	stop()
}
