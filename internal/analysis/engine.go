package analysis

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"gonetids/internal/models"
)

// Engine classifies decoded frames and records the results in a ReportState.
// It is safe for concurrent use as long as each goroutine passes its own Decoder.
type Engine struct {
	config Config
	state  *ReportState
	log    zerolog.Logger
	diag   zerolog.Logger
}

// NewEngine creates an engine that records into state.
// log receives operational messages; diag receives the verbose per-frame
// dumps and must not block (see logger.NewDiagnostics).
func NewEngine(cfg Config, state *ReportState, log, diag zerolog.Logger) *Engine {
	if cfg.HTTPPort == 0 {
		cfg.HTTPPort = DefaultHTTPPort
	}
	return &Engine{
		config: cfg,
		state:  state,
		log:    log,
		diag:   diag,
	}
}

// State returns the counters the engine records into.
func (e *Engine) State() *ReportState {
	return e.state
}

// Analyze decodes job with dec and applies every detection rule to it.
// Malformed frames are counted and skipped; the returned error wraps
// ErrMalformedFrame and is informational only.
func (e *Engine) Analyze(dec *Decoder, job *models.PacketJob) error {
	e.state.framesAnalyzed.Add(1)

	frame, err := dec.Decode(job.Data)
	if err != nil {
		e.state.malformedFrames.Add(1)
		e.log.Debug().Err(err).Int("caplen", len(job.Data)).Msg("Skipping frame")
		return err
	}

	if job.Verbose {
		e.dumpFrame(job, &frame)
	}

	if frame.TCP != nil && IsSYNProbe(frame.Flags) {
		e.recordSYN(&frame, job.Metadata.Timestamp)
	}

	if IsARP(frame.EtherType) {
		e.state.RecordARP()
	}

	if frame.TCP != nil && frame.DstPort == e.config.HTTPPort {
		e.checkBlacklist(job, &frame)
	}

	return nil
}

func (e *Engine) recordSYN(frame *Frame, ts time.Time) {
	if !e.state.RecordSYN(frame.SrcAddr) {
		return
	}
	e.state.addAlert(Alert{
		Type:      AnomalySYNSource,
		Source:    frame.SrcAddr.String(),
		Message:   fmt.Sprintf("New bare-SYN source %s -> %s:%d", frame.SrcAddr, frame.DstAddr, frame.DstPort),
		Timestamp: alertTime(ts),
	})
}

// checkBlacklist searches the HTTP payload for blacklisted hosts.
// An empty payload touches no counters.
func (e *Engine) checkBlacklist(job *models.PacketJob, frame *Frame) {
	if len(frame.Payload) == 0 {
		return
	}

	for _, i := range MatchBlacklist(e.config.Blacklist, frame.Payload) {
		rule := e.config.Blacklist[i]
		e.state.RecordBlacklistHit(i)

		if job.Verbose {
			e.diag.Info().
				Str("event", "blacklist_violation").
				Str("src", frame.SrcAddr.String()).
				Str("dst", frame.DstAddr.String()).
				Str("label", rule.Label).
				Str("host", rule.Host).
				Msg("Blacklisted URL violation detected")
		}

		e.state.addAlert(Alert{
			Type:      AnomalyBlacklist,
			Source:    frame.SrcAddr.String(),
			Message:   fmt.Sprintf("%s requested %s (%s)", frame.SrcAddr, rule.Host, rule.Label),
			Timestamp: alertTime(job.Metadata.Timestamp),
		})
	}
}

// IsMalformed reports whether err came from a frame that failed to decode.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedFrame)
}

func alertTime(ts time.Time) time.Time {
	if ts.IsZero() {
		return time.Now()
	}
	return ts
}
