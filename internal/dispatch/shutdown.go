package dispatch

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"gonetids/internal/analysis"
)

// ReportFunc receives the final report exactly once.
type ReportFunc func(analysis.Report) error

// Coordinator runs the shutdown sequence: drain the queue, join the
// workers, destroy the queue, emit the report, release the frame source.
type Coordinator struct {
	dispatcher *Dispatcher
	source     io.Closer
	emit       ReportFunc
	log        zerolog.Logger

	once   sync.Once
	done   chan struct{}
	report analysis.Report
	err    error
}

// NewCoordinator creates the coordinator for d. source may be nil; emit may
// be nil when the caller only wants the returned report.
func NewCoordinator(d *Dispatcher, source io.Closer, emit ReportFunc, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		dispatcher: d,
		source:     source,
		emit:       emit,
		log:        log,
		done:       make(chan struct{}),
	}
}

// Shutdown runs the sequence on the first call. Later and concurrent calls
// run nothing; they wait for the first to finish and return its result.
func (c *Coordinator) Shutdown() (analysis.Report, error) {
	c.once.Do(c.run)
	return c.report, c.err
}

// Watch runs Shutdown on its own goroutine once ctx is cancelled, so a
// signal handler only has to cancel a context.
func (c *Coordinator) Watch(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			_, _ = c.Shutdown()
		case <-c.done:
		}
	}()
}

// Done is closed once the shutdown sequence has completed.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Result returns the outcome of a completed shutdown. It must only be
// called after Done is closed.
func (c *Coordinator) Result() (analysis.Report, error) {
	return c.report, c.err
}

func (c *Coordinator) run() {
	defer close(c.done)

	d := c.dispatcher
	if !d.beginDrain() {
		c.log.Warn().Str("state", d.State().String()).Msg("Shutdown requested twice")
		return
	}

	c.log.Info().Int("queued", d.QueueDepth()).Msg("Draining work queue")
	d.join()

	if leftover := d.terminate(); leftover > 0 {
		c.log.Error().Int("jobs", leftover).Msg("Work queue not empty after workers exited")
	}

	// Every worker has returned from wg.Done, so the counters can be read
	// without their locks.
	c.report = d.engine.State().Final()

	if c.emit != nil {
		if err := c.emit(c.report); err != nil {
			c.err = err
			c.log.Error().Err(err).Msg("Failed to emit report")
		}
	}

	if c.source != nil {
		if err := c.source.Close(); err != nil {
			c.log.Warn().Err(err).Msg("Failed to close frame source")
		}
	}

	if failures := d.Stats().AssertionFailures; failures > 0 {
		c.log.Error().Int64("count", failures).Msg("Worker queue assertions failed")
	}

	c.log.Info().Msg("Shutdown complete")
}
