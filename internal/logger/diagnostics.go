package logger

import (
	"io"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
)

// Diagnostics is a non-blocking sink for verbose per-frame output.
// Lines are buffered in a ring; when the consumer falls behind, the oldest
// lines are dropped and counted instead of stalling the writer.
type Diagnostics struct {
	writer  diode.Writer
	dropped atomic.Int64
}

// NewDiagnostics wraps w in a ring of size entries and returns a logger
// writing into it.
func NewDiagnostics(w io.Writer, size int) (*Diagnostics, zerolog.Logger) {
	if size <= 0 {
		size = 1000
	}

	d := &Diagnostics{}
	d.writer = diode.NewWriter(writerOnly{w}, size, 10*time.Millisecond, func(missed int) {
		d.dropped.Add(int64(missed))
	})

	return d, zerolog.New(d.writer).With().Timestamp().Logger()
}

// Dropped reports how many diagnostic lines were discarded.
func (d *Diagnostics) Dropped() int64 {
	return d.dropped.Load()
}

// writerOnly hides any Close method of the wrapped writer so closing the
// diode never closes os.Stderr or os.Stdout.
type writerOnly struct {
	io.Writer
}

// Close flushes buffered lines and stops the background poller.
func (d *Diagnostics) Close() error {
	return d.writer.Close()
}
