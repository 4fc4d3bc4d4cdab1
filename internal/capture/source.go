// Package capture adapts packet sources to the dispatcher.
//
// A Source reads frames with zero-copy reads, so the buffer handed to the
// sink is only valid until the next read. Sinks must copy what they keep;
// the dispatcher does.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/gopacket"
	"github.com/rs/zerolog"

	"gonetids/internal/models"
)

// Sink receives every frame read by a Source.
type Sink interface {
	Submit(frame []byte, md models.Metadata, verbose bool) error
}

// Options tunes a Source.
type Options struct {
	// Verbose marks every frame for a verbose dump.
	Verbose bool
	// Retry reports whether a read error is transient, such as a read
	// timeout on a live interface. Transient errors are skipped.
	Retry func(error) bool
	Log   zerolog.Logger
}

// Source pumps frames from a packet data source into a Sink.
type Source struct {
	name   string
	data   gopacket.ZeroCopyPacketDataSource
	closer io.Closer
	opts   Options

	closeOnce sync.Once
	closeErr  error
	closed    atomic.Bool
	frames    atomic.Int64
}

// NewSource wraps data. closer, if not nil, is closed by Close.
func NewSource(name string, data gopacket.ZeroCopyPacketDataSource, closer io.Closer, opts Options) *Source {
	return &Source{
		name:   name,
		data:   data,
		closer: closer,
		opts:   opts,
	}
}

// Name identifies the source in logs and reports.
func (s *Source) Name() string {
	return s.name
}

// Frames returns the number of frames handed to the sink so far.
func (s *Source) Frames() int64 {
	return s.frames.Load()
}

// Run reads frames until the source is exhausted, ctx is cancelled, the
// source is closed, or the sink refuses a frame. End of file is not an error.
func (s *Source) Run(ctx context.Context, sink Sink) error {
	for {
		if ctx.Err() != nil || s.closed.Load() {
			return nil
		}

		data, ci, err := s.data.ZeroCopyReadPacketData()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
				s.opts.Log.Info().Str("source", s.name).Int64("frames", s.frames.Load()).Msg("End of capture")
				return nil
			case s.closed.Load():
				return nil
			case s.opts.Retry != nil && s.opts.Retry(err):
				continue
			default:
				return fmt.Errorf("read frame from %s: %w", s.name, err)
			}
		}

		md := models.Metadata{
			CaptureLength:  ci.CaptureLength,
			OriginalLength: ci.Length,
			Timestamp:      ci.Timestamp,
		}
		if err := sink.Submit(data, md, s.opts.Verbose); err != nil {
			return fmt.Errorf("submit frame from %s: %w", s.name, err)
		}
		s.frames.Add(1)
	}
}

// Close releases the underlying handle. It is safe to call more than once
// and from another goroutine than Run.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if s.closer != nil {
			s.closeErr = s.closer.Close()
		}
	})
	return s.closeErr
}
