package models

import "time"

// Metadata is the capture information delivered with every frame.
type Metadata struct {
	CaptureLength  int       // Bytes actually captured
	OriginalLength int       // Length of the frame on the wire
	Timestamp      time.Time // Capture time reported by the frame source
}

// PacketJob is one captured frame waiting for analysis.
// It owns its Data slice; the frame source's buffer is never retained.
type PacketJob struct {
	Data     []byte
	Metadata Metadata
	Verbose  bool
}

// NewPacketJob copies frame into a freshly allocated buffer and wraps it in a job.
func NewPacketJob(frame []byte, md Metadata, verbose bool) *PacketJob {
	data := make([]byte, len(frame))
	copy(data, frame)

	if md.CaptureLength == 0 {
		md.CaptureLength = len(data)
	}
	if md.OriginalLength == 0 {
		md.OriginalLength = md.CaptureLength
	}

	return &PacketJob{
		Data:     data,
		Metadata: md,
		Verbose:  verbose,
	}
}

// Release drops the job's buffer so it can be collected even if a stale
// reference to the job survives.
func (j *PacketJob) Release() {
	j.Data = nil
}
