// Package queue holds the FIFO of frames waiting for a worker.
//
// WorkQueue does no locking of its own. Every caller must hold the guard
// owned by the dispatcher that shares the queue between goroutines.
package queue

import "gonetids/internal/models"

// compactThreshold is the number of consumed slots tolerated at the front of
// the backing slice before the live items are shifted down.
const compactThreshold = 64

// WorkQueue is an unbounded first-in first-out sequence of packet jobs.
type WorkQueue struct {
	items []*models.PacketJob
	head  int
}

// New returns an empty queue.
func New() *WorkQueue {
	return &WorkQueue{}
}

// Append adds job at the back of the queue.
func (q *WorkQueue) Append(job *models.PacketJob) {
	q.items = append(q.items, job)
}

// TakeFront removes and returns the oldest job.
// ok is false when the queue is empty.
func (q *WorkQueue) TakeFront() (job *models.PacketJob, ok bool) {
	if q.IsEmpty() {
		return nil, false
	}

	job = q.items[q.head]
	q.items[q.head] = nil
	q.head++

	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head >= compactThreshold && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}

	return job, true
}

// Len reports the number of queued jobs.
func (q *WorkQueue) Len() int {
	return len(q.items) - q.head
}

// IsEmpty reports whether no jobs are queued.
func (q *WorkQueue) IsEmpty() bool {
	return q.Len() == 0
}

// Destroy releases every job still queued and returns how many there were.
// A clean drain leaves nothing behind, so a non-zero result means work was lost.
func (q *WorkQueue) Destroy() int {
	dropped := 0
	for {
		job, ok := q.TakeFront()
		if !ok {
			break
		}
		job.Release()
		dropped++
	}
	q.items = nil
	q.head = 0

	return dropped
}
