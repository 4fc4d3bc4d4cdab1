// Package dispatch moves captured frames from the frame source to a fixed
// pool of analysis workers and runs the drain-and-report shutdown.
//
// The queue is a monitor: one mutex and one condition variable guard the
// WorkQueue and the shutdown state. Workers never hold that mutex while
// analysing a frame, and the analysis counters use their own locks, so no
// goroutine ever holds two locks at once.
package dispatch

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"gonetids/internal/analysis"
	"gonetids/internal/models"
	"gonetids/internal/queue"
)

// ErrShuttingDown is returned by Submit once the termination signal has
// been received. The frame is not queued.
var ErrShuttingDown = errors.New("dispatcher is shutting down")

// State is the shutdown state of the pipeline. It only moves forward.
type State uint8

const (
	StateRunning State = iota
	StateDraining
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Dispatcher owns the work queue and the worker pool.
type Dispatcher struct {
	engine  *analysis.Engine
	workers int
	log     zerolog.Logger

	mu    sync.Mutex
	cond  *sync.Cond
	queue *queue.WorkQueue
	state State

	startOnce sync.Once
	started   bool // guarded by mu
	wg        sync.WaitGroup

	submitted         atomic.Int64
	rejected          atomic.Int64
	assertionFailures atomic.Int64
}

// New creates a dispatcher that will run workers goroutines against engine.
// workers <= 0 selects runtime.NumCPU(). No goroutine starts until the
// first Submit.
func New(engine *analysis.Engine, workers int, log zerolog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	d := &Dispatcher{
		engine:  engine,
		workers: workers,
		log:     log,
		queue:   queue.New(),
	}
	d.cond = sync.NewCond(&d.mu)

	return d
}

// Submit copies frame into a new job and queues it for analysis.
// It never blocks on analysis; the queue is unbounded.
func (d *Dispatcher) Submit(frame []byte, md models.Metadata, verbose bool) error {
	d.startOnce.Do(d.startWorkers)

	job := models.NewPacketJob(frame, md, verbose)

	d.mu.Lock()
	if d.state != StateRunning {
		d.mu.Unlock()
		d.rejected.Add(1)
		return ErrShuttingDown
	}
	d.queue.Append(job)
	d.cond.Signal()
	d.mu.Unlock()

	d.submitted.Add(1)
	return nil
}

func (d *Dispatcher) startWorkers() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != StateRunning {
		return
	}

	d.wg.Add(d.workers)
	for i := 0; i < d.workers; i++ {
		go d.work(i)
	}
	d.started = true

	d.log.Info().Int("workers", d.workers).Msg("Worker pool started")
}

func (d *Dispatcher) work(id int) {
	defer d.wg.Done()

	dec := analysis.NewDecoder()
	processed := 0

	for {
		d.mu.Lock()
		for d.queue.IsEmpty() && d.state == StateRunning {
			d.cond.Wait()
		}
		if d.queue.IsEmpty() {
			d.mu.Unlock()
			break
		}
		job, ok := d.queue.TakeFront()
		d.mu.Unlock()

		if !ok {
			d.assertionFailures.Add(1)
			d.log.Error().Int("worker", id).Msg("Dequeue from empty work queue")
			continue
		}

		_ = d.engine.Analyze(dec, job)
		job.Release()
		processed++
	}

	d.log.Debug().Int("worker", id).Int("processed", processed).Msg("Worker exited")
}

// beginDrain moves Running to Draining and wakes every idle worker.
// It reports false if the pipeline was already past Running.
func (d *Dispatcher) beginDrain() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != StateRunning {
		return false
	}
	d.state = StateDraining
	d.cond.Broadcast()

	return true
}

// join waits for every worker to exit. Workers only exit once the queue is
// empty and the state is no longer Running.
func (d *Dispatcher) join() {
	d.wg.Wait()
}

// terminate destroys the queue and marks the pipeline Terminated.
// It returns the number of jobs that were still queued.
func (d *Dispatcher) terminate() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	leftover := d.queue.Destroy()
	d.state = StateTerminated

	return leftover
}

// State returns the current shutdown state.
func (d *Dispatcher) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Started reports whether the worker pool has been spawned.
func (d *Dispatcher) Started() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.started
}

// QueueDepth returns the number of frames waiting for a worker.
func (d *Dispatcher) QueueDepth() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queue.Len()
}

// Workers returns the pool size.
func (d *Dispatcher) Workers() int {
	return d.workers
}

// Snapshot returns the live detection counters.
func (d *Dispatcher) Snapshot() analysis.Report {
	return d.engine.State().Snapshot()
}

// RecentAlerts returns up to limit of the newest alerts.
func (d *Dispatcher) RecentAlerts(limit int) []analysis.Alert {
	return d.engine.State().RecentAlerts(limit)
}

// Stats holds dispatcher-level counters.
type Stats struct {
	Submitted         int64
	Rejected          int64
	AssertionFailures int64
}

// Stats returns dispatcher-level counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Submitted:         d.submitted.Load(),
		Rejected:          d.rejected.Load(),
		AssertionFailures: d.assertionFailures.Load(),
	}
}
