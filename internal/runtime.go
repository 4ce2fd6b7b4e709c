package internal

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// ExecFn is an atomic reconfiguration run directly against the NetRef on the
// worker goroutine, with no other stimulus interleaved — the mechanism
// behind on_error and anything else that needs to observe and mutate the
// network as of exactly one point in the stimulus stream.
type ExecFn func(*NetRef)

// Stimulus is one unit of work submitted to a NetRef's mailbox: any
// combination of deliveries to apply to reactives, a graph edit
// (Add/RemoveBy), alive-counter adjustments (DontComplete/AllowComplete),
// and an Exec reconfiguration. All of a Stimulus's fields are applied within
// the same call to runCycle, before propagation resumes.
type Stimulus struct {
	Deliveries map[Reactive]RVT

	Add      []*Link
	RemoveBy Predicate

	DontComplete  []Reactive
	AllowComplete []Reactive

	Exec ExecFn
}

// NetRef is the single point of entry into a Network: a mailbox plus one
// dedicated worker goroutine that drains it, running the propagation engine
// to quiescence for every Stimulus it receives. Mirrors the runtime's
// drain-to-quiescence shape, generalized from a per-goroutine dirty-node
// flush to an explicit message queue so callers on any goroutine can push
// into the same network safely.
type NetRef struct {
	ID uuid.UUID

	network   *Network
	executor  Executor
	scheduler Scheduler

	errMu   sync.RWMutex
	errSink func(error)

	closedMu sync.RWMutex
	closed   bool

	mailbox chan Stimulus
	done    chan struct{}

	clock atomic.Int64

	closer closer
}

// NewNetRef creates a NetRef over network and starts its worker goroutine.
// A nil executor/scheduler/errSink falls back to a synchronous executor, a
// DefaultScheduler, and the package logger, respectively.
func NewNetRef(network *Network, executor Executor, scheduler Scheduler, errSink func(error)) *NetRef {
	if executor == nil {
		executor = SyncExecutor{}
	}
	if scheduler == nil {
		scheduler = NewDefaultScheduler()
	}
	if errSink == nil {
		errSink = LogError
	}

	r := &NetRef{
		ID:        uuid.New(),
		network:   network,
		executor:  executor,
		scheduler: scheduler,
		errSink:   errSink,
		mailbox:   make(chan Stimulus, 256),
		done:      make(chan struct{}),
	}

	go r.run()
	return r
}

func (r *NetRef) run() {
	for s := range r.mailbox {
		WithNetRef(r, func() { runCycle(r, s) })
	}
	close(r.done)
}

// Submit enqueues s for processing by the worker goroutine. Submit never
// blocks the caller on the cycle itself, only on mailbox capacity. A Submit
// racing a concurrent Close either lands before the mailbox closes or is
// reported as ErrClosed; it never panics on a send to a closed channel.
func (r *NetRef) Submit(s Stimulus) {
	r.closedMu.RLock()
	defer r.closedMu.RUnlock()
	if r.closed {
		r.ReportError(ErrClosed)
		return
	}
	r.mailbox <- s
}

// Network returns the network this ref drives.
func (r *NetRef) Network() *Network { return r.network }

// Executor returns the executor bound to this ref, used by every link that
// does not set its own Executor.
func (r *NetRef) Executor() Executor { return r.executor }

// Scheduler returns the scheduler bound to this ref.
func (r *NetRef) Scheduler() Scheduler { return r.scheduler }

// ReportError routes err to this ref's configured sink.
func (r *NetRef) ReportError(err error) {
	if err == nil {
		return
	}
	r.errMu.RLock()
	sink := r.errSink
	r.errMu.RUnlock()
	sink(err)
}

// SetErrorSink replaces this ref's error sink.
func (r *NetRef) SetErrorSink(fn func(error)) {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	r.errSink = fn
}

// ErrorSink returns this ref's current error sink.
func (r *NetRef) ErrorSink() func(error) {
	r.errMu.RLock()
	defer r.errMu.RUnlock()
	return r.errSink
}

// OnClose registers fn to run, most-recent-first, when Close is called.
func (r *NetRef) OnClose(fn func()) { r.closer.OnClose(fn) }

// Close stops accepting new stimuli, cancels every pending scheduler task,
// and runs registered cleanup hooks. It does not wait for an in-flight cycle
// to finish; call Wait afterward to block until the worker goroutine has
// drained the mailbox and exited.
func (r *NetRef) Close() {
	r.closedMu.Lock()
	if r.closed {
		r.closedMu.Unlock()
		return
	}
	r.closed = true
	r.closedMu.Unlock()

	r.scheduler.CancelAll()
	close(r.mailbox)
	r.closer.Close()
}

// Wait blocks until the worker goroutine has drained every stimulus queued
// before Close and exited.
func (r *NetRef) Wait() {
	<-r.done
}

// nextTime returns a fresh, strictly increasing logical timestamp, used to
// stamp every delivered RVT.
func (r *NetRef) nextTime() int64 {
	return r.clock.Add(1)
}

// NextTime is the exported form of nextTime, for reactive variants (like
// SeqStream) that need to stamp values pulled outside of a delivery.
func (r *NetRef) NextTime() int64 {
	return r.nextTime()
}
