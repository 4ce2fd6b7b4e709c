package internal

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Executor runs an asynchronous link's evaluation off the propagation
// worker. Run should not block indefinitely; a link bound to a saturated
// Executor simply waits its turn like any other submitted work.
type Executor interface {
	Run(fn func())
}

// SyncExecutor runs fn inline, on the calling goroutine. Used when a NetRef
// is not given an explicit Executor; every link that does not set its own
// Executor then behaves synchronously.
type SyncExecutor struct{}

func (SyncExecutor) Run(fn func()) { fn() }

// PoolExecutor bounds concurrent async-link evaluations with a weighted
// semaphore instead of a fixed-size worker pool, so callers can size it in
// terms of "how many links may run at once" without pre-spawning goroutines
// that sit idle.
type PoolExecutor struct {
	sem *semaphore.Weighted
	ref *NetRef
}

// NewPoolExecutor creates a PoolExecutor admitting at most maxConcurrent
// simultaneous Run calls. A ref attached afterwards with BindNetRef is bound
// as the implicit netref inside every goroutine Run spawns, so a link-fn
// running asynchronously can still call Push/Complete/AddLinks against its
// own network.
func NewPoolExecutor(maxConcurrent int64) *PoolExecutor {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &PoolExecutor{sem: semaphore.NewWeighted(maxConcurrent)}
}

// BindNetRef attaches ref so that async work runs with it as the ambient
// netref. Intended to be called once, right after NewNetRef constructs both.
func (p *PoolExecutor) BindNetRef(ref *NetRef) { p.ref = ref }

// Run returns immediately, handing fn to a new goroutine that waits for a
// slot itself. A saturated pool must never stall the caller: Run is invoked
// directly from the propagation worker (internal/engine.go), and the worker
// is only ever meant to suspend waiting on its own mailbox, not on an
// executor's semaphore.
func (p *PoolExecutor) Run(fn func()) {
	go func() {
		if err := p.sem.Acquire(context.Background(), 1); err != nil {
			if p.ref != nil {
				p.ref.ReportError(err)
			} else {
				LogError(err)
			}
			return
		}
		defer p.sem.Release(1)
		defer func() {
			if rec := recover(); rec != nil {
				if p.ref != nil {
					p.ref.ReportError(panicToError(rec))
				} else {
					LogError(panicToError(rec))
				}
			}
		}()

		if p.ref != nil {
			WithNetRef(p.ref, fn)
		} else {
			fn()
		}
	}()
}
