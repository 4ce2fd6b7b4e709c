// Package reactnet implements a propagation-network style reactive engine:
// a graph of reactives (behaviors, event streams, sequence streams) wired
// together by links, driven to quiescence one stimulus at a time by a
// NetRef's dedicated worker goroutine.
package reactnet

import (
	"github.com/reactnet-go/reactnet/internal"
)

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}
	return v.(T)
}

// Reactive is satisfied by every typed wrapper in this package (Behavior[T],
// EventStream[T], SeqStream[T], FnBehavior[T]). It exists so NewLink can
// accept a slice of heterogeneously-typed reactives.
type Reactive interface {
	reactive() internal.Reactive
}

// Result, LinkFn, ErrorFn, CompleteFn, Predicate, RVT and Value are re-exported
// as-is: a link-fn necessarily operates on type-erased values (a link may fan
// in reactives of different T), so there is nothing a generic wrapper adds
// here over the internal types themselves.
type (
	Result     = internal.Result
	LinkFn     = internal.LinkFn
	ErrorFn    = internal.ErrorFn
	CompleteFn = internal.CompleteFn
	Predicate  = internal.Predicate
	RVT        = internal.RVT
	Value      = internal.Value

	// RawReactive is the type-erased reactive a LinkFn actually receives and
	// returns in a Result's RVT maps; obtain one from a typed wrapper via
	// its Raw method.
	RawReactive = internal.Reactive
)

// Some wraps v as an ordinary (non-completed) Value.
func Some(v any) Value { return internal.Some(v) }

// Completed is the sentinel Value signaling a reactive's end of life.
var Completed = internal.CompletedValue

// Network owns the link graph. A Network has no goroutine of its own; pair
// it with a Ref to actually run it.
type Network struct {
	net *internal.Network
}

// NewNetwork creates an empty Network.
func NewNetwork() *Network {
	return &Network{net: internal.NewNetwork()}
}

// Executor runs an asynchronous link's evaluation off the propagation
// worker.
type Executor = internal.Executor

// NewPoolExecutor creates an Executor bounding async-link evaluation to at
// most maxConcurrent simultaneous runs.
func NewPoolExecutor(maxConcurrent int64) Executor {
	return internal.NewPoolExecutor(maxConcurrent)
}

// Scheduler arranges future stimuli.
type Scheduler = internal.Scheduler

// Task is a handle to scheduled, cancellable future work.
type Task = internal.Task

// NewScheduler creates the default wall-clock Scheduler.
func NewScheduler() Scheduler { return internal.NewDefaultScheduler() }

// Option configures a Ref at construction time.
type Option func(*refConfig)

type refConfig struct {
	executor  Executor
	scheduler Scheduler
	errSink   func(error)
}

// WithExecutor binds e as the Ref's executor, used by every link that does
// not set its own; any executor other than the synchronous default makes
// those links asynchronous. A *PoolExecutor
// passed here is automatically rebound with the constructed Ref, so async
// link-fns can themselves call Push/Complete/AddLinks against their own
// network.
func WithExecutor(e Executor) Option {
	return func(c *refConfig) { c.executor = e }
}

// WithScheduler binds s as the Ref's scheduler.
func WithScheduler(s Scheduler) Option {
	return func(c *refConfig) { c.scheduler = s }
}

// WithErrorSink binds fn as the Ref's error sink, replacing the default
// (structured-log) sink entirely.
func WithErrorSink(fn func(error)) Option {
	return func(c *refConfig) { c.errSink = fn }
}

// Ref is a running handle on a Network: a mailbox and a worker goroutine
// draining it. All mutation of the network — pushing values, completing
// reactives, adding or removing links — goes through a Ref.
type Ref struct {
	ref *internal.NetRef
}

// NewRef starts a Ref over net.
func NewRef(net *Network, opts ...Option) *Ref {
	cfg := &refConfig{}
	for _, o := range opts {
		o(cfg)
	}

	ref := internal.NewNetRef(net.net, cfg.executor, cfg.scheduler, cfg.errSink)
	if pe, ok := cfg.executor.(*internal.PoolExecutor); ok {
		pe.BindNetRef(ref)
	}
	return &Ref{ref: ref}
}

// Network returns the network this Ref drives.
func (r *Ref) Network() *Network { return &Network{net: r.ref.Network()} }

// Executor returns the executor bound to this Ref.
func (r *Ref) Executor() Executor { return r.ref.Executor() }

// Scheduler returns the scheduler bound to this Ref.
func (r *Ref) Scheduler() Scheduler { return r.ref.Scheduler() }

// OnClose registers fn to run, most-recently-registered first, when Close
// is called.
func (r *Ref) OnClose(fn func()) { r.ref.OnClose(fn) }

// Close stops the Ref's worker goroutine and cancels every pending
// scheduler task. It does not wait for an in-flight cycle to finish; call
// Wait afterward to block for that.
func (r *Ref) Close() { r.ref.Close() }

// Wait blocks until the worker goroutine has drained every stimulus queued
// before Close and exited.
func (r *Ref) Wait() { r.ref.Wait() }

// WithRef binds ref as the calling goroutine's implicit netref for the
// duration of fn. Code running inside fn can look the Ref up with
// CurrentRef instead of having it passed in.
func WithRef(r *Ref, fn func()) { internal.WithNetRef(r.ref, fn) }

// CurrentRef returns the Ref bound to the calling goroutine by WithRef, or
// nil if none is bound.
func CurrentRef() *Ref {
	if r := internal.CurrentNetRef(); r != nil {
		return &Ref{ref: r}
	}
	return nil
}

// Push submits v to r as a single stimulus.
func Push(ref *Ref, r Reactive, v any) {
	internal.Push(ref.ref, r.reactive(), v)
}

// PushMany submits every value in vs as one stimulus, visible together to
// the next propagation cycle.
func PushMany(ref *Ref, vs map[Reactive]any) {
	raw := make(map[internal.Reactive]any, len(vs))
	for r, v := range vs {
		raw[r.reactive()] = v
	}
	internal.PushMany(ref.ref, raw)
}

// Complete submits the Completed sentinel to r.
func Complete(ref *Ref, r Reactive) {
	internal.Complete(ref.ref, r.reactive())
}

// Link is an immutable hyperedge between a Ref's reactives.
type Link struct {
	l *internal.Link
}

// NewLink builds a Link. fn defaults to the built-in fan/zip broadcast when
// nil.
func NewLink(label string, inputs []Reactive, outputs []Reactive, fn LinkFn) *Link {
	in := make([]internal.Reactive, len(inputs))
	for i, r := range inputs {
		in[i] = r.reactive()
	}
	out := make([]internal.Reactive, len(outputs))
	for i, r := range outputs {
		out[i] = r.reactive()
	}
	return &Link{l: internal.NewLink(label, in, out, fn)}
}

// WithErrorFn attaches an ErrorFn, called when LinkFn panics.
func (l *Link) WithErrorFn(fn ErrorFn) *Link {
	l.l.ErrorFn = fn
	return l
}

// WithCompleteFn attaches a CompleteFn, called once per input that
// completes.
func (l *Link) WithCompleteFn(fn CompleteFn) *Link {
	l.l.CompleteFn = fn
	return l
}

// WithCompleteOnRemove grants this link one alive-count hold on each of rs;
// removing the link releases those holds, auto-completing any that reach
// zero.
func (l *Link) WithCompleteOnRemove(rs ...Reactive) *Link {
	raw := make([]internal.Reactive, len(rs))
	for i, r := range rs {
		raw[i] = r.reactive()
	}
	l.l.CompleteOnRemove = raw
	return l
}

// WithExecutor makes this an asynchronous link: LinkFn runs on e instead of
// the propagation worker.
func (l *Link) WithExecutor(e Executor) *Link {
	l.l.Executor = e
	return l
}

// Predicate returns a Predicate matching exactly this link, for passing to
// RemoveLinks.
func (l *Link) Predicate() Predicate {
	return func(cand *internal.Link) bool { return cand == l.l }
}

// AddLinks submits a graph edit adding links.
func AddLinks(ref *Ref, links ...*Link) {
	raw := make([]*internal.Link, len(links))
	for i, l := range links {
		raw[i] = l.l
	}
	internal.AddLinks(ref.ref, raw...)
}

// RemoveLinks submits a graph edit removing every link matching pred.
func RemoveLinks(ref *Ref, pred Predicate) {
	internal.RemoveLinks(ref.ref, pred)
}

// OnError attaches fn as the error handler for the link whose sole output is
// r. A panic during that link's evaluation routes to fn instead of ref's
// global error sink, and fn may return a replacement Result that propagates
// exactly as if the link's own LinkFn had produced it.
func OnError(ref *Ref, r Reactive, fn ErrorFn) {
	internal.OnError(ref.ref, r.reactive(), fn)
}
