package reactnet

import "github.com/reactnet-go/reactnet/internal"

// FnBehavior samples a pure function on every read; it is always available
// and never completes on its own.
type FnBehavior[T any] struct {
	f *internal.FnBehavior
}

// NewFnBehavior creates an FnBehavior sampling fn, stamped via ref's logical
// clock.
func NewFnBehavior[T any](label string, ref *Ref, fn func() T) *FnBehavior[T] {
	return &FnBehavior[T]{
		f: internal.NewFnBehavior(label, func() any { return fn() }, ref.ref.NextTime),
	}
}

func (f *FnBehavior[T]) reactive() internal.Reactive { return f.f }

// Raw returns the underlying type-erased reactive, for use as a map key in
// a LinkFn's Result.
func (f *FnBehavior[T]) Raw() internal.Reactive { return f.f }

// Label returns the behavior's diagnostic label.
func (f *FnBehavior[T]) Label() string { return f.f.Label() }

// Value samples the underlying function.
func (f *FnBehavior[T]) Value() T {
	rvt, _ := f.f.NextValue()
	return as[T](rvt.Value.Unwrap())
}
