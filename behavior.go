package reactnet

import "github.com/reactnet-go/reactnet/internal"

// Behavior is a continuous, typed reactive: a single cell, always available
// while live, that drops an equal-valued delivery rather than propagating a
// spurious update.
type Behavior[T any] struct {
	b *internal.Behavior
}

// NewBehavior creates a Behavior holding initial.
func NewBehavior[T any](label string, initial T) *Behavior[T] {
	return &Behavior[T]{b: internal.NewBehavior(label, initial, 0)}
}

func (b *Behavior[T]) reactive() internal.Reactive { return b.b }

// Raw returns the underlying type-erased reactive, for use as a map key in
// a LinkFn's Result.
func (b *Behavior[T]) Raw() internal.Reactive { return b.b }

// Label returns the behavior's diagnostic label.
func (b *Behavior[T]) Label() string { return b.b.Label() }

// Value returns the behavior's current value, and false if it has
// completed.
func (b *Behavior[T]) Value() (T, bool) {
	rvt, ok := b.b.NextValue()
	if !ok {
		var zero T
		return zero, false
	}
	return as[T](rvt.Value.Unwrap()), true
}

// Completed reports whether this behavior has received the Completed
// sentinel.
func (b *Behavior[T]) Completed() bool { return b.b.Completed() }
