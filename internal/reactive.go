package internal

// Reactive is the capability set every variant (Behavior, EventStream,
// SeqStream, FnBehavior) implements. Implementations are always pointers so
// that identity comparison and weak.Pointer tracking both work on them.
type Reactive interface {
	// Label is a human-readable tag used only for logging/debugging.
	Label() string

	// NextValue peeks the current value without consuming it.
	NextValue() (RVT, bool)

	// Available reports whether a value is ready to be consumed.
	Available() bool

	// Pending reports whether a value waits that should cause propagation.
	Pending() bool

	// Completed reports whether this reactive is in its terminal state.
	Completed() bool

	// Consume reads and advances state, returning what NextValue would have
	// peeked immediately prior.
	Consume() (RVT, bool)

	// Deliver pushes a value in. A true return means propagation should run.
	// Delivering CompletedValue transitions the reactive to completed.
	Deliver(RVT) (bool, error)
}
