package reactnet

import "github.com/reactnet-go/reactnet/internal"

// EventStream is a discrete, typed reactive: a bounded FIFO of occurrences.
type EventStream[T any] struct {
	s *internal.EventStream
}

// NewEventStream creates an EventStream bounded to maxSize occurrences
// (internal.DefaultMaxQueueSize if maxSize <= 0).
func NewEventStream[T any](label string, maxSize int) *EventStream[T] {
	return &EventStream[T]{s: internal.NewEventStream(label, maxSize)}
}

func (s *EventStream[T]) reactive() internal.Reactive { return s.s }

// Raw returns the underlying type-erased reactive, for use as a map key in
// a LinkFn's Result.
func (s *EventStream[T]) Raw() internal.Reactive { return s.s }

// Label returns the stream's diagnostic label.
func (s *EventStream[T]) Label() string { return s.s.Label() }

// Peek returns the head of the queue without consuming it.
func (s *EventStream[T]) Peek() (T, bool) {
	rvt, ok := s.s.NextValue()
	if !ok {
		var zero T
		return zero, false
	}
	return as[T](rvt.Value.Unwrap()), true
}

// Consume dequeues and returns the head of the queue.
func (s *EventStream[T]) Consume() (T, bool) {
	rvt, ok := s.s.Consume()
	if !ok {
		var zero T
		return zero, false
	}
	return as[T](rvt.Value.Unwrap()), true
}

// Completed reports whether the stream has received the Completed sentinel
// and its queue has fully drained.
func (s *EventStream[T]) Completed() bool { return s.s.Completed() }
