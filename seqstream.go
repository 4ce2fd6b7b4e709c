package reactnet

import "github.com/reactnet-go/reactnet/internal"

// seqAdapter lifts a typed next function into the type-erased internal.Seq the
// engine consumes.
type seqAdapter[T any] struct {
	next func() (T, bool)
}

func (a seqAdapter[T]) Next() (any, bool) {
	v, ok := a.next()
	if !ok {
		return nil, false
	}
	return v, true
}

// SeqStream is a typed, read-only reactive pulling from a lazy, possibly
// infinite source.
type SeqStream[T any] struct {
	s *internal.SeqStream
}

// NewSeqStream creates a SeqStream pulling from next, stamped with the
// network's logical clock via ref.
func NewSeqStream[T any](label string, ref *Ref, next func() (T, bool)) *SeqStream[T] {
	return &SeqStream[T]{
		s: internal.NewSeqStream(label, seqAdapter[T]{next: next}, ref.ref.NextTime),
	}
}

func (s *SeqStream[T]) reactive() internal.Reactive { return s.s }

// Raw returns the underlying type-erased reactive, for use as a map key in
// a LinkFn's Result.
func (s *SeqStream[T]) Raw() internal.Reactive { return s.s }

// Label returns the stream's diagnostic label.
func (s *SeqStream[T]) Label() string { return s.s.Label() }

// Peek returns the next buffered value without consuming it.
func (s *SeqStream[T]) Peek() (T, bool) {
	rvt, ok := s.s.NextValue()
	if !ok {
		var zero T
		return zero, false
	}
	return as[T](rvt.Value.Unwrap()), true
}

// Completed reports whether the underlying sequence is exhausted.
func (s *SeqStream[T]) Completed() bool { return s.s.Completed() }
