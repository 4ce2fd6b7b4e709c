package internal

import "sync"

// Seq is a lazy, possibly-infinite source of values consumed in order. It
// lets a prebuilt sequence feed into the network as a read-only source
// through the same interface an EventStream exposes.
type Seq interface {
	Next() (any, bool)
}

// SeqStream reuses the event-stream contract over a Seq. Delivery is
// unsupported: a SeqStream only produces, it never accepts pushed values.
type SeqStream struct {
	mu sync.Mutex

	label     string
	seq       Seq
	now       func() int64
	buffered  *RVT
	lastOcc   RVT
	exhausted bool
}

// NewSeqStream creates a SeqStream over seq. now supplies the logical
// timestamp stamped on each value pulled from seq.
func NewSeqStream(label string, seq Seq, now func() int64) *SeqStream {
	return &SeqStream{label: label, seq: seq, now: now}
}

func (s *SeqStream) Label() string { return s.label }

func (s *SeqStream) fill() {
	if s.buffered != nil || s.exhausted {
		return
	}
	v, ok := s.seq.Next()
	if !ok {
		s.exhausted = true
		return
	}
	rvt := RVT{Value: Some(v), Time: s.now()}
	s.buffered = &rvt
}

func (s *SeqStream) NextValue() (RVT, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fill()
	if s.buffered == nil {
		return RVT{}, false
	}
	return *s.buffered, true
}

func (s *SeqStream) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fill()
	return s.buffered != nil
}

func (s *SeqStream) Pending() bool { return s.Available() }

func (s *SeqStream) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fill()
	return s.exhausted && s.buffered == nil
}

func (s *SeqStream) Consume() (RVT, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fill()
	if s.buffered == nil {
		return RVT{}, false
	}
	rvt := *s.buffered
	s.buffered = nil
	s.lastOcc = rvt
	return rvt, true
}

func (s *SeqStream) Deliver(RVT) (bool, error) {
	return false, ErrUnsupported
}
