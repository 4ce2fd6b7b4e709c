package internal

import "sync"

// Behavior is a continuous reactive: a single cell that is always available
// while live. Delivering an equal value is a no-op, which is what gives
// behaviors value-identity semantics and keeps equal writes from causing
// spurious propagation.
type Behavior struct {
	mu sync.Mutex

	label string
	cell  RVT
	fresh bool
	live  bool
}

// NewBehavior creates a Behavior holding initial, live from the start. The
// initial value counts as fresh, so a link depending on it fires once on
// its own first evaluation even without an explicit delivery.
func NewBehavior(label string, initial any, now int64) *Behavior {
	return &Behavior{
		label: label,
		cell:  RVT{Value: Some(initial), Time: now},
		fresh: true,
		live:  true,
	}
}

func (b *Behavior) Label() string { return b.label }

func (b *Behavior) NextValue() (RVT, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.live {
		return RVT{}, false
	}
	return b.cell, true
}

func (b *Behavior) Available() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.live
}

func (b *Behavior) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fresh
}

func (b *Behavior) Completed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.live
}

func (b *Behavior) Consume() (RVT, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.live {
		return RVT{}, false
	}
	b.fresh = false
	return b.cell, true
}

func (b *Behavior) Deliver(rvt RVT) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.live {
		return false, ErrInvalidState
	}

	if rvt.Value.IsCompleted() {
		b.live = false
		return true, nil
	}

	if valuesEqual(b.cell.Value, rvt.Value) {
		return false, nil
	}

	b.cell = rvt
	b.fresh = true
	return true, nil
}
