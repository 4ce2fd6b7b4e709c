package internal

// cycleScratch is the mutable state threaded through a single call to
// runCycle: which inputs were already peeked during the current level pass,
// so a later link sharing that input doesn't re-peek (and potentially
// re-observe a different value if something delivered in between).
type cycleScratch struct {
	peeked map[Reactive]RVT
}

func newCycleScratch() *cycleScratch {
	return &cycleScratch{
		peeked: make(map[Reactive]RVT),
	}
}

func (c *cycleScratch) peek(r Reactive) (RVT, bool) {
	if rvt, ok := c.peeked[r]; ok {
		return rvt, true
	}
	rvt, ok := r.NextValue()
	if !ok {
		return RVT{}, false
	}
	c.peeked[r] = rvt
	return rvt, true
}

func (c *cycleScratch) reset() {
	clear(c.peeked)
}
