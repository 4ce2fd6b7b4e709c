package internal

// levelHeap buckets links by level in an array of doubly-linked rings, grown
// on demand, the same shape as a bucket queue: insertion and removal are
// O(1), and DrainLevels visits every bucket from low to high exactly once, which is what
// gives the engine level-ordered evaluation without a general-purpose sort
// on every cycle.
type levelHeap struct {
	min int
	max int

	buckets []*heapEntry // [level]head

	lookup map[*Link]*heapEntry // for O(1) removal
}

type heapEntry struct {
	link *Link

	next *heapEntry
	prev *heapEntry
}

// newLevelHeap creates a levelHeap with room for levels [0, capacity).
func newLevelHeap(capacity int) *levelHeap {
	if capacity <= 0 {
		capacity = 2000
	}
	return &levelHeap{
		buckets: make([]*heapEntry, capacity),
		lookup:  make(map[*Link]*heapEntry),
	}
}

func (h *levelHeap) grow(level int) {
	if level < len(h.buckets) {
		return
	}
	next := make([]*heapEntry, level*2+1)
	copy(next, h.buckets)
	h.buckets = next
}

func (h *levelHeap) Insert(link *Link) {
	if link.inHeap {
		return
	}
	link.inHeap = true

	h.grow(link.level)

	entry := &heapEntry{link: link}
	h.lookup[link] = entry

	level := link.level
	if h.buckets[level] == nil {
		h.buckets[level] = entry
		entry.prev = entry
		entry.next = nil
	} else {
		head := h.buckets[level]
		tail := head.prev

		tail.next = entry
		entry.prev = tail
		entry.next = nil
		head.prev = entry
	}

	if level > h.max {
		h.max = level
	}
}

func (h *levelHeap) Remove(link *Link) {
	if !link.inHeap {
		return
	}
	link.inHeap = false

	entry, ok := h.lookup[link]
	if !ok {
		return
	}
	delete(h.lookup, link)

	level := entry.link.level

	if entry.prev == entry {
		h.buckets[level] = nil
		entry.prev = entry
		entry.next = nil
		return
	}

	head := h.buckets[level]
	if entry == head {
		h.buckets[level] = entry.next
	} else {
		entry.prev.next = entry.next
	}

	next := entry.next
	if next == nil {
		next = head
	}
	next.prev = entry.prev

	entry.prev = entry
	entry.next = nil
}

// DrainLevels processes the heap bucket by bucket in ascending level order,
// leaving the heap empty. Every link queued at a given level is popped
// before processBatch is called for that level, so processBatch sees the
// whole level's worth of candidates at once — which is what lets a caller
// decide, once the batch is known, whether an input shared across several
// of them is still needed by anything else before consuming it. processBatch
// may insert further links into h (e.g. newly-ready downstream links); those
// are picked up as DrainLevels advances past their level, always higher than
// the one just visited per the level invariant, so a bucket is never
// revisited once passed.
func (h *levelHeap) DrainLevels(processBatch func(level int, batch []*Link)) {
	for h.min = 0; h.min <= h.max; h.min++ {
		var batch []*Link
		for entry := h.buckets[h.min]; entry != nil; entry = h.buckets[h.min] {
			h.Remove(entry.link)
			batch = append(batch, entry.link)
		}
		if len(batch) == 0 {
			continue
		}
		processBatch(h.min, batch)
	}

	h.max = 0
}

// Remaining returns every link still queued in the heap, in no particular
// order — the set of links a batch still needs to wait on before an input
// they share can safely be consumed.
func (h *levelHeap) Remaining() []*Link {
	out := make([]*Link, 0, len(h.lookup))
	for l := range h.lookup {
		out = append(out, l)
	}
	return out
}

func (h *levelHeap) Empty() bool {
	return len(h.lookup) == 0
}
