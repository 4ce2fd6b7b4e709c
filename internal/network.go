package internal

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// rebuildThreshold bounds how many removed links a Network tolerates before
// rebuilding its level and consumer indexes. A removed link leaves the link
// table at once but stays listed in the consumers index until then, trading
// a little extra memory for cheaper RemoveLinks calls under churn.
const rebuildThreshold = 100

// Network owns the link graph: the level-ordered structure the engine walks
// each cycle, the alive-counter bookkeeping backing auto-completion, and the
// set of reactives that completed during the cycle currently in progress.
type Network struct {
	mu sync.Mutex

	ID uuid.UUID

	ids *idIndex

	nextSeq uint64
	links   map[uint64]*Link
	removed int

	// reactiveLevel is the level at which each reactive's value becomes
	// available: one past the level of the link that produces it. Absent
	// means "no registered link produces this reactive (yet)", which
	// computeLevel treats as level 0 and applyResult (internal/engine.go)
	// treats as "unknown", always deferring a value aimed at it.
	reactiveLevel map[reactiveID]int
	consumers     map[reactiveID][]*Link

	aliveMap map[reactiveID]int

	completed map[reactiveID]Reactive
}

// NewNetwork creates an empty Network, identified by a fresh UUID for
// logging/debugging correlation.
func NewNetwork() *Network {
	return &Network{
		ID:            uuid.New(),
		ids:           newIDIndex(),
		links:         make(map[uint64]*Link),
		reactiveLevel: make(map[reactiveID]int),
		consumers:     make(map[reactiveID][]*Link),
		aliveMap:      make(map[reactiveID]int),
		completed:     make(map[reactiveID]Reactive),
	}
}

// AddLink registers l, assigning it a sequence number (the tie-break order
// among links at the same level) and a level derived from the current
// levels of its inputs. Adding l can also raise the level of links already
// registered: if one of l's outputs is itself consumed by an
// earlier-registered link that assumed a lower level for it, relevelDownstream
// walks out from l's outputs and bumps every such link (and, transitively,
// its own outputs and their consumers) so the level invariant keeps holding
// network-wide, not just for l itself.
func (n *Network) AddLink(l *Link) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextSeq++
	l.seq = n.nextSeq
	n.links[l.seq] = l

	n.computeLevel(l)
	n.registerOutputLevels(l)
	n.registerConsumer(l)
	n.relevelDownstream(l)

	for _, r := range l.CompleteOnRemove {
		id := n.ids.idFor(r)
		n.aliveMap[id]++
	}
}

func (n *Network) computeLevel(l *Link) {
	level := 0
	for _, in := range l.Inputs {
		if lvl := n.reactiveLevel[n.ids.idFor(in)]; lvl > level {
			level = lvl
		}
	}
	l.level = level
}

// registerOutputLevels seeds or raises the level of each of l's outputs to
// one past l's own level — the level at which their value becomes visible
// to downstream links.
func (n *Network) registerOutputLevels(l *Link) {
	for _, r := range l.OutputsRaw() {
		if r == nil {
			continue
		}
		id := n.ids.idFor(r)
		if lvl := l.level + 1; lvl > n.reactiveLevel[id] {
			n.reactiveLevel[id] = lvl
		}
	}
}

// relevelDownstream walks outward, breadth-first, from l's outputs, raising
// the level of any already-registered consumer link that l's own
// (re)computed level has placed at or below one of its inputs, and in turn
// that consumer's own outputs and their consumers. A link whose level was
// assigned before l existed, when one of l's outputs had no producer yet
// (or a lower one), would otherwise never be revisited and could become
// permanently mis-ordered relative to l.
func (n *Network) relevelDownstream(l *Link) {
	visited := map[*Link]bool{l: true}

	type frontier struct {
		id    reactiveID
		level int
	}
	var queue []frontier
	for _, r := range l.Outputs() {
		id := n.ids.idFor(r)
		queue = append(queue, frontier{id: id, level: n.reactiveLevel[id]})
	}

	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]

		for _, consumer := range n.consumers[f.id] {
			if visited[consumer] {
				continue
			}
			if consumer.level >= f.level {
				continue
			}
			visited[consumer] = true
			consumer.level = f.level

			for _, out := range consumer.Outputs() {
				outID := n.ids.idFor(out)
				newLvl := consumer.level + 1
				if n.reactiveLevel[outID] >= newLvl {
					continue
				}
				n.reactiveLevel[outID] = newLvl
				queue = append(queue, frontier{id: outID, level: newLvl})
			}
		}
	}
}

// ReactiveLevel returns the level at which r's value becomes available, and
// whether r has a known level at all. False means no registered link
// produces r — a root input, or a reactive nothing in the graph declares as
// an output.
func (n *Network) ReactiveLevel(r Reactive) (int, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	lvl, ok := n.reactiveLevel[n.ids.idFor(r)]
	return lvl, ok
}

// SetErrorFn finds the link whose sole output slot resolves to r and attaches fn as
// its ErrorFn, reporting ok=false if no such link is registered.
func (n *Network) SetErrorFn(r Reactive, fn ErrorFn) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, l := range n.links {
		outs := l.OutputsRaw()
		if len(outs) != 1 || outs[0] != r {
			continue
		}
		l.SetErrorFn(fn)
		return true
	}
	return false
}

func (n *Network) registerConsumer(l *Link) {
	for _, in := range l.Inputs {
		id := n.ids.idFor(in)
		n.consumers[id] = append(n.consumers[id], l)
	}
}

// consumersOf returns every link that declares r as an input.
func (n *Network) consumersOf(r Reactive) []*Link {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.consumers[n.ids.idFor(r)]
}

// RemoveLinks deletes every link matching pred, decrementing the alive count
// of each link's CompleteOnRemove reactives and returning those that newly
// reached zero (callers treat these as auto-completions).
func (n *Network) RemoveLinks(pred Predicate) []Reactive {
	n.mu.Lock()
	defer n.mu.Unlock()

	var autoCompleted []Reactive
	for seq, l := range n.links {
		if !pred(l) {
			continue
		}
		delete(n.links, seq)
		n.removed++

		for _, r := range l.CompleteOnRemove {
			id := n.ids.idFor(r)
			n.aliveMap[id]--
			if n.aliveMap[id] <= 0 {
				delete(n.aliveMap, id)
				autoCompleted = append(autoCompleted, r)
			}
		}
	}

	if n.removed >= rebuildThreshold {
		n.rebuildLocked()
	}

	return autoCompleted
}

// Rebuild recomputes the level and consumer indexes from the current link
// table, the same housekeeping RemoveLinks triggers automatically once
// rebuildThreshold removals have accumulated.
func (n *Network) Rebuild() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rebuildLocked()
}

func (n *Network) rebuildLocked() {
	ordered := make([]*Link, 0, len(n.links))
	for _, l := range n.links {
		ordered = append(ordered, l)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].seq < ordered[j].seq })

	n.reactiveLevel = make(map[reactiveID]int)
	n.consumers = make(map[reactiveID][]*Link)
	for _, l := range ordered {
		n.computeLevel(l)
		n.registerOutputLevels(l)
		n.registerConsumer(l)
		n.relevelDownstream(l)
	}

	n.removed = 0
}

// Links returns every currently registered link, in sequence order.
func (n *Network) Links() []*Link {
	n.mu.Lock()
	defer n.mu.Unlock()

	ordered := make([]*Link, 0, len(n.links))
	for _, l := range n.links {
		ordered = append(ordered, l)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].seq < ordered[j].seq })
	return ordered
}

// AdjustAlive applies delta to each reactive's alive count and returns the
// subset that newly reached zero (used by add_links!/remove_links! graph
// edits that explicitly grant or revoke a hold via DontComplete/AllowComplete).
func (n *Network) AdjustAlive(rs []Reactive, delta int) []Reactive {
	n.mu.Lock()
	defer n.mu.Unlock()

	var hitZero []Reactive
	for _, r := range rs {
		id := n.ids.idFor(r)
		n.aliveMap[id] += delta
		if n.aliveMap[id] <= 0 {
			delete(n.aliveMap, id)
			hitZero = append(hitZero, r)
		}
	}
	return hitZero
}

// HoldAsync increments the alive count of each of rs that already
// participates in the alive-counter protocol (has an existing aliveMap
// entry), returning the subset actually bumped. A reactive no link has ever
// granted a complete_on_remove hold on isn't reference-counted at all;
// bumping it from nothing would manufacture a hold that releasing later
// tears back down through zero, auto-completing a reactive nothing ever
// asked to be lifecycle-managed.
func (n *Network) HoldAsync(rs []Reactive) []Reactive {
	n.mu.Lock()
	defer n.mu.Unlock()

	var held []Reactive
	for _, r := range rs {
		id := n.ids.idFor(r)
		if _, ok := n.aliveMap[id]; ok {
			n.aliveMap[id]++
			held = append(held, r)
		}
	}
	return held
}

// markCompleted records r as completed during the cycle in progress.
func (n *Network) markCompleted(r Reactive) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed[n.ids.idFor(r)] = r
}

// drainCompleted empties and returns the set of reactives marked completed
// since the last drain.
func (n *Network) drainCompleted() []Reactive {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]Reactive, 0, len(n.completed))
	for id, r := range n.completed {
		out = append(out, r)
		delete(n.completed, id)
	}
	return out
}
