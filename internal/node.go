package internal

import "reflect"

// reactiveID identifies a reactive within a Network. It is derived directly
// from the reactive's own pointer identity rather than stored in a strong
// lookup map, so a Network's bookkeeping never itself becomes "the one
// strong reference" keeping a user-abandoned output alive — the network's
// id tracking is a weak key by construction, per the design note on
// rid_map.
type reactiveID uintptr

// idIndex computes reactiveIDs. It holds no reference to any Reactive: the
// id is a pure function of the concrete value's pointer, so a reactive with
// no other strong holder remains collectable purely because nothing here
// retains it.
type idIndex struct{}

func newIDIndex() *idIndex { return &idIndex{} }

// idFor returns r's id. Every concrete Reactive implementation is itself a
// pointer type, so reflect.Value.Pointer gives a stable identity for the
// object's lifetime without needing to store r anywhere.
func (x *idIndex) idFor(r Reactive) reactiveID {
	return reactiveID(reflect.ValueOf(r).Pointer())
}
