package internal

// Push submits a single delivery as its own stimulus, stamped with ref's
// logical clock.
func Push(ref *NetRef, r Reactive, v any) {
	ref.Submit(Stimulus{Deliveries: map[Reactive]RVT{
		r: {Value: Some(v), Time: ref.nextTime()},
	}})
}

// PushMany submits several deliveries as one stimulus, so they are all
// visible to the same propagation cycle before any link fires.
func PushMany(ref *NetRef, vs map[Reactive]any) {
	now := ref.nextTime()
	rvts := make(map[Reactive]RVT, len(vs))
	for r, v := range vs {
		rvts[r] = RVT{Value: Some(v), Time: now}
	}
	ref.Submit(Stimulus{Deliveries: rvts})
}

// Complete submits the Completed sentinel to r.
func Complete(ref *NetRef, r Reactive) {
	ref.Submit(Stimulus{Deliveries: map[Reactive]RVT{
		r: {Value: CompletedValue, Time: ref.nextTime()},
	}})
}

// AddLinks submits a graph edit that adds links, atomically with respect to
// any concurrently-submitted stimulus (both are just messages in the same
// mailbox, processed one at a time).
func AddLinks(ref *NetRef, links ...*Link) {
	ref.Submit(Stimulus{Add: links})
}

// RemoveLinks submits a graph edit that removes every link matching pred.
func RemoveLinks(ref *NetRef, pred Predicate) {
	ref.Submit(Stimulus{RemoveBy: pred})
}

// OnError attaches fn as the error handler for the link whose sole output is
// r, delivered as an exec stimulus so the attachment is atomic with respect
// to whatever else is in flight on ref's mailbox. A panic in that link's
// LinkFn is then routed to fn instead of ref's global error sink, and fn's
// replacement Result (if any) propagates exactly as if LinkFn had returned
// it directly. If no registered link has r as its sole output, ErrNoSuchLink
// is reported to ref's error sink instead.
func OnError(ref *NetRef, r Reactive, fn ErrorFn) {
	ref.Submit(Stimulus{Exec: func(ref *NetRef) {
		if !ref.network.SetErrorFn(r, fn) {
			ref.ReportError(ErrNoSuchLink)
		}
	}})
}
