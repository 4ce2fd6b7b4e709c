package internal

// runCycle drains stimulus and then repeatedly evaluates every ready link in
// level order, applying whatever Results come back, until no link is ready,
// no input has a queued delivery, and no completion is waiting to fire a
// CompleteFn. One call processes exactly one Stimulus to quiescence; the
// worker goroutine in runtime.go calls this once per mailbox receive.
func runCycle(ref *NetRef, stimulus Stimulus) {
	net := ref.network
	scratch := newCycleScratch()

	applyStimulus(ref, stimulus)

	for {
		scratch.reset()

		progressed := runLevelPass(ref, scratch)

		autoCompleted := net.RemoveLinks(func(l *Link) bool { return l.Dead() })
		for _, r := range autoCompleted {
			completeReactive(ref, r)
		}

		completedProgressed := runCompletions(ref)

		if !progressed && !completedProgressed && len(autoCompleted) == 0 {
			break
		}
	}
}

// applyStimulus runs a Stimulus's Exec reconfiguration (if any), then applies
// its deliveries and graph edits. There is no established "current level"
// yet at the top of a cycle, so deliveries here are unconditional: they land
// directly on their target reactive.
func applyStimulus(ref *NetRef, s Stimulus) {
	if s.Exec != nil {
		s.Exec(ref)
	}
	for r, rvt := range s.Deliveries {
		deliverTo(ref, r, rvt)
	}
	applyGraphEdits(ref, s.Add, s.RemoveBy, s.DontComplete, s.AllowComplete)
}

func deliverTo(ref *NetRef, r Reactive, rvt RVT) {
	ok, err := r.Deliver(rvt)
	if err == ErrOverflow {
		// Don't block or drop: hand the delivery back as a fresh stimulus so
		// it is retried once the queue has drained some.
		ref.Submit(Stimulus{Deliveries: map[Reactive]RVT{r: rvt}})
		return
	}
	if err != nil {
		ref.ReportError(err)
		return
	}
	if ok && rvt.Value.IsCompleted() {
		ref.network.markCompleted(r)
	}
}

// completeReactive delivers the Completed sentinel to r itself (transitioning
// its internal state, not just noting it for CompleteFn purposes) and records
// it as completed. Used wherever auto-completion reaches zero outside of an
// explicit Complete call — reaching zero in the alive-counter protocol means
// the reactive completes, not merely that interested links are notified.
func completeReactive(ref *NetRef, r Reactive) {
	deliverTo(ref, r, RVT{Value: CompletedValue, Time: ref.nextTime()})
}

func applyGraphEdits(ref *NetRef, add []*Link, removeBy Predicate, dontComplete, allowComplete []Reactive) {
	net := ref.network

	for _, l := range add {
		net.AddLink(l)
	}
	if removeBy != nil {
		autoCompleted := net.RemoveLinks(removeBy)
		for _, r := range autoCompleted {
			completeReactive(ref, r)
		}
	}
	if len(dontComplete) > 0 {
		net.AdjustAlive(dontComplete, 1)
	}
	if len(allowComplete) > 0 {
		hitZero := net.AdjustAlive(allowComplete, -1)
		for _, r := range hitZero {
			completeReactive(ref, r)
		}
	}
}

// runLevelPass builds a level-ordered heap of every currently ready link and
// drains it one level at a time, reinserting newly-ready links (links whose
// input just received output from a link evaluated earlier in this same
// pass) as it goes. It returns whether any link actually fired.
func runLevelPass(ref *NetRef, scratch *cycleScratch) bool {
	net := ref.network
	heap := newLevelHeap(64)

	for _, l := range net.Links() {
		if l.Ready() && !l.Dead() {
			heap.Insert(l)
		}
	}

	if heap.Empty() {
		return false
	}

	fired := false
	heap.DrainLevels(func(level int, batch []*Link) {
		var evaluated []linkEval
		for _, l := range batch {
			if !l.Ready() || l.Dead() {
				continue
			}
			fired = true
			evaluated = append(evaluated, evaluateLink(ref, scratch, heap, l))
		}
		consumeBatch(heap, evaluated)
	})
	return fired
}

// linkEval reports which inputs one evaluateLink call actually peeked and
// whether its Result opted out of consuming them, so the caller can decide —
// once the rest of the level's batch is known — whether consuming is
// actually safe without starving a link elsewhere in the heap that hasn't
// run yet.
type linkEval struct {
	inputs    []Reactive
	noConsume bool
}

// consumeBatch calls Consume on every input reactive a just-evaluated batch
// (one level's worth of links) is actually done with for this cycle: it is an
// input of at least one evaluated link whose Result did not set NoConsume,
// and no link still queued in heap declares it as an input. A NoConsume
// Result only withholds its own link's inputs; an input shared with another
// evaluated link that did not set NoConsume is still consumed. This is what
// keeps Consume to at most once
// per reactive per cycle when two links — sharing a level, or one still
// waiting its turn higher in the heap — both become ready off the same
// delivery: the shared value is peeked by both, but only consumed once,
// after the last link that needs it has run.
func consumeBatch(heap *levelHeap, evaluated []linkEval) {
	stillNeeded := map[Reactive]bool{}
	for _, l := range heap.Remaining() {
		for _, in := range l.Inputs {
			stillNeeded[in] = true
		}
	}

	toConsume := map[Reactive]bool{}
	for _, e := range evaluated {
		if e.noConsume {
			continue
		}
		for _, in := range e.inputs {
			if stillNeeded[in] {
				continue
			}
			toConsume[in] = true
		}
	}
	for r := range toConsume {
		r.Consume()
	}
}

// evaluateLink peeks l's inputs and runs its LinkFn on l.Executor, falling
// back to ref's own executor when the link doesn't override it. A
// SyncExecutor (the default when neither is set) runs LinkFn inline and
// applies its Result before returning; any other Executor hands the call off
// and the Result comes back later as a fresh Stimulus. evaluateLink never
// calls Consume itself — it reports which inputs are eligible, and
// consumeBatch decides once the whole level's links have run.
func evaluateLink(ref *NetRef, scratch *cycleScratch, heap *levelHeap, l *Link) linkEval {
	in := Result{
		InputReactives:  l.Inputs,
		OutputReactives: l.Outputs(),
		InputRVTs:       make(map[Reactive]RVT, len(l.Inputs)),
	}
	for _, r := range l.Inputs {
		if rvt, ok := scratch.peek(r); ok {
			in.InputRVTs[r] = rvt
		}
	}

	executor := l.Executor
	if executor == nil {
		executor = ref.Executor()
	}
	if _, sync := executor.(SyncExecutor); !sync {
		// Hold the outputs alive across the round-trip to the executor, for
		// whichever of them already participate in the alive-counter
		// protocol: an output some link has granted complete_on_remove on
		// must not be auto-completed by an unrelated event while this
		// link's async result is still in flight.
		held := ref.network.HoldAsync(l.Outputs())

		executor.Run(func() {
			out, err := safeCall(l, in)
			if err != nil {
				ref.ReportError(err)
				if len(held) > 0 {
					hitZero := ref.network.AdjustAlive(held, -1)
					for _, r := range hitZero {
						completeReactive(ref, r)
					}
				}
				return
			}
			if out == nil {
				out = &Result{}
			}
			// An async link's Result arrives back as a fresh stimulus: by
			// the time it is ready the cycle that triggered it has likely
			// already finished. Release the hold taken above alongside
			// whatever the link-fn itself asked to release.
			s := resultToStimulus(*out)
			s.AllowComplete = append(s.AllowComplete, held...)
			ref.Submit(s)
		})

		// NoConsume is a field of the Result, and an async LinkFn hasn't
		// produced one yet at dispatch time: its inputs join this batch's
		// consume set unconditionally, same as a sync link with no opinion.
		return linkEval{inputs: l.Inputs}
	}

	out, err := safeCall(l, in)
	if err != nil {
		// A failed evaluation counts as producing no output: its inputs are
		// still consumed, so the link does not re-fire on the same value.
		ref.ReportError(err)
		return linkEval{inputs: l.Inputs}
	}
	if out == nil {
		applyResult(ref, heap, l.level, Result{})
		return linkEval{inputs: l.Inputs}
	}

	applyResult(ref, heap, l.level, *out)
	return linkEval{inputs: l.Inputs, noConsume: out.NoConsume}
}

// safeCall invokes l.LinkFn, recovering a panic into l.ErrorFn (if set) or
// else returning it as an error, with a nil Result, for the caller to route
// to the error sink.
func safeCall(l *Link, in Result) (out *Result, callErr error) {
	defer func() {
		if rec := recover(); rec != nil {
			err := panicToError(rec)
			if fn := l.errorFn(); fn != nil {
				errResult := in
				errResult.Err = err
				replaced, fnErr := fn(errResult)
				if fnErr == nil {
					out = replaced
					callErr = nil
					return
				}
			}
			out = nil
			callErr = err
		}
	}()

	return l.LinkFn(in)
}

// applyResult delivers a Result's outputs and applies its graph edits.
// currentLevel is the level of the link that produced out (spec's "current
// level" for the cycle iteration just evaluated). A value whose target has
// an unknown level, or a level no higher than currentLevel, is upstream (or
// a feedback edge back into the wave just evaluated): delivering it inline
// here would let it re-fire within this same cycle, so instead it is
// resubmitted as a fresh Stimulus and picked up by a later call to runCycle.
// Everything else is downstream of the link that just ran and is delivered
// immediately, with any link it newly makes ready pushed into heap so the
// in-progress level pass picks it up without waiting for the next outer
// iteration.
func applyResult(ref *NetRef, heap *levelHeap, currentLevel int, out Result) {
	net := ref.network

	for r, rvt := range out.OutputRVTs {
		if lvl, known := net.ReactiveLevel(r); !known || lvl <= currentLevel {
			ref.Submit(Stimulus{Deliveries: map[Reactive]RVT{r: rvt}})
			continue
		}

		delivered, err := r.Deliver(rvt)
		if err == ErrOverflow {
			ref.Submit(Stimulus{Deliveries: map[Reactive]RVT{r: rvt}})
			continue
		}
		if err != nil {
			ref.ReportError(err)
			continue
		}
		if delivered && rvt.Value.IsCompleted() {
			net.markCompleted(r)
		}
		if delivered && heap != nil {
			for _, consumer := range net.consumersOf(r) {
				if consumer.Ready() && !consumer.Dead() {
					heap.Insert(consumer)
				}
			}
		}
	}

	applyGraphEdits(ref, out.Add, out.RemoveBy, out.DontComplete, out.AllowComplete)
}

// resultToStimulus lifts a Result into the Stimulus shape so an async link's
// follow-up can be resubmitted through the normal mailbox.
func resultToStimulus(out Result) Stimulus {
	return Stimulus{
		Deliveries:    out.OutputRVTs,
		Add:           out.Add,
		RemoveBy:      out.RemoveBy,
		DontComplete:  out.DontComplete,
		AllowComplete: out.AllowComplete,
	}
}

// runCompletions drains every reactive marked completed since the last call
// and fires CompleteFn, once per (link, reactive) pair, for every link that
// declares that reactive as an input and hasn't already fired for it.
func runCompletions(ref *NetRef) bool {
	net := ref.network
	completed := net.drainCompleted()
	if len(completed) == 0 {
		return false
	}

	fired := false
	for _, r := range completed {
		for _, l := range net.consumersOf(r) {
			if l.CompleteFn == nil {
				continue
			}
			if l.completeFired(r) {
				continue
			}
			fired = true
			if out := l.CompleteFn(l, r); out != nil {
				applyResult(ref, nil, l.level, *out)
			}
		}
	}
	return fired
}
