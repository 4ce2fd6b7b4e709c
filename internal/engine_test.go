package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	require.True(t, cond(), "condition never became true")
}

func TestEngineBehaviorFan(t *testing.T) {
	net := NewNetwork()
	ref := NewNetRef(net, nil, nil, nil)
	defer ref.Close()

	a := NewBehavior("a", 1, 0)
	b := NewBehavior("b", 2, 0)
	sum := NewBehavior("sum", 0, 0)

	net.AddLink(NewLink("a+b", []Reactive{a, b}, []Reactive{sum}, func(in Result) (*Result, error) {
		av := in.InputRVTs[a].Value.Unwrap().(int)
		bv := in.InputRVTs[b].Value.Unwrap().(int)
		return &Result{OutputRVTs: map[Reactive]RVT{
			sum: {Value: Some(av + bv), Time: in.InputRVTs[a].Time},
		}}, nil
	}))

	Push(ref, a, 10)
	Push(ref, b, 20)

	waitFor(t, func() bool {
		rvt, ok := sum.NextValue()
		return ok && rvt.Value.Unwrap() == 30
	})
}

func TestEngineEventStreamMerge(t *testing.T) {
	net := NewNetwork()
	ref := NewNetRef(net, nil, nil, nil)
	defer ref.Close()

	left := NewEventStream("left", 0)
	right := NewEventStream("right", 0)
	out := NewEventStream("out", 0)

	merge := func(in Result) (*Result, error) {
		outRVTs := map[Reactive]RVT{}
		for r, rvt := range in.InputRVTs {
			_ = r
			outRVTs[out] = rvt
		}
		return &Result{OutputRVTs: outRVTs}, nil
	}
	net.AddLink(NewLink("left->out", []Reactive{left}, []Reactive{out}, merge))
	net.AddLink(NewLink("right->out", []Reactive{right}, []Reactive{out}, merge))

	Push(ref, left, "l1")
	Push(ref, right, "r1")

	seen := map[any]bool{}
	waitFor(t, func() bool {
		for {
			rvt, ok := out.Consume()
			if !ok {
				break
			}
			seen[rvt.Value.Unwrap()] = true
		}
		return seen["l1"] && seen["r1"]
	})
}

func TestEngineConcatWithCompletion(t *testing.T) {
	net := NewNetwork()
	ref := NewNetRef(net, nil, nil, nil)
	defer ref.Close()

	a := NewEventStream("a", 0)
	b := NewEventStream("b", 0)
	out := NewEventStream("out", 0)

	forward := func(in Result) (*Result, error) {
		outRVTs := map[Reactive]RVT{}
		for _, rvt := range in.InputRVTs {
			outRVTs[out] = rvt
		}
		return &Result{OutputRVTs: outRVTs}, nil
	}

	var bLink *Link
	bLink = NewLink("b->out", []Reactive{b}, []Reactive{out}, forward)

	aLink := NewLink("a->out", []Reactive{a}, []Reactive{out}, forward)
	aLink.CompleteFn = func(l *Link, r Reactive) *Result {
		return &Result{
			Add:      []*Link{bLink},
			RemoveBy: func(cand *Link) bool { return cand == l },
		}
	}
	net.AddLink(aLink)

	Push(ref, a, "a1")
	Complete(ref, a)
	Push(ref, b, "b1")

	seen := []any{}
	waitFor(t, func() bool {
		for {
			rvt, ok := out.Consume()
			if !ok {
				break
			}
			seen = append(seen, rvt.Value.Unwrap())
		}
		for _, v := range seen {
			if v == "b1" {
				return true
			}
		}
		return false
	})

	assert.Contains(t, seen, "a1")
	assert.Contains(t, seen, "b1")
}

func TestEngineTakeTwo(t *testing.T) {
	net := NewNetwork()
	ref := NewNetRef(net, nil, nil, nil)
	defer ref.Close()

	src := NewEventStream("src", 0)
	out := NewEventStream("out", 0)

	count := 0
	var takeLink *Link
	takeLink = NewLink("take2", []Reactive{src}, []Reactive{out}, func(in Result) (*Result, error) {
		count++
		res := &Result{OutputRVTs: map[Reactive]RVT{}}
		for _, rvt := range in.InputRVTs {
			res.OutputRVTs[out] = rvt
		}
		if count >= 2 {
			res.RemoveBy = func(cand *Link) bool { return cand == takeLink }
		}
		return res, nil
	})
	net.AddLink(takeLink)

	Push(ref, src, 1)
	Push(ref, src, 2)
	Push(ref, src, 3)

	waitFor(t, func() bool {
		return !takeLink.Ready() || count >= 2
	})

	time.Sleep(20 * time.Millisecond)
	_, moreAvailable := out.NextValue()
	_ = moreAvailable

	drained := []any{}
	for {
		rvt, ok := out.Consume()
		if !ok {
			break
		}
		drained = append(drained, rvt.Value.Unwrap())
	}
	assert.LessOrEqual(t, len(drained), 2)
}

func TestEngineConsumeAtMostOncePerCyclePerReactive(t *testing.T) {
	net := NewNetwork()
	ref := NewNetRef(net, nil, nil, nil)
	defer ref.Close()

	src := NewEventStream("src", 0)
	outA := NewEventStream("outA", 0)
	outB := NewEventStream("outB", 0)

	net.AddLink(NewLink("src->outA", []Reactive{src}, []Reactive{outA}, nil))
	net.AddLink(NewLink("src->outB", []Reactive{src}, []Reactive{outB}, nil))

	// Two occurrences queued before either link runs - the common fan-out
	// pattern of two independent links reading the same EventStream. Both
	// links become Ready off the first occurrence and peek the same
	// scratch-cached value; only one of them may actually call Consume.
	_, err := src.Deliver(RVT{Value: Some(1), Time: 1})
	require.NoError(t, err)
	_, err = src.Deliver(RVT{Value: Some(2), Time: 2})
	require.NoError(t, err)

	runLevelPass(ref, newCycleScratch())

	rvtA, okA := outA.Consume()
	require.True(t, okA)
	rvtB, okB := outB.Consume()
	require.True(t, okB)
	assert.Equal(t, 1, rvtA.Value.Unwrap())
	assert.Equal(t, 1, rvtB.Value.Unwrap())

	rvt, ok := src.NextValue()
	require.True(t, ok, "the second occurrence must still be queued, not silently dropped by a duplicate Consume")
	assert.Equal(t, 2, rvt.Value.Unwrap())
}

func TestEngineApplyResultDefersUpstreamTarget(t *testing.T) {
	net := NewNetwork()
	ref := NewNetRef(net, nil, nil, nil)
	defer ref.Close()

	a := NewBehavior("a", 1, 0)

	// This link targets its own input from its Result - a's level is
	// unknown (nothing registers it as an output), so the delivery must be
	// deferred to a fresh cycle rather than applied inline within this pass.
	net.AddLink(NewLink("loopback", []Reactive{a}, nil, func(in Result) (*Result, error) {
		return &Result{OutputRVTs: map[Reactive]RVT{
			a: {Value: Some(99), Time: 1},
		}}, nil
	}))

	runLevelPass(ref, newCycleScratch())

	// Delivered via a resubmitted Stimulus, processed by ref's own worker
	// goroutine on a later cycle - not applied inline by the runLevelPass
	// call above.
	waitFor(t, func() bool {
		rvt, ok := a.NextValue()
		return ok && rvt.Value.Unwrap() == 99
	})
}

func TestEngineOverflowRetry(t *testing.T) {
	net := NewNetwork()
	ref := NewNetRef(net, nil, nil, nil)
	defer ref.Close()

	bottleneck := NewEventStream("bottleneck", 1)

	Push(ref, bottleneck, "first")
	Push(ref, bottleneck, "second")

	waitFor(t, func() bool {
		rvt, ok := bottleneck.NextValue()
		return ok && rvt.Value.Unwrap() == "first"
	})

	rvt, ok := bottleneck.Consume()
	require.True(t, ok)
	assert.Equal(t, "first", rvt.Value.Unwrap())

	waitFor(t, func() bool {
		rvt, ok := bottleneck.NextValue()
		return ok && rvt.Value.Unwrap() == "second"
	})
}

func TestEngineAsyncLink(t *testing.T) {
	net := NewNetwork()
	pool := NewPoolExecutor(2)
	ref := NewNetRef(net, pool, nil, nil)
	pool.BindNetRef(ref)
	defer ref.Close()

	in := NewBehavior("in", 1, 0)
	out := NewBehavior("out", 0, 0)

	l := NewLink("async-double", []Reactive{in}, []Reactive{out}, func(res Result) (*Result, error) {
		v := res.InputRVTs[in].Value.Unwrap().(int)
		return &Result{OutputRVTs: map[Reactive]RVT{
			out: {Value: Some(v * 2), Time: res.InputRVTs[in].Time},
		}}, nil
	})
	l.Executor = pool
	net.AddLink(l)

	Push(ref, in, 21)

	waitFor(t, func() bool {
		rvt, ok := out.NextValue()
		return ok && rvt.Value.Unwrap() == 42
	})
}
