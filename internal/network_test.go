package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNetworkAddLinkAssignsLevels(t *testing.T) {
	net := NewNetwork()

	a := NewBehavior("a", 1, 0)
	mid := NewBehavior("mid", 0, 0)
	out := NewBehavior("out", 0, 0)

	l1 := NewLink("a->mid", []Reactive{a}, []Reactive{mid}, nil)
	net.AddLink(l1)
	assert.Equal(t, 0, l1.Level())

	l2 := NewLink("mid->out", []Reactive{mid}, []Reactive{out}, nil)
	net.AddLink(l2)
	assert.Equal(t, 1, l2.Level(), "downstream link sits one level above its producer")
}

func TestNetworkAddLinkRelevelsExistingConsumer(t *testing.T) {
	net := NewNetwork()

	mid := NewBehavior("mid", 0, 0)
	out := NewBehavior("out", 0, 0)
	p := NewBehavior("p", 0, 0)

	// The consumer is wired up before anything produces mid, so it starts at
	// level 0 — indistinguishable, at this point, from a root-input link.
	consumer := NewLink("mid->out", []Reactive{mid}, []Reactive{out}, nil)
	net.AddLink(consumer)
	assert.Equal(t, 0, consumer.Level())

	// Registering the actual producer afterward must push consumer's level
	// up to sit above mid's new level, not leave it stuck at its stale value.
	producer := NewLink("p->mid", []Reactive{p}, []Reactive{mid}, nil)
	net.AddLink(producer)

	assert.Equal(t, 0, producer.Level())
	assert.Equal(t, 1, consumer.Level(), "consumer must be re-leveled above its now-known producer")
}

func TestNetworkRemoveLinksAutoCompletes(t *testing.T) {
	net := NewNetwork()

	a := NewBehavior("a", 1, 0)
	out := NewBehavior("out", 0, 0)

	l := NewLink("a->out", []Reactive{a}, []Reactive{out}, nil).withCompleteOnRemove(out)
	net.AddLink(l)

	autoCompleted := net.RemoveLinks(func(cand *Link) bool { return cand == l })
	assert.Equal(t, []Reactive{out}, autoCompleted)
}

func (l *Link) withCompleteOnRemove(rs ...Reactive) *Link {
	l.CompleteOnRemove = rs
	return l
}

func TestNetworkConsumersOf(t *testing.T) {
	net := NewNetwork()
	a := NewBehavior("a", 1, 0)
	out := NewBehavior("out", 0, 0)

	l := NewLink("a->out", []Reactive{a}, []Reactive{out}, nil)
	net.AddLink(l)

	cons := net.consumersOf(a)
	assert.Equal(t, []*Link{l}, cons)
}
