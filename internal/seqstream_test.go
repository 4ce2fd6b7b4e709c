package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sliceSeq struct {
	vals []int
	i    int
}

func (s *sliceSeq) Next() (any, bool) {
	if s.i >= len(s.vals) {
		return nil, false
	}
	v := s.vals[s.i]
	s.i++
	return v, true
}

func TestSeqStream(t *testing.T) {
	clock := int64(0)
	now := func() int64 { clock++; return clock }

	t.Run("pulls lazily and exhausts", func(t *testing.T) {
		s := NewSeqStream("seq", &sliceSeq{vals: []int{1, 2}}, now)

		rvt, ok := s.Consume()
		assert.True(t, ok)
		assert.Equal(t, 1, rvt.Value.Unwrap())

		rvt, ok = s.Consume()
		assert.True(t, ok)
		assert.Equal(t, 2, rvt.Value.Unwrap())

		assert.False(t, s.Available())
		assert.True(t, s.Completed())
	})

	t.Run("delivery is unsupported", func(t *testing.T) {
		s := NewSeqStream("seq", &sliceSeq{}, now)
		_, err := s.Deliver(RVT{Value: Some(1)})
		assert.ErrorIs(t, err, ErrUnsupported)
	})
}
