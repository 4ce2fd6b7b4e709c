package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBehavior(t *testing.T) {
	t.Run("deliver and read", func(t *testing.T) {
		b := NewBehavior("a", 1, 0)
		rvt, ok := b.NextValue()
		assert.True(t, ok)
		assert.Equal(t, 1, rvt.Value.Unwrap())

		changed, err := b.Deliver(RVT{Value: Some(2), Time: 1})
		assert.NoError(t, err)
		assert.True(t, changed)

		rvt, _ = b.NextValue()
		assert.Equal(t, 2, rvt.Value.Unwrap())
	})

	t.Run("equal delivery is a no-op", func(t *testing.T) {
		b := NewBehavior("a", 1, 0)
		b.Consume()

		changed, err := b.Deliver(RVT{Value: Some(1), Time: 1})
		assert.NoError(t, err)
		assert.False(t, changed)
		assert.False(t, b.Pending())
	})

	t.Run("completed becomes unavailable and rejects further delivery", func(t *testing.T) {
		b := NewBehavior("a", 1, 0)

		changed, err := b.Deliver(RVT{Value: CompletedValue})
		assert.NoError(t, err)
		assert.True(t, changed)
		assert.True(t, b.Completed())
		assert.False(t, b.Available())

		_, err = b.Deliver(RVT{Value: Some(2)})
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}
