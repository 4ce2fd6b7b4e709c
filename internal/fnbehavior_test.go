package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFnBehavior(t *testing.T) {
	calls := 0
	f := NewFnBehavior("double", func() any {
		calls++
		return calls * 2
	}, func() int64 { return 0 })

	assert.True(t, f.Available())
	assert.False(t, f.Pending())
	assert.False(t, f.Completed())

	rvt, ok := f.Consume()
	assert.True(t, ok)
	assert.Equal(t, 2, rvt.Value.Unwrap())

	rvt, ok = f.Consume()
	assert.True(t, ok)
	assert.Equal(t, 4, rvt.Value.Unwrap(), "every read resamples fn")

	_, err := f.Deliver(RVT{Value: Some(1)})
	assert.ErrorIs(t, err, ErrUnsupported)
}
