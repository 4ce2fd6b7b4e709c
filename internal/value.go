package internal

// Value wraps a delivered payload, distinguishing an ordinary value from the
// Completed sentinel. Keeping a tagged wrapper instead of a magic value lets
// Deliver/Consume stay uniform regardless of the payload's own zero value.
type Value struct {
	completed bool
	v         any
}

// Some wraps an ordinary payload.
func Some(v any) Value { return Value{v: v} }

// CompletedValue is the opaque sentinel that terminates a reactive. It
// compares equal only to itself.
var CompletedValue = Value{completed: true}

// IsCompleted reports whether this is the Completed sentinel.
func (v Value) IsCompleted() bool { return v.completed }

// Unwrap returns the wrapped payload, or nil for the Completed sentinel.
func (v Value) Unwrap() any { return v.v }

func valuesEqual(a, b Value) (eq bool) {
	if a.completed != b.completed {
		return false
	}
	if a.completed {
		return true
	}

	// user payloads are not guaranteed comparable (slices, maps, funcs); treat
	// that as "not equal" rather than panicking the whole network.
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a.v == b.v
}

// RVT pairs a Value with the logical time it was produced or delivered at.
type RVT struct {
	Value Value
	Time  int64
}
