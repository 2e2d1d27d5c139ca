package crdt

import (
	"cmp"
	"time"
)

// MaxRegister stores a comparable value; merge and Set both only ever
// move the value upward. Used for monotonic fields like base confidence
// and causal-edge strength.
type MaxRegister[T cmp.Ordered] struct {
	value     T
	timestamp time.Time
}

// NewMaxRegister constructs a register at the given value/timestamp.
func NewMaxRegister[T cmp.Ordered](value T, ts time.Time) MaxRegister[T] {
	return MaxRegister[T]{value: value, timestamp: ts}
}

// Get returns the current value.
func (r *MaxRegister[T]) Get() T { return r.value }

// Set raises the value to v if v is greater than the current value;
// otherwise it is a no-op (monotonic only).
func (r *MaxRegister[T]) Set(v T) {
	if v > r.value {
		r.value = v
		r.timestamp = timeNow()
	}
}

// SetAt is like Set but with an explicit timestamp, used when replaying
// a delta whose original write time must be preserved.
func (r *MaxRegister[T]) SetAt(v T, ts time.Time) {
	if v > r.value {
		r.value = v
		r.timestamp = ts
	}
}

// Merge keeps the greater of the two values.
func (r *MaxRegister[T]) Merge(other *MaxRegister[T]) {
	if other.value > r.value {
		r.value = other.value
		r.timestamp = other.timestamp
	}
}

// timeNow is a seam so callers that need deterministic tests can avoid
// depending on wall-clock time through Set; SetAt is preferred in tests.
var timeNow = time.Now
