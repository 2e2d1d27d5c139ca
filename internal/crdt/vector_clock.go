package crdt

// VectorClock is a per-agent monotonic counter map. Merge takes the
// per-agent max; dominance is entrywise <=.
type VectorClock struct {
	counters map[string]uint64
}

// NewVectorClock constructs an empty clock.
func NewVectorClock() *VectorClock {
	return &VectorClock{counters: make(map[string]uint64)}
}

// Get returns the counter for agent, or 0 if unseen.
func (c *VectorClock) Get(agent string) uint64 {
	return c.counters[agent]
}

// Increment bumps agent's counter by one and returns the new value.
func (c *VectorClock) Increment(agent string) uint64 {
	c.counters[agent]++
	return c.counters[agent]
}

// Set raises agent's counter to value when value is greater (used when
// replaying a known clock); a lower or equal value leaves it unchanged.
func (c *VectorClock) Set(agent string, value uint64) {
	if value > c.counters[agent] {
		c.counters[agent] = value
	}
}

// Agents returns every agent with a nonzero entry, in unspecified order.
func (c *VectorClock) Agents() []string {
	out := make([]string, 0, len(c.counters))
	for a := range c.counters {
		out = append(out, a)
	}
	return out
}

// Merge takes the per-agent max of both clocks.
func (c *VectorClock) Merge(other *VectorClock) {
	for agent, v := range other.counters {
		if v > c.counters[agent] {
			c.counters[agent] = v
		}
	}
}

// Dominates reports whether c is entrywise >= other (other happened-before
// or is concurrent-but-covered by c).
func (c *VectorClock) Dominates(other *VectorClock) bool {
	for agent, v := range other.counters {
		if c.counters[agent] < v {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (c *VectorClock) Clone() *VectorClock {
	out := NewVectorClock()
	for a, v := range c.counters {
		out.counters[a] = v
	}
	return out
}
