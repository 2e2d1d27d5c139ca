package crdt

// PNCounter is a per-agent increment/decrement counter; merge takes the
// per-agent max of each side so increments from every replica are
// eventually reflected exactly once.
type PNCounter struct {
	increments map[string]uint64
	decrements map[string]uint64
}

// NewPNCounter constructs a zero-valued counter.
func NewPNCounter() *PNCounter {
	return &PNCounter{
		increments: make(map[string]uint64),
		decrements: make(map[string]uint64),
	}
}

// Increment bumps agent's increment count by one.
func (c *PNCounter) Increment(agent string) {
	c.increments[agent]++
}

// Decrement bumps agent's decrement count by one.
func (c *PNCounter) Decrement(agent string) {
	c.decrements[agent]++
}

// Value returns the counter's current total: sum(increments) - sum(decrements).
func (c *PNCounter) Value() int64 {
	var total int64
	for _, v := range c.increments {
		total += int64(v)
	}
	for _, v := range c.decrements {
		total -= int64(v)
	}
	return total
}

// Merge takes the per-agent max of increments and decrements.
func (c *PNCounter) Merge(other *PNCounter) {
	for agent, v := range other.increments {
		if v > c.increments[agent] {
			c.increments[agent] = v
		}
	}
	for agent, v := range other.decrements {
		if v > c.decrements[agent] {
			c.decrements[agent] = v
		}
	}
}
