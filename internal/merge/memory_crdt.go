// Package merge composes the per-field CRDTs in internal/crdt into a
// MemoryCRDT, and implements the stateless merge engine: full-state
// merge, delta computation, and causally-ordered delta application.
package merge

import (
	"sort"
	"time"

	"cortex/internal/core"
	"cortex/internal/crdt"
)

// MemoryCRDT is the CRDT-shaped representation of a core.Memory used for
// multi-agent merge. Field CRDTs are chosen per spec.md §3.3.
type MemoryCRDT struct {
	ID string

	Content    crdt.LWWRegister[core.TypedContent]
	Summary    crdt.LWWRegister[string]
	Importance crdt.LWWRegister[core.Importance]
	Archived   crdt.LWWRegister[bool]
	Namespace  crdt.LWWRegister[core.NamespaceID]

	BaseConfidence crdt.MaxRegister[float64]

	Tags              *crdt.ORSet[string]
	LinkedPatterns    *crdt.ORSet[string]
	LinkedConstraints *crdt.ORSet[string]
	LinkedFiles       *crdt.ORSet[string]
	LinkedFunctions   *crdt.ORSet[string]

	AccessCount *crdt.PNCounter

	Provenance []core.ProvenanceHop

	Clock *crdt.VectorClock
}

// NewMemoryCRDT builds a fresh MemoryCRDT seeded from a concrete Memory,
// recording the seeding agent/timestamp on every LWW field.
func NewMemoryCRDT(m *core.Memory, agent string, ts time.Time) *MemoryCRDT {
	c := &MemoryCRDT{
		ID:                m.ID,
		Content:           crdt.NewLWWRegister[core.TypedContent](m.Content, ts, agent),
		Summary:           crdt.NewLWWRegister(m.Summary, ts, agent),
		Importance:        crdt.NewLWWRegister(m.Importance, ts, agent),
		Archived:          crdt.NewLWWRegister(m.Archived, ts, agent),
		Namespace:         crdt.NewLWWRegister(m.Namespace, ts, agent),
		BaseConfidence:    crdt.NewMaxRegister(m.Confidence, ts),
		Tags:              crdt.NewORSet[string](),
		LinkedPatterns:    crdt.NewORSet[string](),
		LinkedConstraints: crdt.NewORSet[string](),
		LinkedFiles:       crdt.NewORSet[string](),
		LinkedFunctions:   crdt.NewORSet[string](),
		AccessCount:       crdt.NewPNCounter(),
		Clock:             crdt.NewVectorClock(),
	}
	for i, tag := range m.Tags {
		c.Tags.Add(tag, agent, uint64(i+1))
	}
	for i, p := range m.LinkedPatterns {
		c.LinkedPatterns.Add(p, agent, uint64(i+1))
	}
	for i, fc := range m.LinkedConstraints {
		c.LinkedConstraints.Add(fc, agent, uint64(i+1))
	}
	for i := range m.LinkedFiles {
		c.LinkedFiles.Add(m.LinkedFiles[i].Path, agent, uint64(i+1))
	}
	for i, fn := range m.LinkedFunctions {
		c.LinkedFunctions.Add(fn, agent, uint64(i+1))
	}
	for range [1]struct{}{} {
		// access_count seeded via direct increments rather than a bulk
		// setter, since PNCounter has no absolute-set operation by design.
	}
	for i := uint64(0); i < m.AccessCount; i++ {
		c.AccessCount.Increment(agent)
	}
	c.Clock.Increment(agent)
	return c
}

// Merge merges every field with its own CRDT discipline, then merges the
// two vector clocks.
func (c *MemoryCRDT) Merge(other *MemoryCRDT) {
	c.Content.Merge(other.Content)
	c.Summary.Merge(other.Summary)
	c.Importance.Merge(other.Importance)
	c.Archived.Merge(other.Archived)
	c.Namespace.Merge(other.Namespace)
	c.BaseConfidence.Merge(&other.BaseConfidence)

	c.Tags.Merge(other.Tags)
	c.LinkedPatterns.Merge(other.LinkedPatterns)
	c.LinkedConstraints.Merge(other.LinkedConstraints)
	c.LinkedFiles.Merge(other.LinkedFiles)
	c.LinkedFunctions.Merge(other.LinkedFunctions)

	c.AccessCount.Merge(other.AccessCount)

	c.Provenance = mergeProvenance(c.Provenance, other.Provenance)

	c.Clock.Merge(other.Clock)
}

// mergeProvenance unions two provenance logs, deduplicating by
// (agent, timestamp, action) and sorting by timestamp ascending.
func mergeProvenance(a, b []core.ProvenanceHop) []core.ProvenanceHop {
	type key struct {
		agent string
		ts    int64
		act   core.ProvenanceAction
	}
	seen := make(map[key]bool, len(a)+len(b))
	out := make([]core.ProvenanceHop, 0, len(a)+len(b))
	add := func(hops []core.ProvenanceHop) {
		for _, h := range hops {
			k := key{h.AgentID, h.Timestamp, h.Action}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, h)
		}
	}
	add(a)
	add(b)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// Clone returns a deep-enough copy for independent mutation in tests;
// field CRDTs that are pointers are merged into fresh instances rather
// than aliased.
func (c *MemoryCRDT) Clone() *MemoryCRDT {
	clone := &MemoryCRDT{
		ID:                c.ID,
		Content:           c.Content,
		Summary:           c.Summary,
		Importance:        c.Importance,
		Archived:          c.Archived,
		Namespace:         c.Namespace,
		BaseConfidence:    c.BaseConfidence,
		Tags:              crdt.NewORSet[string](),
		LinkedPatterns:    crdt.NewORSet[string](),
		LinkedConstraints: crdt.NewORSet[string](),
		LinkedFiles:       crdt.NewORSet[string](),
		LinkedFunctions:   crdt.NewORSet[string](),
		AccessCount:       crdt.NewPNCounter(),
		Provenance:        append([]core.ProvenanceHop{}, c.Provenance...),
		Clock:             c.Clock.Clone(),
	}
	clone.Tags.Merge(c.Tags)
	clone.LinkedPatterns.Merge(c.LinkedPatterns)
	clone.LinkedConstraints.Merge(c.LinkedConstraints)
	clone.LinkedFiles.Merge(c.LinkedFiles)
	clone.LinkedFunctions.Merge(c.LinkedFunctions)
	clone.AccessCount.Merge(c.AccessCount)
	return clone
}
