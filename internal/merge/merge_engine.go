package merge

import (
	"time"

	"cortex/internal/core"
	"cortex/internal/crdt"
)

func newLWW[T any](v T, ts time.Time, agent string) crdt.LWWRegister[T] {
	return crdt.NewLWWRegister(v, ts, agent)
}

// Engine is the stateless merge orchestrator for MemoryCRDT instances. It
// provides full-state merge, delta computation (what the remote is
// missing), and causally-ordered delta application.
type Engine struct{}

// MergeMemories merges local and remote, returning the merged state.
// local is not mutated; a clone is merged and returned.
func (Engine) MergeMemories(local, remote *MemoryCRDT) *MemoryCRDT {
	merged := local.Clone()
	merged.Merge(remote)
	return merged
}

// ApplyDelta validates causal ordering and, if it passes, applies every
// field delta to local in order, then merges the delta's clock.
//
// Causal-order check: for every agent in delta.Clock other than the
// delta's own source agent, the local clock entry must be >= the
// delta's entry. If any entry is lower locally, the delta is rejected
// and local is left unchanged.
func (Engine) ApplyDelta(local *MemoryCRDT, delta *MemoryDelta) error {
	for agent, deltaVal := range delta.Clock {
		if agent == delta.SourceAgent {
			continue
		}
		localVal := local.Clock.Get(agent)
		if deltaVal > localVal {
			return &core.CrdtError{
				Expected: fmtAgentCounter(agent, localVal),
				Found:    fmtAgentCounter(agent, deltaVal),
			}
		}
	}

	for _, fd := range delta.FieldDeltas {
		applyFieldDelta(local, fd)
	}

	for agent, v := range delta.Clock {
		local.Clock.Set(agent, v)
	}
	return nil
}

func applyFieldDelta(local *MemoryCRDT, fd FieldDelta) {
	switch d := fd.(type) {
	case ContentUpdated:
		local.Content.Merge(newLWW(d.Value, d.Timestamp, d.AgentID))
	case SummaryUpdated:
		local.Summary.Merge(newLWW(d.Value, d.Timestamp, d.AgentID))
	case ConfidenceBoosted:
		local.BaseConfidence.SetAt(d.Value, d.MaxTimestamp)
	case TagAdded:
		local.Tags.Add(d.Tag, d.UniqueTag.AgentID, d.UniqueTag.Sequence)
	case TagRemoved:
		local.Tags.Remove(d.Tag)
	case LinkAdded:
		if set := local.linkSet(d.LinkType); set != nil {
			set.Add(d.Target, d.UniqueTag.AgentID, d.UniqueTag.Sequence)
		}
		// Unknown link types are skipped silently to preserve forward
		// compatibility (spec.md §4.2).
	case LinkRemoved:
		if set := local.linkSet(d.LinkType); set != nil {
			set.Remove(d.Target)
		}
	case AccessCountIncremented:
		local.AccessCount.Increment(d.Agent)
	case ImportanceChanged:
		local.Importance.Merge(newLWW(d.Value, d.Timestamp, d.AgentID))
	case ArchivedChanged:
		local.Archived.Merge(newLWW(d.Value, d.Timestamp, d.AgentID))
	case ProvenanceHopAdded:
		local.Provenance = mergeProvenance(local.Provenance, []core.ProvenanceHop{d.Hop})
	case NamespaceChanged:
		local.Namespace.Merge(newLWW(d.Namespace, d.Timestamp, d.AgentID))
	case MemoryCreated:
		// Full state creation is handled by the caller before any deltas
		// are applied; nothing to do here.
	}
}

func (c *MemoryCRDT) linkSet(lt LinkType) *linkSetWrapper {
	switch lt {
	case LinkPattern:
		return &linkSetWrapper{c.LinkedPatterns}
	case LinkConstraint:
		return &linkSetWrapper{c.LinkedConstraints}
	case LinkFile:
		return &linkSetWrapper{c.LinkedFiles}
	case LinkFunction:
		return &linkSetWrapper{c.LinkedFunctions}
	default:
		return nil
	}
}

// linkSetWrapper lets linkSet return a single pointer-ish type regardless
// of which of the four OR-Sets it wraps.
type linkSetWrapper struct {
	set interface {
		Add(string, string, uint64)
		Remove(string)
	}
}

func (w *linkSetWrapper) Add(target, agent string, seq uint64) { w.set.Add(target, agent, seq) }
func (w *linkSetWrapper) Remove(target string)                { w.set.Remove(target) }

func fmtAgentCounter(agent string, v uint64) string {
	return agent + ":" + itoa(v)
}

func itoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	digits := make([]byte, 0, 20)
	for v > 0 {
		digits = append([]byte{byte('0' + v%10)}, digits...)
		v /= 10
	}
	return string(digits)
}
