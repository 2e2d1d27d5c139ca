package merge

import "cortex/internal/crdt"

// ComputeDelta compares local against remoteClock and emits field deltas
// for the remote. The five LWW fields (content, summary, importance,
// archived, namespace) are included only when their last writer's clock
// entry is ahead of what remoteClock records for that agent. Every live
// tag and link tag and every provenance hop is emitted whatever
// remoteClock says. Base confidence and access count are not emitted,
// and the delta's Timestamp is left unset.
func (Engine) ComputeDelta(local *MemoryCRDT, remoteClock map[string]uint64, agentID string) *MemoryDelta {
	var deltas []FieldDelta
	remoteGet := func(agent string) uint64 { return remoteClock[agent] }

	if local.Clock.Get(local.Content.Agent) > remoteGet(local.Content.Agent) {
		deltas = append(deltas, ContentUpdated{
			Value: local.Content.Value, Timestamp: local.Content.Timestamp, AgentID: local.Content.Agent,
		})
	}
	if local.Clock.Get(local.Summary.Agent) > remoteGet(local.Summary.Agent) {
		deltas = append(deltas, SummaryUpdated{
			Value: local.Summary.Value, Timestamp: local.Summary.Timestamp, AgentID: local.Summary.Agent,
		})
	}
	if local.Clock.Get(local.Importance.Agent) > remoteGet(local.Importance.Agent) {
		deltas = append(deltas, ImportanceChanged{
			Value: local.Importance.Value, Timestamp: local.Importance.Timestamp, AgentID: local.Importance.Agent,
		})
	}
	if local.Clock.Get(local.Archived.Agent) > remoteGet(local.Archived.Agent) {
		deltas = append(deltas, ArchivedChanged{
			Value: local.Archived.Value, Timestamp: local.Archived.Timestamp, AgentID: local.Archived.Agent,
		})
	}
	if local.Clock.Get(local.Namespace.Agent) > remoteGet(local.Namespace.Agent) {
		deltas = append(deltas, NamespaceChanged{
			Namespace: local.Namespace.Value, Timestamp: local.Namespace.Timestamp, AgentID: local.Namespace.Agent,
		})
	}

	deltas = append(deltas, tagDeltas(local.Tags, remoteGet)...)
	deltas = append(deltas, linkDeltas(local.LinkedPatterns, LinkPattern, remoteGet)...)
	deltas = append(deltas, linkDeltas(local.LinkedConstraints, LinkConstraint, remoteGet)...)
	deltas = append(deltas, linkDeltas(local.LinkedFiles, LinkFile, remoteGet)...)
	deltas = append(deltas, linkDeltas(local.LinkedFunctions, LinkFunction, remoteGet)...)

	for _, hop := range local.Provenance {
		deltas = append(deltas, ProvenanceHopAdded{Hop: hop})
	}

	clockSnapshot := make(map[string]uint64)
	for _, agent := range local.Clock.Agents() {
		clockSnapshot[agent] = local.Clock.Get(agent)
	}

	return &MemoryDelta{
		MemoryID:    local.ID,
		SourceAgent: agentID,
		Clock:       clockSnapshot,
		FieldDeltas: deltas,
	}
}

func tagDeltas(set *crdt.ORSet[string], remoteGet func(string) uint64) []FieldDelta {
	var out []FieldDelta
	for tag, tags := range set.LiveTags() {
		for _, ut := range tags {
			out = append(out, TagAdded{Tag: tag, UniqueTag: UniqueTagRef{AgentID: ut.Agent, Sequence: ut.Sequence}})
		}
		_ = remoteGet // retained for signature symmetry with future per-tag filtering
	}
	return out
}

func linkDeltas(set *crdt.ORSet[string], lt LinkType, remoteGet func(string) uint64) []FieldDelta {
	var out []FieldDelta
	for target, tags := range set.LiveTags() {
		for _, ut := range tags {
			out = append(out, LinkAdded{LinkType: lt, Target: target, UniqueTag: UniqueTagRef{AgentID: ut.Agent, Sequence: ut.Sequence}})
		}
		_ = remoteGet
	}
	return out
}
