package merge

import (
	"testing"
	"time"

	"cortex/internal/core"
	"cortex/internal/crdt"
)

func newTestMemory(id string) *core.Memory {
	return &core.Memory{
		ID:         id,
		MemoryType: core.MemoryTypeInsight,
		Content:    core.InsightContent{Observation: "obs"},
		Summary:    "summary",
		Confidence: 0.5,
		Importance: core.ImportanceNormal,
		Namespace:  core.DefaultNamespace(),
		Tags:       []string{"a", "b"},
	}
}

func TestApplyDeltaRejectsCausalOrderViolation(t *testing.T) {
	local := NewMemoryCRDT(newTestMemory("m1"), "A", time.Now())
	local.Clock = crdt.NewVectorClock()
	local.Clock.Set("A", 2)
	local.Clock.Set("B", 0)

	delta := &MemoryDelta{
		MemoryID:    "m1",
		SourceAgent: "A",
		Clock:       map[string]uint64{"A": 3, "B": 1},
		FieldDeltas: []FieldDelta{SummaryUpdated{Value: "new", Timestamp: time.Now(), AgentID: "A"}},
	}

	eng := Engine{}
	err := eng.ApplyDelta(local, delta)
	if err == nil {
		t.Fatalf("expected causal order violation")
	}
	crdtErr, ok := err.(*core.CrdtError)
	if !ok {
		t.Fatalf("expected *core.CrdtError, got %T", err)
	}
	if crdtErr.Expected != "B:0" || crdtErr.Found != "B:1" {
		t.Fatalf("expected Expected=B:0 Found=B:1, got Expected=%s Found=%s", crdtErr.Expected, crdtErr.Found)
	}
	if local.Summary.Value != "summary" {
		t.Fatalf("expected local state unchanged after rejected delta, got %q", local.Summary.Value)
	}
}

func TestApplyDeltaAcceptsCausallyConsistentDelta(t *testing.T) {
	local := NewMemoryCRDT(newTestMemory("m1"), "A", time.Now())
	local.Clock = crdt.NewVectorClock()
	local.Clock.Set("A", 2)
	local.Clock.Set("B", 1)

	delta := &MemoryDelta{
		MemoryID:    "m1",
		SourceAgent: "B",
		Clock:       map[string]uint64{"A": 2, "B": 3},
		FieldDeltas: []FieldDelta{SummaryUpdated{Value: "updated", Timestamp: time.Now(), AgentID: "B"}},
	}

	eng := Engine{}
	if err := eng.ApplyDelta(local, delta); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if local.Summary.Value != "updated" {
		t.Fatalf("expected delta applied, got %q", local.Summary.Value)
	}
}

func TestApplyDeltaCommutativity(t *testing.T) {
	base := func() *MemoryCRDT { return NewMemoryCRDT(newTestMemory("m1"), "A", time.Now()) }

	d1 := TagAdded{Tag: "x", UniqueTag: UniqueTagRef{AgentID: "A", Sequence: 10}}
	d2 := TagAdded{Tag: "y", UniqueTag: UniqueTagRef{AgentID: "A", Sequence: 11}}

	delta1 := &MemoryDelta{MemoryID: "m1", SourceAgent: "A", Clock: map[string]uint64{"A": 1}, FieldDeltas: []FieldDelta{d1}}
	delta2 := &MemoryDelta{MemoryID: "m1", SourceAgent: "A", Clock: map[string]uint64{"A": 1}, FieldDeltas: []FieldDelta{d2}}

	eng := Engine{}

	order1 := base()
	_ = eng.ApplyDelta(order1, delta1)
	_ = eng.ApplyDelta(order1, delta2)

	order2 := base()
	_ = eng.ApplyDelta(order2, delta2)
	_ = eng.ApplyDelta(order2, delta1)

	tags1 := order1.Tags.Elements()
	tags2 := order2.Tags.Elements()
	if len(tags1) != len(tags2) {
		t.Fatalf("expected commutative apply to produce same tag count, got %d vs %d", len(tags1), len(tags2))
	}
}

func TestMergeMemoriesIsSymmetric(t *testing.T) {
	a := NewMemoryCRDT(newTestMemory("m1"), "A", time.Now())
	b := NewMemoryCRDT(newTestMemory("m1"), "B", time.Now().Add(time.Minute))

	eng := Engine{}
	ab := eng.MergeMemories(a, b)
	ba := eng.MergeMemories(b, a)

	if ab.Summary.Value != ba.Summary.Value {
		t.Fatalf("expected merge to be order independent on LWW fields")
	}
}
