package crdt

import (
	"testing"
	"time"
)

func TestLWWRegisterMergeHigherTimestampWins(t *testing.T) {
	base := time.Now()
	a := NewLWWRegister("old", base, "agent-a")
	b := NewLWWRegister("new", base.Add(time.Second), "agent-b")

	a.Merge(b)
	if a.Value != "new" {
		t.Fatalf("expected newer value to win, got %q", a.Value)
	}
}

func TestLWWRegisterMergeTieBreaksOnAgent(t *testing.T) {
	ts := time.Now()
	a := NewLWWRegister("a-value", ts, "agent-a")
	b := NewLWWRegister("b-value", ts, "agent-z")

	a.Merge(b)
	if a.Value != "b-value" {
		t.Fatalf("expected lexicographically greater agent to win tie, got %q", a.Value)
	}
}

func TestMaxRegisterMergeKeepsGreater(t *testing.T) {
	ts := time.Now()
	a := NewMaxRegister(0.4, ts)
	b := NewMaxRegister(0.9, ts.Add(time.Minute))

	a.Merge(&b)
	if a.Get() != 0.9 {
		t.Fatalf("expected max to win, got %v", a.Get())
	}

	// Merging a lower value afterward must not decrease it.
	lower := NewMaxRegister(0.1, ts.Add(2*time.Minute))
	a.Merge(&lower)
	if a.Get() != 0.9 {
		t.Fatalf("max register must be monotonic, got %v", a.Get())
	}
}

func TestORSetAddWinsOverConcurrentRemove(t *testing.T) {
	replicaA := NewORSet[string]()
	replicaB := NewORSet[string]()

	replicaA.Add("tag1", "agent-a", 1)
	replicaB.Merge(replicaA) // B observes the add

	replicaB.Remove("tag1") // B removes what it observed
	replicaA.Add("tag1", "agent-c", 2) // A concurrently re-adds with a fresh tag

	replicaA.Merge(replicaB)
	if !replicaA.Contains("tag1") {
		t.Fatalf("expected add-wins: concurrent re-add tag should survive the remove")
	}
}

func TestORSetRemoveTombstonesObservedTags(t *testing.T) {
	s := NewORSet[string]()
	s.Add("x", "agent-a", 1)
	s.Remove("x")
	if s.Contains("x") {
		t.Fatalf("expected element removed after tombstoning its only tag")
	}
}

func TestGSetMergeIsUnion(t *testing.T) {
	a := NewGSet[int]()
	a.Add(1)
	b := NewGSet[int]()
	b.Add(2)
	a.Merge(b)
	if !a.Contains(1) || !a.Contains(2) {
		t.Fatalf("expected union of both sets")
	}
}

func TestPNCounterMergeTakesPerAgentMax(t *testing.T) {
	a := NewPNCounter()
	a.Increment("agent-a")
	a.Increment("agent-a")
	b := NewPNCounter()
	b.Increment("agent-a")
	b.Increment("agent-b")

	a.Merge(b)
	if a.Value() != 3 {
		t.Fatalf("expected value 3 (2 from a, 1 from b), got %d", a.Value())
	}
}

func TestVectorClockMergeAndDominance(t *testing.T) {
	a := NewVectorClock()
	a.Set("A", 2)
	b := NewVectorClock()
	b.Set("A", 3)
	b.Set("B", 1)

	a.Merge(b)
	if a.Get("A") != 3 || a.Get("B") != 1 {
		t.Fatalf("expected merged clock to take per-agent max, got A=%d B=%d", a.Get("A"), a.Get("B"))
	}
	if !a.Dominates(b) {
		t.Fatalf("expected merged clock to dominate the clock it merged")
	}
}
