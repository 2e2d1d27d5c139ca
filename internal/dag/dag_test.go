package dag

import "testing"

func TestAddEdgeRejectsSelfLoop(t *testing.T) {
	g := New()
	if err := g.AddEdge("A", "A", 0.5, "agent-1", 1); err == nil {
		t.Fatalf("expected self-loop to be rejected")
	}
}

func TestAddEdgeRejectsImmediateCycle(t *testing.T) {
	g := New()
	if err := g.AddEdge("A", "B", 0.8, "agent-1", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.AddEdge("B", "A", 0.5, "agent-1", 2); err == nil {
		t.Fatalf("expected cycle to be rejected")
	}
}

func TestMergeResolvesCycleByRemovingWeakestEdge(t *testing.T) {
	replica1 := New()
	if err := replica1.AddEdge("A", "B", 0.8, "agent-1", 1); err != nil {
		t.Fatalf("add A->B: %v", err)
	}
	if err := replica1.AddEdge("B", "C", 0.6, "agent-1", 2); err != nil {
		t.Fatalf("add B->C: %v", err)
	}

	replica2 := New()
	if err := replica2.AddEdge("C", "A", 0.5, "agent-2", 1); err != nil {
		t.Fatalf("add C->A on replica2: %v", err)
	}

	replica1.Merge(replica2)

	edges := replica1.Edges()
	has := func(s, t2 string) bool {
		for _, e := range edges {
			if e.Source == s && e.Target == t2 {
				return true
			}
		}
		return false
	}

	if !has("A", "B") {
		t.Fatalf("expected A->B to survive")
	}
	if !has("B", "C") {
		t.Fatalf("expected B->C to survive")
	}
	if has("C", "A") {
		t.Fatalf("expected C->A (weakest edge, strength 0.5) to be removed")
	}
	if cyc := replica1.DetectCycle(); cyc != nil {
		t.Fatalf("expected acyclic graph after resolution, found cycle: %+v", cyc)
	}
}

func TestResolveCyclesConvergesRegardlessOfMergeOrder(t *testing.T) {
	build := func(mergeOrder func(a, b *Graph)) *Graph {
		r1 := New()
		_ = r1.AddEdge("A", "B", 0.8, "agent-1", 1)
		_ = r1.AddEdge("B", "C", 0.6, "agent-1", 2)
		r2 := New()
		_ = r2.AddEdge("C", "A", 0.5, "agent-2", 1)
		mergeOrder(r1, r2)
		return r1
	}

	forward := build(func(a, b *Graph) { a.Merge(b) })
	backward := build(func(a, b *Graph) {
		b.Merge(a)
		*a = *b
	})

	if len(forward.Edges()) != len(backward.Edges()) {
		t.Fatalf("expected merge order independence: %d vs %d edges", len(forward.Edges()), len(backward.Edges()))
	}
}
