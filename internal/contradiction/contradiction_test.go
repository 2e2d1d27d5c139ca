package contradiction

import (
	"testing"
	"time"

	"cortex/internal/core"
)

func TestSupersessionDetectorFires(t *testing.T) {
	a := &core.Memory{ID: "a"}
	bID := "a"
	b := &core.Memory{ID: "b", Supersedes: &bID}
	e := NewEngine()
	typ, ok := e.Detect(a, b)
	if !ok || typ != Supersession {
		t.Fatalf("expected supersession contradiction, got %v ok=%v", typ, ok)
	}
}

func TestTemporalSupersessionDetectorFiresWhenValidUntilPrecedesValidTime(t *testing.T) {
	earlier := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	later := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	a := &core.Memory{ID: "a", ValidUntil: &earlier, LinkedFiles: []core.FileLink{{Path: "x.go"}}}
	b := &core.Memory{ID: "b", ValidTime: later, LinkedFiles: []core.FileLink{{Path: "x.go"}}}
	e := NewEngine()
	typ, ok := e.Detect(a, b)
	if !ok || typ != Supersession {
		t.Fatalf("expected temporal supersession, got %v ok=%v", typ, ok)
	}
}

func TestTemporalSupersessionDetectorRequiresSharedSubject(t *testing.T) {
	earlier := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	later := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	a := &core.Memory{ID: "a", ValidUntil: &earlier, LinkedFiles: []core.FileLink{{Path: "x.go"}}}
	b := &core.Memory{ID: "b", ValidTime: later, LinkedFiles: []core.FileLink{{Path: "y.go"}}}
	e := NewEngine()
	if _, ok := e.Detect(a, b); ok {
		t.Fatalf("expected no temporal supersession across unrelated subjects")
	}
}

func TestDirectOppositionRequiresSharedSubjectAndAbsoluteMarker(t *testing.T) {
	a := &core.Memory{ID: "a", Summary: "you must always retry on timeout", LinkedFiles: []core.FileLink{{Path: "x.go"}}}
	b := &core.Memory{ID: "b", Summary: "you must never retry on timeout", LinkedFiles: []core.FileLink{{Path: "x.go"}}}
	e := NewEngine()
	typ, ok := e.Detect(a, b)
	if !ok || typ != Direct {
		t.Fatalf("expected direct contradiction, got %v ok=%v", typ, ok)
	}
}

func TestDirectOppositionRequiresSharedSubject(t *testing.T) {
	a := &core.Memory{ID: "a", Summary: "you must always retry on timeout", LinkedFiles: []core.FileLink{{Path: "x.go"}}}
	b := &core.Memory{ID: "b", Summary: "you must never retry on timeout", LinkedFiles: []core.FileLink{{Path: "y.go"}}}
	e := NewEngine()
	if _, ok := e.Detect(a, b); ok {
		t.Fatalf("expected no contradiction across unrelated subjects")
	}
}

func TestPolarTagDetectorFires(t *testing.T) {
	a := &core.Memory{ID: "a", Tags: []string{"deprecated"}, LinkedPatterns: []string{"p1"}}
	b := &core.Memory{ID: "b", Tags: []string{"recommended"}, LinkedPatterns: []string{"p1"}}
	e := NewEngine()
	typ, ok := e.Detect(a, b)
	if !ok || typ != Partial {
		t.Fatalf("expected partial contradiction, got %v ok=%v", typ, ok)
	}
}

func TestPropagateSeedAndOneHop(t *testing.T) {
	neighbors := map[string][]string{
		"seed": {"n1"},
		"n1":   {"n2"},
		"n2":   {},
	}
	deltas := Propagate("seed", SeedFromContradiction(Direct), func(id string) []string {
		return neighbors[id]
	})
	if len(deltas) == 0 || deltas[0].MemoryID != "seed" || deltas[0].Amount != -0.3 {
		t.Fatalf("expected seed delta -0.3, got %+v", deltas)
	}
	found := false
	for _, d := range deltas {
		if d.MemoryID == "n1" {
			found = true
			want := -0.3 * propagationFactor
			if d.Amount != want {
				t.Fatalf("expected hop-1 delta %v, got %v", want, d.Amount)
			}
		}
	}
	if !found {
		t.Fatalf("expected n1 to receive a propagated delta")
	}
}

func TestPropagateStopsBelowCutoff(t *testing.T) {
	// Supersession mass 0.5 attenuated by 0.5 per hop: seed 0.5, n1 0.25,
	// n2 0.125, n3 0.0625; n4 would get 0.03125, below the 0.05 cutoff, so
	// propagation stops before reaching n4.
	neighbors := map[string][]string{
		"seed": {"n1"},
		"n1":   {"n2"},
		"n2":   {"n3"},
		"n3":   {"n4"},
		"n4":   {},
	}
	deltas := Propagate("seed", SeedFromContradiction(Supersession), func(id string) []string {
		return neighbors[id]
	})
	for _, d := range deltas {
		if d.MemoryID == "n4" {
			t.Fatalf("expected propagation to stop before n4, got delta %+v", d)
		}
	}
}
