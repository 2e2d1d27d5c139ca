package namespace

import (
	"testing"

	"cortex/internal/core"
)

func TestManagerCreateRejectsDuplicate(t *testing.T) {
	m := NewManager()
	id := core.NamespaceID{Scope: core.ScopeTeam, Name: "alpha"}
	if _, err := m.Create(id, "agent-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.Create(id, "agent-2"); err == nil {
		t.Fatalf("expected duplicate namespace error")
	}
}

func TestPermissionManagerOwnerImpliesAllPermissions(t *testing.T) {
	m := NewManager()
	id := core.NamespaceID{Scope: core.ScopeAgent, Name: "bob"}
	if _, err := m.Create(id, "bob"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pm := NewPermissionManager(m)
	ok, err := pm.Check(id, "bob", core.PermAdmin)
	if err != nil || !ok {
		t.Fatalf("expected owner to have admin permission, ok=%v err=%v", ok, err)
	}
}

func TestPermissionManagerGrantAndRevoke(t *testing.T) {
	m := NewManager()
	id := core.NamespaceID{Scope: core.ScopeProject, Name: "proj"}
	if _, err := m.Create(id, "owner"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pm := NewPermissionManager(m)

	if ok, _ := pm.Check(id, "guest", core.PermRead); ok {
		t.Fatalf("expected guest to lack read before grant")
	}
	if err := pm.Grant(id, "guest", core.PermRead); err != nil {
		t.Fatalf("unexpected error granting: %v", err)
	}
	if ok, _ := pm.Check(id, "guest", core.PermRead); !ok {
		t.Fatalf("expected guest to have read after grant")
	}
	if err := pm.Revoke(id, "guest", core.PermRead); err != nil {
		t.Fatalf("unexpected error revoking: %v", err)
	}
	if ok, _ := pm.Check(id, "guest", core.PermRead); ok {
		t.Fatalf("expected guest to lack read after revoke")
	}
}

func TestCorrectionPropagatorAttenuatesPerHopAndStopsAtCutoff(t *testing.T) {
	p := CorrectionPropagator{}
	chain := []string{"m0", "m1", "m2", "m3", "m4", "m5", "m6", "m7", "m8", "m9"}
	steps := p.Propagate(1.0, chain)

	want := []float64{1.0, 0.7, 0.49, 0.343, 0.2401, 0.16807, 0.117649, 0.0823543, 0.05764801}
	if len(steps) != len(want) {
		t.Fatalf("expected %d propagated steps, got %d: %+v", len(want), len(steps), steps)
	}
	for i, w := range want {
		if diff := steps[i].Delta - w; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("step %d: expected delta %v, got %v", i, w, steps[i].Delta)
		}
	}
	for _, s := range steps {
		if s.MemoryID == "m9" {
			t.Fatalf("expected distance-9 hop to never be applied, found %+v", s)
		}
	}
}

func TestProvenanceTrackerChainConfidenceAndOrigin(t *testing.T) {
	tr := NewProvenanceTracker()
	tr.Append("mem1", core.ProvenanceHop{AgentID: "a1", Action: core.ActionCreated, Timestamp: 1, ConfidenceDelta: 0})
	tr.Append("mem1", core.ProvenanceHop{AgentID: "a2", Action: core.ActionCorrectedBy, Timestamp: 2, ConfidenceDelta: -0.3})
	tr.Append("mem1", core.ProvenanceHop{AgentID: "a3", Action: core.ActionValidatedBy, Timestamp: 3, ConfidenceDelta: 0.1})

	// deltas {0, -0.3, 0.1} -> clamp(1 x 0.7 x 1.1, 0, 1) = 0.77
	if got := tr.ChainConfidence("mem1"); diff := got - 0.77; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected chain confidence 0.77, got %v", got)
	}
	if got := tr.GetOrigin("mem1"); got != core.OriginAgentCreated {
		t.Fatalf("expected origin agent_created, got %v", got)
	}
}

func TestProvenanceTrackerChainConfidenceEmptyChainIsOne(t *testing.T) {
	tr := NewProvenanceTracker()
	if got := tr.ChainConfidence("no-chain"); got != 1.0 {
		t.Fatalf("expected empty-chain confidence 1.0, got %v", got)
	}
}

func TestProvenanceTrackerGetOriginEmptyChainIsHuman(t *testing.T) {
	tr := NewProvenanceTracker()
	if got := tr.GetOrigin("no-chain"); got != core.OriginHuman {
		t.Fatalf("expected empty-chain origin human, got %v", got)
	}
}

func TestCrossAgentTracerBoundedByMaxDepth(t *testing.T) {
	tr := NewProvenanceTracker()
	tr.Append("trace-1", core.ProvenanceHop{AgentID: "ta", Action: core.ActionCreated, Timestamp: 1, ConfidenceDelta: 0})
	tr.Append("trace-1", core.ProvenanceHop{AgentID: "tb", Action: core.ActionSharedTo, Timestamp: 2, ConfidenceDelta: 0})
	tr.Append("trace-1", core.ProvenanceHop{AgentID: "tc", Action: core.ActionSharedTo, Timestamp: 3, ConfidenceDelta: 0.1})

	tracer := NewCrossAgentTracer(tr)

	full := tracer.Trace("trace-1", 10)
	if full.HopCount != 3 {
		t.Fatalf("expected hop count 3, got %d", full.HopCount)
	}
	if len(full.AgentsInvolved) != 3 {
		t.Fatalf("expected 3 agents involved, got %d: %+v", len(full.AgentsInvolved), full.AgentsInvolved)
	}
	if diff := full.TotalConfidence - 1.0; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected total confidence clamped to 1.0, got %v", full.TotalConfidence)
	}

	limited := tracer.Trace("trace-1", 2)
	if limited.HopCount != 2 {
		t.Fatalf("expected trace bounded to 2 hops, got %d: %+v", limited.HopCount, limited)
	}
	if len(limited.AgentsInvolved) != 2 {
		t.Fatalf("expected 2 agents involved when bounded, got %d", len(limited.AgentsInvolved))
	}
}

func TestAgentRegistryRejectsEmptyName(t *testing.T) {
	r := NewAgentRegistry()
	if _, err := r.Register("a1", "", nil); err == nil {
		t.Fatalf("expected error for empty agent name")
	}
}

func TestAgentRegistryRegisterAndDeregister(t *testing.T) {
	r := NewAgentRegistry()
	if _, err := r.Register("a1", "agent-one", []string{"search"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.Deregister("a1")
	reg, ok := r.Get("a1")
	if !ok || reg.Status != AgentDeregistered {
		t.Fatalf("expected agent to be deregistered, got %+v ok=%v", reg, ok)
	}
}
