package core

import "testing"

func TestContentHashDeterministic(t *testing.T) {
	a := CoreContent{ProjectName: "cortex", Description: "x", Metadata: map[string]any{"b": 1, "a": 2}}
	b := CoreContent{ProjectName: "cortex", Description: "x", Metadata: map[string]any{"a": 2, "b": 1}}

	ha, err := ContentHash(a)
	if err != nil {
		t.Fatalf("hash a: %v", err)
	}
	hb, err := ContentHash(b)
	if err != nil {
		t.Fatalf("hash b: %v", err)
	}
	if ha != hb {
		t.Fatalf("expected identical hashes for identical content regardless of map key order, got %s vs %s", ha, hb)
	}
}

func TestContentHashDiffers(t *testing.T) {
	a := InsightContent{Observation: "foo"}
	b := InsightContent{Observation: "bar"}

	ha, _ := ContentHash(a)
	hb, _ := ContentHash(b)
	if ha == hb {
		t.Fatalf("expected distinct hashes for distinct content")
	}
}

func TestNamespaceURIRoundTrip(t *testing.T) {
	cases := []NamespaceID{
		{Scope: ScopeAgent, Name: "default"},
		{Scope: ScopeTeam, Name: "Platform"},
		{Scope: ScopeProject, Name: "Cortex-Memory"},
	}
	for _, ns := range cases {
		uri := ns.URI()
		parsed, err := ParseNamespaceURI(uri)
		if err != nil {
			t.Fatalf("parse %q: %v", uri, err)
		}
		if parsed != ns {
			t.Fatalf("round trip mismatch: got %+v, want %+v", parsed, ns)
		}
	}
}

func TestNamespaceURICaseInsensitiveScope(t *testing.T) {
	ns, err := ParseNamespaceURI("AGENT://default/")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ns.Scope != ScopeAgent {
		t.Fatalf("expected scope to normalize to lowercase, got %q", ns.Scope)
	}
}

func TestNamespaceURIRejectsUnknownScope(t *testing.T) {
	if _, err := ParseNamespaceURI("bogus://x/"); err == nil {
		t.Fatalf("expected error for unknown scope")
	}
}

func TestNamespaceURIRejectsEmptyName(t *testing.T) {
	if _, err := ParseNamespaceURI("agent:///"); err == nil {
		t.Fatalf("expected error for empty name")
	}
}
