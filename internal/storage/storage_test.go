package storage

import (
	"encoding/json"
	"testing"

	"cortex/internal/core"
)

func TestDecodeContentRoundTrip(t *testing.T) {
	original := core.InsightContent{Observation: "cache invalidation is hard", Evidence: []string{"incident-42"}}
	raw, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded, err := decodeContent(core.MemoryTypeInsight, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	ic, ok := decoded.(core.InsightContent)
	if !ok {
		t.Fatalf("expected core.InsightContent, got %T", decoded)
	}
	if ic.Observation != original.Observation {
		t.Fatalf("expected observation %q, got %q", original.Observation, ic.Observation)
	}
}

func TestDecodeContentUnknownTypeErrors(t *testing.T) {
	if _, err := decodeContent(core.MemoryType("bogus"), []byte(`{}`)); err == nil {
		t.Fatalf("expected error for unknown memory type")
	}
}

func TestVectorLiteralFormatsAsPgvectorArray(t *testing.T) {
	got := vectorLiteral([]float32{1, 0.5, -2})
	want := "[1,0.5,-2]"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
