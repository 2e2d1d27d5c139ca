package consolidation

import (
	"testing"

	"cortex/internal/core"
)

func TestClusterMemoriesGroupsSimilarEmbeddings(t *testing.T) {
	m1 := &core.Memory{ID: "a", Summary: "one"}
	m2 := &core.Memory{ID: "b", Summary: "two"}
	m3 := &core.Memory{ID: "c", Summary: "three"}

	e1 := []float32{1, 0, 0}
	e2 := []float32{0.99, 0.01, 0}
	e3 := []float32{0, 0, 1}

	clusters := ClusterMemories([]*core.Memory{m1, m2, m3}, [][]float32{e1, e2, e3})
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}
}

func TestRuleBasedExtractorDiscountsConfidence(t *testing.T) {
	cluster := Cluster{
		Memories: []*core.Memory{
			{ID: "a", Summary: "x", Confidence: 1.0},
			{ID: "b", Summary: "x", Confidence: 0.8},
		},
	}
	extractor := NewRuleBasedExtractor()
	mem, err := extractor.Extract(cluster)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mem.Confidence >= 0.9 {
		t.Fatalf("expected discounted confidence below average, got %v", mem.Confidence)
	}
	if mem.MemoryType != core.MemoryTypeSemantic {
		t.Fatalf("expected semantic memory type, got %v", mem.MemoryType)
	}
}

func TestNewLLMExtractorWiresFallbackAndDefaultModel(t *testing.T) {
	fallback := NewRuleBasedExtractor()
	extractor := NewLLMExtractor("", "", fallback)
	if extractor.Fallback == nil {
		t.Fatalf("expected fallback extractor to be wired")
	}
	if extractor.model == "" {
		t.Fatalf("expected a default model to be set")
	}
}
