package config

import "testing"

func TestDefaultPopulatesPerSectionDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Decay.HalfLifeDays != 90 {
		t.Fatalf("expected 90-day decay half-life default, got %v", cfg.Decay.HalfLifeDays)
	}
	if cfg.Consolidation.ClusterThreshold != 0.65 {
		t.Fatalf("expected 0.65 cluster threshold default, got %v", cfg.Consolidation.ClusterThreshold)
	}
	sum := cfg.Validation.CitationWeight + cfg.Validation.TemporalWeight +
		cfg.Validation.PatternWeight + cfg.Validation.ContradictionWeight
	if sum != 1.0 {
		t.Fatalf("expected validation weights to sum to 1.0, got %v", sum)
	}
	if cfg.Embedding.Dimensions == 0 {
		t.Fatalf("expected a nonzero default embedding dimension")
	}
}
