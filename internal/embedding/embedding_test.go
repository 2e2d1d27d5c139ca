package embedding

import (
	"context"
	"errors"
	"testing"
)

type fakeProvider struct {
	name      string
	dims      int
	available bool
	vec       []float32
	err       error
}

func (f fakeProvider) Name() string      { return f.name }
func (f fakeProvider) Dimensions() int   { return f.dims }
func (f fakeProvider) IsAvailable() bool { return f.available }

func (f fakeProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

func (f fakeProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

func TestChainPrimarySucceedsNoDegradation(t *testing.T) {
	chain := NewChain(
		fakeProvider{name: "primary", dims: 4, available: true, vec: []float32{1, 2, 3, 4}},
		fakeProvider{name: "fallback", dims: 4, available: true, vec: []float32{9, 9, 9, 9}},
	)
	vec, name, err := chain.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "primary" || len(vec) != 4 {
		t.Fatalf("expected primary to serve the embedding, got name=%v vec=%v", name, vec)
	}
	if len(chain.DrainEvents()) != 0 {
		t.Fatalf("expected no degradation events")
	}
}

func TestChainFallsBackOnPrimaryFailure(t *testing.T) {
	chain := NewChain(
		fakeProvider{name: "primary", dims: 4, available: true, err: errors.New("boom")},
		fakeProvider{name: "fallback", dims: 4, available: true, vec: []float32{1, 1, 1, 1}},
	)
	vec, name, err := chain.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "fallback" || len(vec) != 4 {
		t.Fatalf("expected fallback to serve the embedding, got name=%v", name)
	}
	events := chain.DrainEvents()
	if len(events) != 1 || events[0].FallbackUsed != "fallback" {
		t.Fatalf("expected one degradation event for fallback, got %+v", events)
	}
}

func TestChainAllFailReturnsError(t *testing.T) {
	chain := NewChain(
		fakeProvider{name: "primary", dims: 4, available: true, err: errors.New("boom")},
		fakeProvider{name: "fallback", dims: 4, available: true, err: errors.New("also boom")},
	)
	if _, _, err := chain.Embed(context.Background(), "hello"); err == nil {
		t.Fatalf("expected error when every provider fails")
	}
}

func TestChainSkipsUnavailableProviders(t *testing.T) {
	chain := NewChain(
		fakeProvider{name: "primary", dims: 4, available: false},
		fakeProvider{name: "fallback", dims: 4, available: true, vec: []float32{1, 1, 1, 1}},
	)
	_, name, err := chain.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "fallback" {
		t.Fatalf("expected unavailable primary to be skipped, got %v", name)
	}
}

func TestTruncateReducesDimensionsAndRenormalizes(t *testing.T) {
	full := make([]float32, 8)
	for i := range full {
		full[i] = float32(i) * 0.1
	}
	truncated, err := Truncate(full, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(truncated) != 4 {
		t.Fatalf("expected 4 dims, got %d", len(truncated))
	}
	var sumSquares float64
	for _, v := range truncated {
		sumSquares += float64(v) * float64(v)
	}
	if diff := sumSquares - 1.0; diff > 1e-4 || diff < -1e-4 {
		t.Fatalf("expected renormalized unit vector, sum of squares = %v", sumSquares)
	}
}

func TestTruncateErrorsOnUpscale(t *testing.T) {
	if _, err := Truncate([]float32{1, 2}, 10); err == nil {
		t.Fatalf("expected error truncating to a larger dimension")
	}
}

func TestValidateDimensionsMismatch(t *testing.T) {
	if err := ValidateDimensions(make([]float32, 384), 1024); err == nil {
		t.Fatalf("expected dimension mismatch error")
	}
}

func TestTFIDFProviderAlwaysAvailable(t *testing.T) {
	p := NewTFIDFProvider(64)
	vec, err := p.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 64 {
		t.Fatalf("expected 64-dim vector, got %d", len(vec))
	}
}
