// Package embedding implements the embedding provider abstraction and
// degradation chain (C11), grounded on the original implementation's
// cortex-embeddings degradation chain and matryoshka dimension
// utilities, with the HTTP fallback provider adapted from the teacher's
// internal/embedding/client.go.
package embedding

import "context"

// Provider is one embedding backend in the degradation chain.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Name() string
	IsAvailable() bool
}
