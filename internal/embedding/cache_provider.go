package embedding

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"cortex/internal/core"
)

// CacheProvider is a cache-only fallback: it never computes a fresh
// embedding, only serves one previously stored by a successful upstream
// provider. Pushed to the end of a Chain ahead of TF-IDF so a cache hit
// is preferred over a degraded last-resort embedding.
type CacheProvider struct {
	client     *redis.Client
	dimensions int
}

func NewCacheProvider(client *redis.Client, dimensions int) *CacheProvider {
	return &CacheProvider{client: client, dimensions: dimensions}
}

func (p *CacheProvider) Name() string      { return "cache" }
func (p *CacheProvider) Dimensions() int   { return p.dimensions }
func (p *CacheProvider) IsAvailable() bool { return p.client != nil }

func cacheKey(text string) string {
	h, _ := core.ContentHash(textContent{Text: text})
	return "embedding:cache:" + h
}

type textContent struct {
	Text string `json:"text"`
}

func (t textContent) Kind() core.MemoryType { return core.MemoryType("embedding-cache-key") }

// Store caches a freshly computed embedding so a later CacheProvider
// lookup for the same text can serve it without recomputation.
func (p *CacheProvider) Store(ctx context.Context, text string, embedding []float32) error {
	if p.client == nil {
		return nil
	}
	raw, err := json.Marshal(embedding)
	if err != nil {
		return err
	}
	return p.client.Set(ctx, cacheKey(text), raw, 0).Err()
}

func (p *CacheProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if p.client == nil {
		return nil, core.NewProviderUnavailableError("cache", nil)
	}
	raw, err := p.client.Get(ctx, cacheKey(text)).Bytes()
	if err != nil {
		return nil, core.NewProviderUnavailableError("cache", err)
	}
	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil {
		return nil, err
	}
	return vec, nil
}

func (p *CacheProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := p.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}
