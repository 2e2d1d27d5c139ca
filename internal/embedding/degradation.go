package embedding

import (
	"context"
	"sync"
	"time"

	"cortex/internal/core"
)

// DegradationEvent records one fallback: the chain's primary provider
// was unavailable or failed, and embedding fell through to a weaker
// provider further down the chain.
type DegradationEvent struct {
	Component    string
	Failure      string
	FallbackUsed string
	Timestamp    time.Time
}

// Chain tries providers in priority order, falling through to the next
// on failure or unavailability, and logs every fallback as a
// DegradationEvent.
type Chain struct {
	mu        sync.Mutex
	providers []Provider
	events    []DegradationEvent
	now       func() time.Time
}

// NewChain builds a degradation chain from providers in priority order
// (first is primary).
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers, now: time.Now}
}

// Push adds a provider to the end of the chain, e.g. a cache-only or
// TF-IDF last-resort fallback.
func (c *Chain) Push(p Provider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.providers = append(c.providers, p)
}

// Embed tries each available provider in order and returns the first
// successful embedding plus the name of the provider that produced it.
func (c *Chain) Embed(ctx context.Context, text string) ([]float32, string, error) {
	c.mu.Lock()
	providers := append([]Provider(nil), c.providers...)
	c.mu.Unlock()

	var lastErr error
	for i, p := range providers {
		if !p.IsAvailable() {
			continue
		}
		vec, err := p.Embed(ctx, text)
		if err != nil {
			lastErr = err
			continue
		}
		if i > 0 {
			c.recordDegradation(providers[0].Name(), p.Name())
		}
		return vec, p.Name(), nil
	}
	return nil, "", core.NewProviderUnavailableError("all providers exhausted", lastErr)
}

// EmbedBatch is the batch form of Embed.
func (c *Chain) EmbedBatch(ctx context.Context, texts []string) ([][]float32, string, error) {
	c.mu.Lock()
	providers := append([]Provider(nil), c.providers...)
	c.mu.Unlock()

	var lastErr error
	for i, p := range providers {
		if !p.IsAvailable() {
			continue
		}
		vecs, err := p.EmbedBatch(ctx, texts)
		if err != nil {
			lastErr = err
			continue
		}
		if i > 0 {
			c.recordDegradation(providers[0].Name(), p.Name())
		}
		return vecs, p.Name(), nil
	}
	return nil, "", core.NewProviderUnavailableError("all providers exhausted", lastErr)
}

// EmbedReadonly embeds without recording a degradation event, for
// read-only contexts that cannot mutate the chain's event buffer.
func (c *Chain) EmbedReadonly(ctx context.Context, text string) ([]float32, error) {
	c.mu.Lock()
	providers := append([]Provider(nil), c.providers...)
	c.mu.Unlock()

	for _, p := range providers {
		if !p.IsAvailable() {
			continue
		}
		if vec, err := p.Embed(ctx, text); err == nil {
			return vec, nil
		}
	}
	return nil, core.NewProviderUnavailableError("all providers exhausted", nil)
}

func (c *Chain) recordDegradation(primaryName, fallbackName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, DegradationEvent{
		Component:    "embeddings",
		Failure:      primaryName + " unavailable",
		FallbackUsed: fallbackName,
		Timestamp:    c.now(),
	})
}

// ActiveProviderName returns the first available provider's name, or
// "none" if every provider is unavailable.
func (c *Chain) ActiveProviderName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.providers {
		if p.IsAvailable() {
			return p.Name()
		}
	}
	return "none"
}

// DrainEvents returns and clears the accumulated degradation events.
func (c *Chain) DrainEvents() []DegradationEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	events := c.events
	c.events = nil
	return events
}

// Len reports the number of providers in the chain.
func (c *Chain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.providers)
}
