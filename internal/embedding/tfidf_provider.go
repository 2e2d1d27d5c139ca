package embedding

import (
	"context"
	"math"
	"strings"
	"sync"
)

// TFIDFProvider is the final fallback in the degradation chain: a pure
// in-process bag-of-words vectorizer that always succeeds, trading
// semantic quality for availability when every network provider and the
// cache have failed.
type TFIDFProvider struct {
	mu         sync.Mutex
	dimensions int
	vocab      map[string]int
	docFreq    map[string]int
	docCount   int
}

func NewTFIDFProvider(dimensions int) *TFIDFProvider {
	return &TFIDFProvider{dimensions: dimensions, vocab: make(map[string]int), docFreq: make(map[string]int)}
}

func (p *TFIDFProvider) Name() string      { return "tfidf" }
func (p *TFIDFProvider) Dimensions() int   { return p.dimensions }
func (p *TFIDFProvider) IsAvailable() bool { return true }

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
}

// observe updates document frequency with a new document's unique
// terms, growing the vocabulary as needed.
func (p *TFIDFProvider) observe(tokens []string) {
	p.docCount++
	seen := make(map[string]bool)
	for _, tok := range tokens {
		if _, ok := p.vocab[tok]; !ok {
			p.vocab[tok] = len(p.vocab)
		}
		if !seen[tok] {
			p.docFreq[tok]++
			seen[tok] = true
		}
	}
}

func (p *TFIDFProvider) Embed(_ context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tokens := tokenize(text)
	p.observe(tokens)

	termCount := make(map[string]int)
	for _, tok := range tokens {
		termCount[tok]++
	}

	vec := make([]float32, p.dimensions)
	for term, count := range termCount {
		idx := hashTermToDim(term, p.dimensions)
		tf := float64(count) / float64(len(tokens))
		idf := math.Log(1+float64(p.docCount)) - math.Log(1+float64(p.docFreq[term]))
		vec[idx] += float32(tf * idf)
	}

	var sumSquares float64
	for _, v := range vec {
		sumSquares += float64(v) * float64(v)
	}
	norm := float32(math.Sqrt(sumSquares))
	if norm > 1e-12 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

func (p *TFIDFProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
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

// hashTermToDim maps a vocabulary term into a fixed-width vector slot
// via FNV-1a, so the vector dimension stays constant regardless of how
// large the vocabulary grows.
func hashTermToDim(term string, dims int) int {
	var h uint32 = 2166136261
	for i := 0; i < len(term); i++ {
		h ^= uint32(term[i])
		h *= 16777619
	}
	return int(h) % dims
}
