package embedding

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GenAIProvider embeds via Google's Gemini embedding model, mirroring
// the teacher's internal/llm/google/client.go wrapper around
// genai.NewClient.
type GenAIProvider struct {
	client     *genai.Client
	model      string
	dimensions int
	available  bool
}

func NewGenAIProvider(ctx context.Context, apiKey, model string, dimensions int) (*GenAIProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("init genai client: %w", err)
	}
	if model == "" {
		model = "text-embedding-004"
	}
	return &GenAIProvider{client: client, model: model, dimensions: dimensions, available: apiKey != ""}, nil
}

func (p *GenAIProvider) Name() string      { return "genai:" + p.model }
func (p *GenAIProvider) Dimensions() int   { return p.dimensions }
func (p *GenAIProvider) IsAvailable() bool { return p.available }

func (p *GenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (p *GenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}
	resp, err := p.client.Models.EmbedContent(ctx, p.model, contents, nil)
	if err != nil {
		return nil, err
	}
	out := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		out[i] = e.Values
	}
	return out, nil
}
