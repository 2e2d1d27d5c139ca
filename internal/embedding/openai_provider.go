package embedding

import (
	"context"

	sdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAIProvider embeds via the OpenAI embeddings endpoint, following
// the teacher's pattern of wrapping the vendor SDK client in a thin
// adapter (internal/llm/openai/client.go's Client).
type OpenAIProvider struct {
	sdk        sdk.Client
	model      string
	dimensions int
	available  bool
}

func NewOpenAIProvider(apiKey, model string, dimensions int) *OpenAIProvider {
	client := sdk.NewClient(option.WithAPIKey(apiKey))
	if model == "" {
		model = "text-embedding-3-small"
	}
	return &OpenAIProvider{sdk: client, model: model, dimensions: dimensions, available: apiKey != ""}
}

func (p *OpenAIProvider) Name() string      { return "openai:" + p.model }
func (p *OpenAIProvider) Dimensions() int   { return p.dimensions }
func (p *OpenAIProvider) IsAvailable() bool { return p.available }

func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := p.sdk.Embeddings.New(ctx, sdk.EmbeddingNewParams{
		Model: sdk.EmbeddingModel(p.model),
		Input: sdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	})
	if err != nil {
		return nil, err
	}
	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		out[i] = vec
	}
	return out, nil
}
