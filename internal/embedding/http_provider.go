package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type httpEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type httpEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// HTTPProvider calls a generic OpenAI-compatible embeddings endpoint,
// adapted from the teacher's internal/embedding/client.go EmbedText: a
// last-resort reachable-HTTP-endpoint fallback for self-hosted or
// otherwise unlisted embedding servers.
type HTTPProvider struct {
	BaseURL    string
	Path       string
	Model      string
	APIKey     string
	APIHeader  string
	Dims       int
	HTTPClient *http.Client
	Timeout    time.Duration
}

func (p *HTTPProvider) Name() string    { return "http:" + p.Model }
func (p *HTTPProvider) Dimensions() int { return p.Dims }

func (p *HTTPProvider) IsAvailable() bool {
	return p.BaseURL != ""
}

func (p *HTTPProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (p *HTTPProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	timeout := p.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqBody, err := json.Marshal(httpEmbedRequest{Model: p.Model, Input: texts})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(cctx, http.MethodPost, p.BaseURL+p.Path, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	if p.APIHeader == "Authorization" {
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	} else if p.APIHeader != "" {
		req.Header.Set(p.APIHeader, p.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("embeddings error: %s: %s", resp.Status, string(body))
	}

	var parsed httpEmbedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse embedding response: %w", err)
	}
	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("unexpected embedding count: got %d, want %d", len(parsed.Data), len(texts))
	}
	out := make([][]float32, len(parsed.Data))
	for i := range parsed.Data {
		out[i] = parsed.Data[i].Embedding
	}
	return out, nil
}
