package consolidation

import (
	"context"
	"fmt"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"cortex/internal/core"
)

const defaultMaxTokens int64 = 512

// LLMExtractor is a SemanticExtractor that asks a chat-completion model
// to summarize a passed recall gate's episodic memories into one
// consolidated semantic memory, instead of RuleBasedExtractor's plain
// average. Construction mirrors the teacher's internal/llm/anthropic
// client wrapper: one API key, one model, options.RequestOption wiring.
type LLMExtractor struct {
	sdk                anthropic.Client
	model              string
	ConfidenceDiscount float64
	Fallback           SemanticExtractor
}

// NewLLMExtractor builds an Anthropic-backed extractor. fallback is used
// when the model call fails or returns an empty summary, so a transient
// API error degrades consolidation quality rather than dropping the
// cluster entirely.
func NewLLMExtractor(apiKey, model string, fallback SemanticExtractor) *LLMExtractor {
	if model == "" {
		model = string(anthropic.ModelClaude3_7SonnetLatest)
	}
	return &LLMExtractor{
		sdk:                anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:              model,
		ConfidenceDiscount: 0.85,
		Fallback:           fallback,
	}
}

func (e *LLMExtractor) Extract(cluster Cluster) (*core.Memory, error) {
	if len(cluster.Memories) == 0 {
		return nil, nil
	}

	summary, err := e.summarize(context.Background(), cluster)
	if err != nil || strings.TrimSpace(summary) == "" {
		if e.Fallback != nil {
			return e.Fallback.Extract(cluster)
		}
		return nil, err
	}

	var sourceIDs []string
	var totalConfidence float64
	for _, m := range cluster.Memories {
		sourceIDs = append(sourceIDs, m.ID)
		totalConfidence += m.Confidence
	}
	avgConfidence := totalConfidence / float64(len(cluster.Memories))
	confidence := avgConfidence * e.ConfidenceDiscount

	content := core.SemanticContent{
		Knowledge:               summary,
		SourceEpisodes:          sourceIDs,
		ConsolidationConfidence: confidence,
	}

	now := time.Now()
	return &core.Memory{
		MemoryType:      core.MemoryTypeSemantic,
		Content:         content,
		Summary:         summary,
		Confidence:      confidence,
		Importance:      core.ImportanceNormal,
		TransactionTime: now,
		ValidTime:       now,
		LastAccessed:    now,
	}, nil
}

func (e *LLMExtractor) summarize(ctx context.Context, cluster Cluster) (string, error) {
	var sb strings.Builder
	sb.WriteString("Summarize the shared knowledge across these related memory entries in one or two sentences:\n")
	for _, m := range cluster.Memories {
		fmt.Fprintf(&sb, "- %s\n", m.Summary)
	}

	resp, err := e.sdk.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(e.model),
		MaxTokens: defaultMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(sb.String())),
		},
	})
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			out.WriteString(tb.Text)
		}
	}
	return strings.TrimSpace(out.String()), nil
}
