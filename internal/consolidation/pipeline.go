package consolidation

import (
	"time"

	"cortex/internal/core"
)

// ClusterThreshold is the cosine similarity above which two episodic
// memories are folded into the same consolidation cluster.
const ClusterThreshold = 0.65

// Cluster groups episodic memories that cluster around a common
// centroid embedding.
type Cluster struct {
	Memories  []*core.Memory
	Embeddings [][]float32
	Centroid  []float32
}

// ClusterMemories groups memories by embedding similarity, the same
// greedy seed-and-absorb approach the example pack's consolidation
// service uses for semantic clustering.
func ClusterMemories(memories []*core.Memory, embeddings [][]float32) []Cluster {
	assigned := make([]bool, len(memories))
	var clusters []Cluster

	for i := range memories {
		if assigned[i] {
			continue
		}
		cluster := Cluster{
			Memories:   []*core.Memory{memories[i]},
			Embeddings: [][]float32{embeddings[i]},
			Centroid:   append([]float32(nil), embeddings[i]...),
		}
		assigned[i] = true

		for j := i + 1; j < len(memories); j++ {
			if assigned[j] {
				continue
			}
			if cosineSimilarity(cluster.Centroid, embeddings[j]) >= ClusterThreshold {
				cluster.Memories = append(cluster.Memories, memories[j])
				cluster.Embeddings = append(cluster.Embeddings, embeddings[j])
				assigned[j] = true
				cluster.Centroid = centroidOf(cluster.Embeddings)
			}
		}
		clusters = append(clusters, cluster)
	}
	return clusters
}

// ConsolidationResult mirrors the shape of a consolidation run summary.
type ConsolidationResult struct {
	ClustersFormed    int
	ClustersAccepted  int
	ClustersRejected  int
	SemanticExtracted int
}

// SemanticExtractor turns an accepted cluster of episodic memories into
// a new consolidated semantic memory; the caller supplies the LLM-backed
// (or rule-based) implementation.
type SemanticExtractor interface {
	Extract(cluster Cluster) (*core.Memory, error)
}

// RunPhase3 runs the recall gate over every candidate cluster and, for
// clusters that pass, hands them to extractor to produce a consolidated
// semantic memory. allEmbeddings is the full embedding population the
// recall gate ranks against (cluster members plus every distractor);
// rejected clusters are left untouched for a future pass once more
// evidence accumulates.
func RunPhase3(clusters []Cluster, allEmbeddings [][]float32, extractor SemanticExtractor) (ConsolidationResult, []*core.Memory) {
	result := ConsolidationResult{ClustersFormed: len(clusters)}
	var extracted []*core.Memory

	for _, cluster := range clusters {
		recall := CheckRecall(cluster.Embeddings, allEmbeddings)
		if !recall.Passed {
			result.ClustersRejected++
			continue
		}
		result.ClustersAccepted++

		if extractor == nil {
			continue
		}
		mem, err := extractor.Extract(cluster)
		if err != nil || mem == nil {
			continue
		}
		extracted = append(extracted, mem)
		result.SemanticExtracted++
	}
	return result, extracted
}

// RuleBasedExtractor is a deterministic SemanticExtractor fallback used
// when no LLM is configured: it takes the first member's summary as the
// cluster's summary and averages confidence, discounted the way the
// example pack's consolidation service discounts auto-extracted beliefs.
type RuleBasedExtractor struct {
	ConfidenceDiscount float64
}

func NewRuleBasedExtractor() RuleBasedExtractor {
	return RuleBasedExtractor{ConfidenceDiscount: 0.8}
}

func (e RuleBasedExtractor) Extract(cluster Cluster) (*core.Memory, error) {
	if len(cluster.Memories) == 0 {
		return nil, nil
	}
	var sourceIDs []string
	var totalConfidence float64
	for _, m := range cluster.Memories {
		sourceIDs = append(sourceIDs, m.ID)
		totalConfidence += m.Confidence
	}
	avgConfidence := totalConfidence / float64(len(cluster.Memories))

	content := core.SemanticContent{
		Knowledge:               cluster.Memories[0].Summary,
		SourceEpisodes:          sourceIDs,
		ConsolidationConfidence: avgConfidence * e.ConfidenceDiscount,
	}

	now := time.Now()
	return &core.Memory{
		MemoryType:      core.MemoryTypeSemantic,
		Content:         content,
		Summary:         cluster.Memories[0].Summary,
		Confidence:      avgConfidence * e.ConfidenceDiscount,
		Importance:      core.ImportanceNormal,
		TransactionTime: now,
		ValidTime:       now,
		LastAccessed:    now,
	}, nil
}
