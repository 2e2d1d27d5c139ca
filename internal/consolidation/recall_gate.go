// Package consolidation implements the recall-gate stress check (C9)
// that guards automatic memory clustering, grounded on the phase-3
// recall gate in the original implementation's cortex-consolidation
// crate and on the clustering/health-stats style of the example pack's
// consolidation service.
package consolidation

import "math"

// TopK is the number of nearest neighbours pulled from the full
// embedding population when checking whether a cluster recalls itself.
const TopK = 10

// MatchCosineThreshold is the similarity above which a neighbour counts
// as matching a cluster member.
const MatchCosineThreshold = 0.99

// PassScore is the minimum recall score a cluster must reach to pass.
const PassScore = 0.3

// RecallResult is the outcome of checking one cluster against the full
// embedding population.
type RecallResult struct {
	Score  float64
	Passed bool
}

type scored struct {
	emb   []float32
	score float64
}

// CheckRecall computes the centroid of clusterEmbeddings, finds the
// top-K most similar vectors in allEmbeddings, and scores the fraction
// of cluster members that appear among them (cosine >= 0.99 counts as
// "the same vector"). An empty cluster always fails.
func CheckRecall(clusterEmbeddings, allEmbeddings [][]float32) RecallResult {
	if len(clusterEmbeddings) == 0 {
		return RecallResult{Score: 0, Passed: false}
	}

	centroid := centroidOf(clusterEmbeddings)

	ranked := make([]scored, 0, len(allEmbeddings))
	for _, e := range allEmbeddings {
		ranked = append(ranked, scored{emb: e, score: cosineSimilarity(centroid, e)})
	}
	sortByScoreDesc(ranked)

	k := TopK
	if k > len(ranked) {
		k = len(ranked)
	}
	topK := ranked[:k]

	matches := 0
	for _, member := range clusterEmbeddings {
		for _, candidate := range topK {
			if cosineSimilarity(member, candidate.emb) >= MatchCosineThreshold {
				matches++
				break
			}
		}
	}

	score := float64(matches) / float64(len(clusterEmbeddings))
	return RecallResult{Score: score, Passed: score >= PassScore}
}

func sortByScoreDesc(s []scored) {
	// Simple insertion sort: cluster sizes and top-K are small (tens of
	// elements), so O(n^2) is not worth a generic sort import here.
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].score > s[j-1].score; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func centroidOf(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	dims := len(vectors[0])
	centroid := make([]float32, dims)
	for _, v := range vectors {
		for i := 0; i < dims && i < len(v); i++ {
			centroid[i] += v[i]
		}
	}
	n := float32(len(vectors))
	for i := range centroid {
		centroid[i] /= n
	}
	return centroid
}

// cosineSimilarity returns 0 for a zero-magnitude vector on either side
// rather than NaN; this is the documented "centroid near zero" edge
// case for contradictory clusters (see spec.md §9).
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
