package consolidation

import "testing"

func TestCheckRecallEmptyClusterFails(t *testing.T) {
	result := CheckRecall(nil, nil)
	if result.Passed || result.Score != 0 {
		t.Fatalf("expected empty cluster to fail with score 0, got %+v", result)
	}
}

func TestCheckRecallAcceptsGoodCluster(t *testing.T) {
	dims := 64
	base := make([]float32, dims)
	for i := 0; i < 8; i++ {
		base[i] = 0.8 - float32(i)*0.1
	}
	for i := 8; i < dims; i++ {
		base[i] = 0.01
	}

	similar := func(seed int) []float32 {
		out := make([]float32, dims)
		for i, v := range base {
			noise := float32((seed*31+i*17)%100)/10000 - 0.005
			out[i] = v + noise
		}
		return out
	}

	clusterEmbs := [][]float32{base, similar(1), similar(2)}

	allEmbs := append([][]float32{}, clusterEmbs...)
	for i := 0; i < 20; i++ {
		distractor := make([]float32, dims)
		for j := range distractor {
			v := float32(((i+999)*7919+j*104729)%10000) / 10000
			distractor[j] = v*2 - 1
		}
		allEmbs = append(allEmbs, distractor)
	}

	result := CheckRecall(clusterEmbs, allEmbs)
	if !result.Passed {
		t.Fatalf("expected coherent cluster to pass recall gate, got score=%v passed=%v", result.Score, result.Passed)
	}
}

func TestCheckRecallRejectsScatteredClusterDrownedByDistractors(t *testing.T) {
	dims := 64
	emb1 := make([]float32, dims)
	emb1[0] = 1.0
	emb2 := make([]float32, dims)
	emb2[dims/2] = 1.0
	emb3 := make([]float32, dims)
	emb3[dims-1] = 1.0
	clusterEmbs := [][]float32{emb1, emb2, emb3}

	centroid := make([]float32, dims)
	for i := range centroid {
		centroid[i] = (emb1[i] + emb2[i] + emb3[i]) / 3
	}

	allEmbs := append([][]float32{}, clusterEmbs...)
	for i := 0; i < 50; i++ {
		distractor := make([]float32, dims)
		for j, v := range centroid {
			noise := float32((i*31+j*17)%200)/10000 - 0.01
			distractor[j] = v + noise
		}
		allEmbs = append(allEmbs, distractor)
	}

	result := CheckRecall(clusterEmbs, allEmbs)
	if result.Passed && result.Score >= 0.5 {
		t.Fatalf("expected scattered cluster drowned by centroid-neighbors to fail or score low, got score=%v passed=%v", result.Score, result.Passed)
	}
}
