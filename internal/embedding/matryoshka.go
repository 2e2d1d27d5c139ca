package embedding

import (
	"math"

	"cortex/internal/core"
)

// SearchDimsSmall and SearchDimsMedium are the standard truncated
// dimensions used for fast candidate retrieval and balanced
// speed/quality search, ported from the original implementation's
// matryoshka constants.
const (
	SearchDimsSmall  = 256
	SearchDimsMedium = 384
)

// Truncate reduces a Matryoshka-trained embedding to targetDims by
// taking its prefix and re-normalizing to unit length. Matryoshka
// training concentrates the most important signal in the leading
// dimensions, so prefix truncation (rather than projection) preserves
// relative similarity ordering.
func Truncate(embedding []float32, targetDims int) ([]float32, error) {
	if targetDims > len(embedding) {
		return nil, core.NewDimensionMismatchError(targetDims, len(embedding))
	}
	truncated := make([]float32, targetDims)
	copy(truncated, embedding[:targetDims])

	var sumSquares float64
	for _, v := range truncated {
		sumSquares += float64(v) * float64(v)
	}
	norm := float32(math.Sqrt(sumSquares))
	if norm > 1e-12 {
		for i := range truncated {
			truncated[i] /= norm
		}
	}
	return truncated, nil
}

// ValidateDimensions returns a *core.EmbeddingError if embedding's
// length does not match expected.
func ValidateDimensions(embedding []float32, expected int) error {
	if len(embedding) != expected {
		return core.NewDimensionMismatchError(expected, len(embedding))
	}
	return nil
}

// CosineSimilarity assumes both vectors are already L2-normalized and
// returns their dot product over the shared prefix length.
func CosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
