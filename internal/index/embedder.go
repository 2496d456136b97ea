package index

import (
	"context"
	"hash/fnv"
	"math"
)

// Embedder converts text to vector embeddings.
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}

// HashEmbedder generates deterministic embeddings from a text hash.
// It needs no model or network access, which makes search rankings
// stable and the service self-contained; swap in a real embedder for
// semantically meaningful ranking.
type HashEmbedder struct {
	dimensions int
}

// NewHashEmbedder creates a hash embedder. dimensions <= 0 selects 384.
func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &HashEmbedder{dimensions: dimensions}
}

// Embed creates a deterministic embedding from text.
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))

	// Use the hash as seed for an LCG so equal text always yields the
	// same vector.
	seed := h.Sum64()
	embedding := make([]float32, e.dimensions)
	for i := range embedding {
		seed = seed*6364136223846793005 + 1442695040888963407
		embedding[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}

	return normalize(embedding), nil
}

// Dimensions returns the embedding size.
func (e *HashEmbedder) Dimensions() int {
	return e.dimensions
}

// normalize converts an embedding to a unit vector.
func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}

	norm = float32(math.Sqrt(float64(norm)))
	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = v / norm
	}
	return normalized
}
