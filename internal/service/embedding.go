package service

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"math"
	"strings"
)

// EmbeddingClient is the embedding capability. Providers are
// interchangeable as long as they share output dimensionality.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// HashingEmbedder is a deterministic local embedding provider: each word
// hashes to a dimension bucket. It has none of the semantic quality of a
// learned model but keeps retrieval (and the whole pipeline) functional
// when no external provider is configured.
type HashingEmbedder struct {
	dim int
}

// DefaultHashingDimensions matches the passages embedding column, so
// the local embedder can stand in for the remote one without a schema
// change.
const DefaultHashingDimensions = 1536

// NewHashingEmbedder creates a HashingEmbedder of the given
// dimensionality.
func NewHashingEmbedder(dim int) *HashingEmbedder {
	if dim <= 0 {
		dim = DefaultHashingDimensions
	}
	return &HashingEmbedder{dim: dim}
}

// Dimension returns the embedder's output dimensionality.
func (e *HashingEmbedder) Dimension() int {
	return e.dim
}

// GenerateEmbedding hashes each lowercased word into a bucket and
// L2-normalizes the counts. Never fails.
func (e *HashingEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dim)

	for _, word := range strings.Fields(strings.ToLower(text)) {
		sum := md5.Sum([]byte(word))
		idx := binary.BigEndian.Uint32(sum[:4]) % uint32(e.dim)
		vec[idx]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec, nil
}
