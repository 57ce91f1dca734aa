// Package index provides an in-memory nearest-neighbor index over
// passage embeddings. It is the hot read path of the pipeline: many
// concurrent queries against occasional writes.
package index

import (
	"math"
	"sort"
	"sync"

	"github.com/pledgewatch/pledgewatch/internal/domain"
	"gonum.org/v1/gonum/floats"
)

// Hit is a single query result
type Hit struct {
	PassageID string
	Score     float32
}

type entry struct {
	id     string
	vector []float32 // L2-normalized, never mutated after insert
	seq    int       // insertion order, used for stable tie-breaking
}

// Index stores L2-normalized vectors keyed by passage ID and answers
// cosine-similarity queries. Dimensionality is fixed at creation.
//
// Writers replace whole entry vectors under the write lock, so readers
// never observe a partially written vector.
type Index struct {
	mu      sync.RWMutex
	dim     int
	entries map[string]*entry
	nextSeq int
}

// New creates an Index for vectors of the given dimensionality.
func New(dim int) *Index {
	return &Index{
		dim:     dim,
		entries: make(map[string]*entry),
	}
}

// Dimension returns the fixed vector dimensionality.
func (ix *Index) Dimension() int {
	return ix.dim
}

// Len returns the number of indexed passages.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Upsert inserts or replaces the vector for a passage. The vector is
// copied and normalized; the caller's slice is never retained. A vector
// of the wrong dimensionality is rejected, not coerced.
func (ix *Index) Upsert(passageID string, vector []float32) error {
	if len(vector) != ix.dim {
		return domain.ErrDimensionMismatch
	}

	normalized := normalize(vector)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if existing, ok := ix.entries[passageID]; ok {
		// Replacing a vector keeps the original insertion position.
		existing.vector = normalized
		return nil
	}

	ix.entries[passageID] = &entry{
		id:     passageID,
		vector: normalized,
		seq:    ix.nextSeq,
	}
	ix.nextSeq++
	return nil
}

// Remove deletes a passage from the index. Removing an unknown ID is a no-op.
func (ix *Index) Remove(passageID string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.entries, passageID)
}

// Query returns up to k passages ordered by cosine similarity descending,
// ties broken by insertion order. Querying an empty index returns an
// empty result, never an error.
func (ix *Index) Query(vector []float32, k int) ([]Hit, error) {
	if len(vector) != ix.dim {
		return nil, domain.ErrDimensionMismatch
	}
	if k <= 0 {
		return []Hit{}, nil
	}

	query := normalize(vector)

	type scored struct {
		hit Hit
		seq int
	}

	ix.mu.RLock()
	candidates := make([]scored, 0, len(ix.entries))
	for _, e := range ix.entries {
		candidates = append(candidates, scored{
			hit: Hit{PassageID: e.id, Score: dot(query, e.vector)},
			seq: e.seq,
		})
	}
	ix.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].hit.Score != candidates[j].hit.Score {
			return candidates[i].hit.Score > candidates[j].hit.Score
		}
		return candidates[i].seq < candidates[j].seq
	})

	if k > len(candidates) {
		k = len(candidates)
	}

	hits := make([]Hit, k)
	for i := 0; i < k; i++ {
		hits[i] = candidates[i].hit
	}
	return hits, nil
}

// normalize returns an L2-normalized copy of the vector. A zero vector
// is returned as an all-zero copy.
func normalize(vector []float32) []float32 {
	out := make([]float32, len(vector))
	norm := float32(math.Sqrt(dot64(vector, vector)))
	if norm == 0 {
		copy(out, vector)
		return out
	}
	for i, v := range vector {
		out[i] = v / norm
	}
	return out
}

// dot computes the inner product of two equal-length vectors. Both are
// normalized, so this is their cosine similarity.
func dot(a, b []float32) float32 {
	return float32(dot64(a, b))
}

func dot64(a, b []float32) float64 {
	af := make([]float64, len(a))
	bf := make([]float64, len(b))
	for i := range a {
		af[i] = float64(a[i])
		bf[i] = float64(b[i])
	}
	return floats.Dot(af, bf)
}
