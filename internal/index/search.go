package index

import (
	"math"
	"sort"
)

// Hit is a position in the index and its cosine similarity to the query.
type Hit struct {
	ID    int
	Score float32
}

// SimilaritySearch ranks indexed vectors against a query.
// Implementations return at most k hits ordered by score descending;
// equal scores keep insertion order.
type SimilaritySearch interface {
	Search(query []float32, k int) ([]Hit, error)
	Len() int
}

// Builder creates a search structure over the full vector collection.
type Builder func(vectors [][]float32, dim int) SimilaritySearch

func rankTop(scores []float32, k int) []Hit {
	if k <= 0 || len(scores) == 0 {
		return nil
	}

	hits := make([]Hit, len(scores))
	for i, s := range scores {
		hits[i] = Hit{ID: i, Score: s}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
