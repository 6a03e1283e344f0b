package index

import "fmt"

const cosineEpsilon = 1e-10

// Cosine is the portable backend: explicit cosine similarity per row.
type Cosine struct {
	vectors [][]float32
	norms   []float64
	dim     int
}

func NewCosine(vectors [][]float32, dim int) SimilaritySearch {
	norms := make([]float64, len(vectors))
	for i, v := range vectors {
		norms[i] = norm(v)
	}
	return &Cosine{vectors: vectors, norms: norms, dim: dim}
}

func (c *Cosine) Len() int { return len(c.vectors) }

func (c *Cosine) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != c.dim {
		return nil, fmt.Errorf("query has %d values, index has %d", len(query), c.dim)
	}

	qn := norm(query)
	scores := make([]float32, len(c.vectors))
	for i, v := range c.vectors {
		var dot float64
		for j := range v {
			dot += float64(v[j]) * float64(query[j])
		}
		scores[i] = float32(dot / ((c.norms[i] + cosineEpsilon) * (qn + cosineEpsilon)))
	}
	return rankTop(scores, k), nil
}
