package index

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// FlatIP is the accelerated backend: rows are L2-normalised into one
// contiguous matrix and scored with a single BLAS sgemv per query.
type FlatIP struct {
	matrix blas32.General
}

func NewFlatIP(vectors [][]float32, dim int) SimilaritySearch {
	data := make([]float32, len(vectors)*dim)
	for i, v := range vectors {
		row := data[i*dim : (i+1)*dim]
		copy(row, v)
		normalize(row)
	}

	return &FlatIP{
		matrix: blas32.General{
			Rows:   len(vectors),
			Cols:   dim,
			Stride: dim,
			Data:   data,
		},
	}
}

func (f *FlatIP) Len() int { return f.matrix.Rows }

func (f *FlatIP) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != f.matrix.Cols {
		return nil, fmt.Errorf("query has %d values, index has %d", len(query), f.matrix.Cols)
	}
	if f.matrix.Rows == 0 {
		return nil, nil
	}

	q := append([]float32(nil), query...)
	normalize(q)

	scores := make([]float32, f.matrix.Rows)
	blas32.Gemv(blas.NoTrans, 1,
		f.matrix,
		blas32.Vector{N: len(q), Inc: 1, Data: q},
		0,
		blas32.Vector{N: len(scores), Inc: 1, Data: scores},
	)
	return rankTop(scores, k), nil
}

func normalize(v []float32) {
	n := norm(v)
	if n == 0 {
		return
	}
	inv := float32(1 / n)
	for i := range v {
		v[i] *= inv
	}
}
