package knowledge

import (
	"context"

	"github.com/sandevgo/medhelp/internal/core"
	"github.com/sandevgo/medhelp/pkg/log"
)

const DefaultSimilarityThreshold float32 = 0.25

type QueryEncoder interface {
	EncodeQuery(ctx context.Context, text string) ([]float32, error)
}

type Searcher interface {
	Len() int
	Search(query []float32, topK int, threshold float32) ([]core.ScoredRecord, error)
}

// Retriever turns a free-text query into ranked evidence.
// It never fails: any problem yields no evidence.
type Retriever struct {
	index     Searcher
	encoder   QueryEncoder
	threshold float32
}

func NewRetriever(index Searcher, encoder QueryEncoder, threshold float32) *Retriever {
	return &Retriever{
		index:     index,
		encoder:   encoder,
		threshold: threshold,
	}
}

func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) []core.ScoredRecord {
	if r.index.Len() == 0 || topK <= 0 {
		return nil
	}
	logger := log.FromCtx(ctx)

	vec, err := r.encoder.EncodeQuery(ctx, query)
	if err != nil {
		logger.Warn().Err(err).Msg("retrieval skipped: query embedding failed")
		return nil
	}

	results, err := r.index.Search(vec, topK, r.threshold)
	if err != nil {
		logger.Warn().Err(err).Msg("retrieval skipped: search failed")
		return nil
	}

	logger.Debug().Int("hits", len(results)).Int("top_k", topK).Msg("retrieved evidence")
	return results
}
