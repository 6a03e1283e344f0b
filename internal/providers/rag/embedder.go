package rag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/medhelp/internal/core"
	"github.com/sandevgo/medhelp/pkg/log"
	"github.com/sandevgo/medhelp/pkg/retry"
	"golang.org/x/time/rate"
)

const DefaultBatchSize = 32

// Embedding is a vector tied to the position of its input text.
type Embedding struct {
	Index  int
	Vector []float32
}

type EmbedderConfig struct {
	BatchSize int
	// Timeout bounds one batch call, retries included. Zero means no bound.
	Timeout time.Duration
	// MaxTokens truncates inputs longer than this many tokens. Zero disables it.
	MaxTokens int
	// RequestsPerSecond throttles outgoing batch calls. Zero disables it.
	RequestsPerSecond float64
	Retry             *retry.Config
}

// Embedder is the gateway to the external embedding capability.
// Requests are split into batches; each batch succeeds or fails as a whole.
type Embedder struct {
	encoder   core.BatchEncoder
	batchSize int
	timeout   time.Duration
	maxTokens int
	limiter   *rate.Limiter
	retrier   *retry.Retrier
}

func NewEmbedder(encoder core.BatchEncoder, cfg EmbedderConfig) *Embedder {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Retry == nil {
		cfg.Retry = retry.NewQuickConfig()
	}

	e := &Embedder{
		encoder:   encoder,
		batchSize: cfg.BatchSize,
		timeout:   cfg.Timeout,
		maxTokens: cfg.MaxTokens,
		retrier:   retry.NewRetrier(cfg.Retry),
	}
	if cfg.RequestsPerSecond > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return e
}

// EncodePassages embeds texts in input order.
// Failed batches are left out of the result; the returned error joins one
// *core.EmbeddingBatchError per failed batch and is nil when all succeeded.
func (e *Embedder) EncodePassages(ctx context.Context, texts []string) ([]Embedding, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	logger := log.FromCtx(ctx)
	inputs := e.prepare(ctx, texts)

	out := make([]Embedding, 0, len(inputs))
	var errs []error
	dim := 0

	for batch, start := 0, 0; start < len(inputs); batch, start = batch+1, start+e.batchSize {
		end := min(start+e.batchSize, len(inputs))

		vectors, err := e.embedBatch(ctx, inputs[start:end])
		if err == nil && dim != 0 && len(vectors[0]) != dim {
			err = fmt.Errorf("%w: got %d, want %d", core.ErrDimensionMismatch, len(vectors[0]), dim)
		}
		if err != nil {
			batchErr := &core.EmbeddingBatchError{Batch: batch, Start: start, Size: end - start, Err: err}
			logger.Warn().Err(err).
				Int("batch", batch).
				Int("size", end-start).
				Msg("embedding batch dropped")
			errs = append(errs, batchErr)
			continue
		}

		dim = len(vectors[0])
		for i, v := range vectors {
			out = append(out, Embedding{Index: start + i, Vector: v})
		}
	}

	return out, errors.Join(errs...)
}

// EncodeQuery embeds a single query as a one-element batch.
func (e *Embedder) EncodeQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embedBatch(ctx, e.prepare(ctx, []string{text}))
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	return vectors[0], nil
}

func (e *Embedder) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	vectors, err := retry.DoValue(ctx, e.retrier, func() ([][]float32, error) {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return nil, retry.Permanent(err)
			}
		}
		vectors, err := e.encoder.EmbedBatch(ctx, batch)
		if err != nil && !isTemporary(err) {
			return nil, retry.Permanent(err)
		}
		return vectors, err
	})
	if err != nil {
		return nil, err
	}

	if err := validateBatch(vectors, len(batch)); err != nil {
		return nil, err
	}
	return vectors, nil
}

// isTemporary treats errors as retryable unless they say otherwise.
func isTemporary(err error) bool {
	var t interface{ Temporary() bool }
	if errors.As(err, &t) {
		return t.Temporary()
	}
	return true
}

func validateBatch(vectors [][]float32, want int) error {
	if len(vectors) != want {
		return fmt.Errorf("embedding response has %d vectors for %d inputs", len(vectors), want)
	}
	dim := len(vectors[0])
	if dim == 0 {
		return errors.New("embedding response has empty vectors")
	}
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: vector %d has %d values, first has %d", core.ErrDimensionMismatch, i, len(v), dim)
		}
	}
	return nil
}

func (e *Embedder) prepare(ctx context.Context, texts []string) []string {
	if e.maxTokens <= 0 {
		return texts
	}

	enc, err := getTokenizer()
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("tokenizer unavailable, skipping token guard")
		return texts
	}

	out := make([]string, len(texts))
	for i, t := range texts {
		var cut bool
		out[i], cut = truncateTokens(enc, t, e.maxTokens)
		if cut {
			log.FromCtx(ctx).Debug().Int("input", i).Int("max_tokens", e.maxTokens).Msg("embedding input truncated")
		}
	}
	return out
}
