package knowledge

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sandevgo/medhelp/internal/core"
	"github.com/sandevgo/medhelp/internal/providers/rag"
	"github.com/sandevgo/medhelp/internal/providers/tools"
	"github.com/sandevgo/medhelp/pkg/log"
)

const defaultCategory = "general"

type PassageEncoder interface {
	EncodePassages(ctx context.Context, texts []string) ([]rag.Embedding, error)
}

type Store interface {
	Append(records []core.IndexRecord) error
	Save(ctx context.Context) error
}

type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (*tools.Page, error)
}

// Pipeline ingests one source at a time: chunk, embed, append, persist.
type Pipeline struct {
	mu      sync.Mutex
	store   Store
	encoder PassageEncoder
	fetcher PageFetcher
	chunker rag.ChunkerConfig
	now     func() time.Time
}

func NewPipeline(store Store, encoder PassageEncoder, fetcher PageFetcher, chunker rag.ChunkerConfig) *Pipeline {
	return &Pipeline{
		store:   store,
		encoder: encoder,
		fetcher: fetcher,
		chunker: chunker,
		now:     time.Now,
	}
}

// Ingest returns the number of chunks added to the index.
// A snapshot failure after a successful append returns the count together
// with a *core.PersistenceError; the in-memory index keeps the records.
func (p *Pipeline) Ingest(ctx context.Context, src core.Source) (int, error) {
	logger := log.FromCtx(ctx).With().Str("source", src.URL).Logger()

	chunks := rag.ChunkTexts(src.Text, p.chunker)
	if len(chunks) == 0 {
		return 0, core.ErrEmptyContent
	}

	embeddings, embErr := p.encoder.EncodePassages(ctx, chunks)
	if len(embeddings) == 0 {
		if embErr != nil {
			return 0, fmt.Errorf("%w: %w", core.ErrEmptyContent, embErr)
		}
		return 0, core.ErrEmptyContent
	}
	if embErr != nil {
		logger.Warn().Err(embErr).
			Int("chunks", len(chunks)).
			Int("embedded", len(embeddings)).
			Msg("partial embedding failure, ingesting surviving chunks")
	}

	title := strings.TrimSpace(src.Title)
	if title == "" {
		title = src.URL
	}
	category := strings.TrimSpace(src.Category)
	if category == "" {
		category = defaultCategory
	}

	base := p.now().UTC()
	records := make([]core.IndexRecord, len(embeddings))
	for i, e := range embeddings {
		records[i] = core.IndexRecord{
			Vector:     e.Vector,
			Title:      title,
			SourceURL:  src.URL,
			Text:       chunks[e.Index],
			Category:   category,
			IngestedAt: base.Add(time.Duration(i)),
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.store.Append(records); err != nil {
		return 0, fmt.Errorf("append to index: %w", err)
	}

	if err := p.store.Save(ctx); err != nil {
		logger.Error().Err(err).Int("chunks", len(records)).Msg("index snapshot not written")
		return len(records), err
	}

	logger.Info().Str("title", title).Int("chunks", len(records)).Msg("source ingested")
	return len(records), nil
}

// IngestURL fetches a page and ingests its text. An empty title falls back
// to the page title, then to the URL.
func (p *Pipeline) IngestURL(ctx context.Context, url, title, category string) (int, error) {
	if p.fetcher == nil {
		return 0, fmt.Errorf("ingest %s: no fetcher configured", url)
	}

	page, err := p.fetcher.FetchPage(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", url, err)
	}

	if title == "" {
		title = page.Title
	}

	return p.Ingest(ctx, core.Source{
		Text:     page.Text,
		Title:    title,
		URL:      url,
		Category: category,
	})
}
