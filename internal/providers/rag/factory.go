package rag

import (
	"github.com/sandevgo/medhelp/internal/config"
	"github.com/sandevgo/medhelp/internal/core"
)

// NewEmbedderFromConfig builds the gateway around an embedding client.
func NewEmbedderFromConfig(cfg *config.RAGConfig, encoder core.BatchEncoder) *Embedder {
	return NewEmbedder(encoder, EmbedderConfig{
		BatchSize:         cfg.Embedding.BatchSize,
		Timeout:           cfg.Embedding.Timeout,
		MaxTokens:         cfg.Embedding.MaxTokens,
		RequestsPerSecond: cfg.Embedding.RPS,
	})
}

func ChunkerConfigFrom(cfg *config.RAGConfig) ChunkerConfig {
	return ChunkerConfig{
		Size:    cfg.ChunkSize,
		Overlap: cfg.ChunkOverlap,
	}
}
