package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/medhelp/pkg/log"
)

type EmbeddingConfig struct {
	Provider  string        `env:"MEDHELP_EMBEDDING_PROVIDER" envDefault:"openai"`
	Model     string        `env:"MEDHELP_EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	BatchSize int           `env:"MEDHELP_EMBEDDING_BATCH_SIZE" envDefault:"32"`
	Timeout   time.Duration `env:"MEDHELP_EMBEDDING_TIMEOUT" envDefault:"60s"`
	// MaxTokens truncates long inputs before they are sent. Zero disables the guard.
	MaxTokens int     `env:"MEDHELP_EMBEDDING_MAX_TOKENS" envDefault:"8000"`
	RPS       float64 `env:"MEDHELP_EMBEDDING_RPS" envDefault:"0"`
}

type RAGConfig struct {
	ChunkSize           int     `env:"MEDHELP_CHUNK_SIZE" envDefault:"800"`
	ChunkOverlap        int     `env:"MEDHELP_CHUNK_OVERLAP" envDefault:"100"`
	SimilarityThreshold float32 `env:"MEDHELP_SIMILARITY_THRESHOLD" envDefault:"0.25"`
	Accelerated         bool    `env:"MEDHELP_INDEX_ACCELERATED" envDefault:"true"`

	Embedding EmbeddingConfig
}

func NewRAGConfig(ctx context.Context) *RAGConfig {
	cfg := &RAGConfig{}
	if err := env.Parse(cfg); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse RAG config")
	}
	return cfg
}
