package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/medhelp/internal/config"
	"github.com/sandevgo/medhelp/internal/core"
	"github.com/sandevgo/medhelp/pkg/log"
)

// NewProvider creates the hypothesis-generation backend.
func NewProvider(ctx context.Context, cfg *config.LLMConfig) (core.AIProvider, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Msg("starting llm provider")

	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.Model), nil
	case "anthropic":
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.Model), nil
	case "openrouter":
		return NewOpenRouter(cfg.OpenRouterAPIKey, cfg.Model), nil
	case "ollama":
		return NewOllama(cfg.OllamaBaseURL, cfg.OllamaAPIKey, cfg.Model), nil
	case "custom":
		return NewCustomOpenAI(cfg.CustomOpenAIBaseURL, cfg.CustomOpenAIAPIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}

// NewEmbeddingProvider creates the embedding client. Credentials are shared
// with the chat providers; the model comes from the embedding config.
func NewEmbeddingProvider(ctx context.Context, cfg *config.LLMConfig, emb config.EmbeddingConfig) (core.BatchEncoder, error) {
	log.FromCtx(ctx).Info().
		Str("provider", emb.Provider).
		Str("model", emb.Model).
		Msg("starting embedding provider")

	switch emb.Provider {
	case "openai":
		return NewOpenAI(cfg.OpenAIAPIKey, emb.Model), nil
	case "openrouter":
		return NewOpenRouter(cfg.OpenRouterAPIKey, emb.Model), nil
	case "ollama":
		return NewOllama(cfg.OllamaBaseURL, cfg.OllamaAPIKey, emb.Model), nil
	case "custom":
		return NewCustomOpenAI(cfg.CustomOpenAIBaseURL, cfg.CustomOpenAIAPIKey, emb.Model), nil
	case "anthropic":
		return nil, fmt.Errorf("anthropic has no embeddings api")
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", emb.Provider)
	}
}
