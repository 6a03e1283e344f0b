package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/medhelp/pkg/log"
)

// LLMConfig selects the hypothesis-generation backend.
type LLMConfig struct {
	Provider    string  `env:"MEDHELP_LLM_PROVIDER" envDefault:"openai"`
	Model       string  `env:"MEDHELP_LLM_MODEL" envDefault:"gpt-4o"`
	Temperature float64 `env:"MEDHELP_LLM_TEMPERATURE" envDefault:"0.3"`

	OpenAIAPIKey        string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey     string `env:"ANTHROPIC_API_KEY"`
	OpenRouterAPIKey    string `env:"OPENROUTER_API_KEY"`
	OllamaBaseURL       string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	OllamaAPIKey        string `env:"OLLAMA_API_KEY"`
	CustomOpenAIBaseURL string `env:"CUSTOM_OPENAI_BASE_URL"`
	CustomOpenAIAPIKey  string `env:"CUSTOM_OPENAI_API_KEY"`
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse LLM config")
	}
	return c
}
