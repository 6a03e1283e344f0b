package llm

import "github.com/sandevgo/medhelp/internal/config"

func testLLMConfig() *config.LLMConfig {
	return &config.LLMConfig{
		Provider:      "openai",
		Model:         "gpt-4o",
		OpenAIAPIKey:  "sk-test",
		OllamaBaseURL: "http://localhost:11434",
	}
}

func embeddingConfig(provider string) config.EmbeddingConfig {
	return config.EmbeddingConfig{Provider: provider, Model: "text-embedding-3-small"}
}
