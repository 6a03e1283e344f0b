package installer

import (
	"fmt"
	"sort"
	"strings"
)

const (
	keyLLMProvider       = "MEDHELP_LLM_PROVIDER"
	keyLLMModel          = "MEDHELP_LLM_MODEL"
	keyEmbeddingProvider = "MEDHELP_EMBEDDING_PROVIDER"
	keyEmbeddingModel    = "MEDHELP_EMBEDDING_MODEL"
	keyEnableTelegram    = "MEDHELP_ENABLE_TELEGRAM"
	keyTelegramToken     = "TELEGRAM_TOKEN"
	keyTelegramAllowed   = "TELEGRAM_ALLOWED_IDS"
	keyOllamaBaseURL     = "OLLAMA_BASE_URL"
	keyCustomBaseURL     = "CUSTOM_OPENAI_BASE_URL"
)

type InstallState struct {
	EnvVars map[string]string
}

func NewInstallState() *InstallState {
	return &InstallState{
		EnvVars: make(map[string]string),
	}
}

// Render returns sorted KEY=value lines; empty values are skipped.
func (s *InstallState) Render() string {
	keys := make([]string, 0, len(s.EnvVars))
	for k, v := range s.EnvVars {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s=%s\n", k, quote(s.EnvVars[k]))
	}
	return sb.String()
}

func quote(v string) string {
	if strings.ContainsAny(v, " #\"'") {
		return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return v
}

type providerInfo struct {
	name           string
	apiKeyEnv      string
	keyPlaceholder string
	defaultModel   string
	defaultEmbed   string
	keyOptional    bool
}

var providers = map[string]providerInfo{
	"openai": {
		name: "OpenAI", apiKeyEnv: "OPENAI_API_KEY", keyPlaceholder: "sk-...",
		defaultModel: "gpt-4o", defaultEmbed: "text-embedding-3-small",
	},
	"anthropic": {
		name: "Anthropic", apiKeyEnv: "ANTHROPIC_API_KEY", keyPlaceholder: "sk-ant-...",
		defaultModel: "claude-3-5-sonnet-latest",
	},
	"openrouter": {
		name: "OpenRouter", apiKeyEnv: "OPENROUTER_API_KEY", keyPlaceholder: "sk-or-v1-...",
		defaultModel: "openai/gpt-4o", defaultEmbed: "openai/text-embedding-3-small",
	},
	"ollama": {
		name: "Ollama", apiKeyEnv: "OLLAMA_API_KEY", keyPlaceholder: "optional, press enter to skip",
		defaultModel: "llama3.1", defaultEmbed: "nomic-embed-text", keyOptional: true,
	},
	"custom": {
		name: "Custom (OpenAI compatible)", apiKeyEnv: "CUSTOM_OPENAI_API_KEY", keyPlaceholder: "optional, press enter to skip",
		defaultModel: "gpt-4o", defaultEmbed: "text-embedding-3-small", keyOptional: true,
	},
}

var chatProviders = []string{"openai", "anthropic", "openrouter", "ollama", "custom"}

// embeddingProviders excludes anthropic, which has no embeddings endpoint.
var embeddingProviders = []string{"openai", "openrouter", "ollama", "custom"}
