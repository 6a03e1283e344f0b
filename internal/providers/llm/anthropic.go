package llm

import (
	"context"
	"strings"

	"github.com/sandevgo/medhelp/internal/core"
)

const jsonModeInstruction = "Respond with a single JSON object and nothing else."

type Anthropic struct {
	baseProvider
}

func NewAnthropic(apiKey, model string) *Anthropic {
	return &Anthropic{
		baseProvider: newBaseProvider("https://api.anthropic.com", apiKey, model),
	}
}

// Chat maps system messages to the top-level system field. Anthropic has no
// response_format, so JSON mode is requested in the system prompt instead.
func (a *Anthropic) Chat(ctx context.Context, history []core.Message, opts core.ChatOptions) (core.Message, error) {
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	var system []string
	var messages []msg
	for _, m := range history {
		if m.Role == core.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		messages = append(messages, msg{Role: m.Role, Content: m.Content})
	}
	if opts.JSONMode {
		system = append(system, jsonModeInstruction)
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	payload := map[string]any{
		"model":      a.model,
		"max_tokens": maxTokens,
		"messages":   messages,
	}
	if len(system) > 0 {
		payload["system"] = strings.Join(system, "\n\n")
	}
	if opts.Temperature > 0 {
		payload["temperature"] = opts.Temperature
	}

	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": "2023-06-01",
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := a.doJSON(ctx, "/v1/messages", payload, headers, &result); err != nil {
		return core.Message{}, err
	}

	var text strings.Builder
	for _, c := range result.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}
	return core.Message{Role: core.RoleAssistant, Content: text.String()}, nil
}
