package installer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// InputStep asks for one value. prepare runs on entry; returning false skips
// the step. An empty answer falls back to fallback when it is set.
type InputStep struct {
	input    textinput.Model
	title    string
	envKey   string
	fallback string
	hint     string
	optional bool
	secret   bool
	ready    bool
	prepare  func(s *InputStep, state *InstallState) bool
}

func newInputStep(secret bool, prepare func(s *InputStep, state *InstallState) bool) *InputStep {
	return &InputStep{secret: secret, prepare: prepare}
}

func (s *InputStep) setup() {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 50
	ti.Placeholder = s.hint
	if s.fallback != "" {
		ti.Placeholder = s.fallback
	}
	if s.secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	s.input = ti
	s.ready = true
}

func (s *InputStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *InputStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if !s.ready {
		if !s.prepare(s, state) {
			return nil, nil
		}
		s.setup()
		return s, textinput.Blink
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		val := strings.TrimSpace(s.input.Value())
		if val == "" {
			val = s.fallback
		}
		if val == "" && !s.optional {
			return s, cmd
		}
		state.EnvVars[s.envKey] = val
		return nil, nil
	}
	return s, cmd
}

func (s *InputStep) View(state *InstallState) string {
	if !s.ready {
		return "Loading...\n"
	}
	suffix := ""
	if s.optional {
		suffix = " (optional)"
	}
	return fmt.Sprintf("%s%s:\n\n%s\n\n(press enter to confirm)\n", s.title, suffix, s.input.View())
}

// NewBaseURLStep asks for the server URL of self-hosted providers.
func NewBaseURLStep() Step {
	return newInputStep(false, func(s *InputStep, state *InstallState) bool {
		switch {
		case usesProvider(state, "ollama") && state.EnvVars[keyOllamaBaseURL] == "":
			s.title, s.envKey, s.fallback = "Ollama base URL", keyOllamaBaseURL, "http://localhost:11434"
		case usesProvider(state, "custom") && state.EnvVars[keyCustomBaseURL] == "":
			s.title, s.envKey, s.hint = "Custom OpenAI-compatible base URL", keyCustomBaseURL, "https://api.example.com"
		default:
			return false
		}
		return true
	})
}

// NewAPIKeyStep asks for the key of the provider stored under providerKey,
// unless it was collected already.
func NewAPIKeyStep(providerKey string) Step {
	return newInputStep(true, func(s *InputStep, state *InstallState) bool {
		info, ok := providers[state.EnvVars[providerKey]]
		if !ok {
			return false
		}
		if _, seen := state.EnvVars[info.apiKeyEnv]; seen {
			return false
		}
		s.title = info.name + " API key"
		s.envKey = info.apiKeyEnv
		s.hint = info.keyPlaceholder
		s.optional = info.keyOptional
		return true
	})
}

func NewModelStep() Step {
	return newInputStep(false, func(s *InputStep, state *InstallState) bool {
		info := providers[state.EnvVars[keyLLMProvider]]
		s.title, s.envKey, s.fallback = "Triage model", keyLLMModel, info.defaultModel
		return true
	})
}

func NewEmbeddingModelStep() Step {
	return newInputStep(false, func(s *InputStep, state *InstallState) bool {
		info := providers[state.EnvVars[keyEmbeddingProvider]]
		s.title, s.envKey, s.fallback = "Embedding model", keyEmbeddingModel, info.defaultEmbed
		return true
	})
}

func NewTelegramTokenStep() Step {
	return newInputStep(true, func(s *InputStep, state *InstallState) bool {
		if state.EnvVars[keyEnableTelegram] != "true" {
			return false
		}
		s.title, s.envKey, s.hint = "Telegram bot token", keyTelegramToken, "123456789:ABCDEF..."
		return true
	})
}

func NewTelegramAllowedStep() Step {
	return newInputStep(false, func(s *InputStep, state *InstallState) bool {
		if state.EnvVars[keyEnableTelegram] != "true" {
			return false
		}
		s.title, s.envKey, s.optional = "Telegram user ids allowed to chat, comma separated; empty allows everyone", keyTelegramAllowed, true
		return true
	})
}

func usesProvider(state *InstallState, id string) bool {
	return state.EnvVars[keyLLMProvider] == id || state.EnvVars[keyEmbeddingProvider] == id
}
