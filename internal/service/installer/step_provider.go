package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ChoiceStep lets the user pick one option and stores it under envKey.
type ChoiceStep struct {
	title   string
	envKey  string
	choices []string
	labels  []string
	cursor  int
	skip    func(state *InstallState) bool
}

func NewProviderStep() Step {
	return &ChoiceStep{
		title:   "Select the provider that runs the triage model:",
		envKey:  keyLLMProvider,
		choices: chatProviders,
		labels:  providerLabels(chatProviders),
	}
}

// NewEmbeddingProviderStep is skipped when the chat provider can embed too.
func NewEmbeddingProviderStep() Step {
	return &ChoiceStep{
		title:   "Anthropic has no embeddings API. Select the provider for search embeddings:",
		envKey:  keyEmbeddingProvider,
		choices: embeddingProviders,
		labels:  providerLabels(embeddingProviders),
		skip: func(state *InstallState) bool {
			chat := state.EnvVars[keyLLMProvider]
			if chat != "anthropic" {
				state.EnvVars[keyEmbeddingProvider] = chat
				return true
			}
			return false
		},
	}
}

func NewChannelStep() Step {
	return &ChoiceStep{
		title:   "Where will patients talk to MedHelp?",
		envKey:  keyEnableTelegram,
		choices: []string{"false", "true"},
		labels:  []string{"Terminal only (medhelp chat)", "Telegram bot and terminal"},
	}
}

func providerLabels(ids []string) []string {
	labels := make([]string, len(ids))
	for i, id := range ids {
		labels[i] = providers[id].name
	}
	return labels
}

func (s *ChoiceStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *ChoiceStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.skip != nil && s.skip(state) {
		return nil, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.choices)-1 {
				s.cursor++
			}
		case "enter":
			state.EnvVars[s.envKey] = s.choices[s.cursor]
			return nil, nil
		}
	}
	return s, nil
}

func (s *ChoiceStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString(s.title + "\n\n")
	for i, label := range s.labels {
		if s.cursor == i {
			b.WriteString(selStyle.Render(fmt.Sprintf("❯ %s", label)) + "\n")
		} else {
			b.WriteString(itemStyle.Render(fmt.Sprintf("  %s", label)) + "\n")
		}
	}
	b.WriteString("\n(press ctrl+c to quit)\n")
	return b.String()
}
