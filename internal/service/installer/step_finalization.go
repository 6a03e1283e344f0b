package installer

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type FinalizationStep struct{}

func NewFinalizationStep() Step {
	return &FinalizationStep{}
}

func (s *FinalizationStep) Init() tea.Cmd {
	return nil
}

func (s *FinalizationStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		return nil, nil
	}
	return s, nil
}

func (s *FinalizationStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString("Review your configuration:\n\n")
	b.WriteString(summary(state))
	b.WriteString("\n(press enter to save, ctrl+c to abort)\n")
	return b.String()
}

func summary(state *InstallState) string {
	keys := make([]string, 0, len(state.EnvVars))
	for k := range state.EnvVars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		v := state.EnvVars[k]
		switch {
		case v == "":
			v = "(not set)"
		case isSecret(k):
			v = "********"
		}
		b.WriteString(itemStyle.Render(fmt.Sprintf("• %s: %s", k, v)) + "\n")
	}
	return b.String()
}

func isSecret(key string) bool {
	return strings.HasSuffix(key, "_API_KEY") || key == keyTelegramToken
}
