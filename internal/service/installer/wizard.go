package installer

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	itemStyle  = lipgloss.NewStyle().PaddingLeft(2)
	selStyle   = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("5"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Step is one screen of the setup wizard. Update returns nil once the step
// is done.
type Step interface {
	Init() tea.Cmd
	Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd)
	View(state *InstallState) string
}

func getSteps() []Step {
	return []Step{
		NewProviderStep(),
		NewEmbeddingProviderStep(),
		NewBaseURLStep(),
		NewBaseURLStep(),
		NewAPIKeyStep(keyLLMProvider),
		NewAPIKeyStep(keyEmbeddingProvider),
		NewModelStep(),
		NewEmbeddingModelStep(),
		NewChannelStep(),
		NewTelegramTokenStep(),
		NewTelegramAllowedStep(),
		NewFinalizationStep(),
		NewSaveEnvStep(),
	}
}

type nextMsg struct{}

type model struct {
	steps    []Step
	current  int
	state    *InstallState
	quitting bool
	width    int
	height   int
}

func newModel(steps []Step) model {
	return model{
		steps: steps,
		state: NewInstallState(),
	}
}

func (m model) done() bool {
	return m.current >= len(m.steps)
}

func (m model) Init() tea.Cmd {
	if m.done() {
		return tea.Quit
	}
	return m.steps[0].Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
	}

	if m.quitting || m.done() {
		return m, tea.Quit
	}

	next, cmd := m.steps[m.current].Update(msg, m.state, m.width, m.height)
	if next != nil {
		m.steps[m.current] = next
		return m, cmd
	}

	m.current++
	if m.done() {
		return m, tea.Quit
	}
	return m, m.steps[m.current].Init()
}

func (m model) View() string {
	switch {
	case m.quitting:
		return "Installation cancelled.\n"
	case m.done():
		return "Configuration complete!\n"
	}

	header := titleStyle.Render("Setting up MedHelp") +
		itemStyle.Render(fmt.Sprintf("step %d of %d", m.current+1, len(m.steps)))
	return header + "\n\n" + m.steps[m.current].View(m.state)
}

// RunWizard collects the configuration interactively and writes it to the
// runtime directory.
func RunWizard() (*InstallState, error) {
	p := tea.NewProgram(newModel(getSteps()), tea.WithAltScreen())
	m, err := p.Run()
	if err != nil {
		return nil, err
	}

	final := m.(model)
	if final.quitting || !final.done() {
		return nil, errors.New("medhelp installation interrupted")
	}
	return final.state, nil
}
