package installer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/medhelp/internal/config"
	"github.com/sandevgo/medhelp/internal/service/knowledge"
)

// SaveEnvStep writes the collected configuration to <runtime>/.env and
// drops an editable copy of the source catalog next to it.
type SaveEnvStep struct {
	err   error
	saved bool
}

func NewSaveEnvStep() Step {
	return &SaveEnvStep{}
}

func (s *SaveEnvStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *SaveEnvStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.saved {
		return nil, nil
	}
	if s.err != nil {
		return s, nil
	}

	if err := saveRuntime(config.GetRuntimePath(), state); err != nil {
		s.err = err
		return s, nil
	}

	s.saved = true
	return nil, nil
}

func (s *SaveEnvStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.saved {
		return "Configuration saved successfully!\n"
	}
	return "Saving configuration...\n"
}

func saveRuntime(path string, state *InstallState) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create runtime directory: %w", err)
	}

	envPath := filepath.Join(path, ".env")
	if _, err := os.Stat(envPath); err == nil {
		return fmt.Errorf(".env file already exists at %s", envPath)
	}

	if err := os.WriteFile(envPath, []byte(state.Render()), 0600); err != nil {
		return err
	}

	catalogPath := filepath.Join(path, "catalog.yaml")
	if _, err := os.Stat(catalogPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(catalogPath, knowledge.DefaultCatalog(), 0644); err != nil {
			return fmt.Errorf("failed to write catalog: %w", err)
		}
	}
	return nil
}
