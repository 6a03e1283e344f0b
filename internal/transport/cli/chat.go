package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/medhelp/internal/core"
	"github.com/sandevgo/medhelp/internal/service/state"
	"github.com/sandevgo/medhelp/internal/service/triage"
	"github.com/sandevgo/medhelp/internal/service/ui"
	"github.com/sandevgo/medhelp/pkg/log"
)

const defaultSessionID = "cli-local"

var (
	headerStyle = ui.HeaderStyle
	userStyle   = ui.UserStyle
	botStyle    = ui.BotStyle
	dimStyle    = ui.DescStyle
	errStyle    = ui.ErrorStyle
)

type Triager interface {
	Step(ctx context.Context, conversationID, text string) (*triage.StepResult, error)
}

// Chat is an interactive terminal triage session.
type Chat struct {
	triage   Triager
	router   core.CmdRouter
	sessions *state.Sessions
	opts     []tea.ProgramOption
}

func NewChat(triage Triager, router core.CmdRouter, sessions *state.Sessions, opts ...tea.ProgramOption) *Chat {
	return &Chat{
		triage:   triage,
		router:   router,
		sessions: sessions,
		opts:     opts,
	}
}

// Start blocks until the user leaves the chat or ctx is cancelled.
func (c *Chat) Start(ctx context.Context) error {
	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, c.opts...)
	_, err := tea.NewProgram(newModel(ctx, c), opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (c *Chat) Shutdown(ctx context.Context) error {
	return nil
}

type stepDoneMsg struct {
	res *triage.StepResult
	err error
}

type commandDoneMsg string

type model struct {
	ctx     context.Context
	chat    *Chat
	input   textinput.Model
	spinner spinner.Model
	busy    bool
}

func newModel(ctx context.Context, chat *Chat) model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Describe your symptoms, or /help"
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = dimStyle

	return model{
		ctx:     ctx,
		chat:    chat,
		input:   ti,
		spinner: sp,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Sequence(
		tea.Println(headerStyle.Render("MedHelp triage")),
		tea.Println(dimStyle.Render("Commands: /ingest <url>  /info  /history  /new  /exit. Not a substitute for a doctor.")),
		textinput.Blink,
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			return m.submit(strings.TrimSpace(m.input.Value()))
		}

	case stepDoneMsg:
		m.busy = false
		return m, tea.Println(m.handleStep(msg))

	case commandDoneMsg:
		m.busy = false
		return m, tea.Println(string(msg))

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.busy {
		return m.spinner.View() + dimStyle.Render(" analysing...") + "\n"
	}
	return m.input.View() + "\n"
}

func (m model) submit(text string) (tea.Model, tea.Cmd) {
	if text == "" {
		return m, nil
	}
	m.input.Reset()

	switch text {
	case "/exit", "/quit", "exit", "quit":
		return m, tea.Quit
	case "/help":
		return m, tea.Println(m.help())
	}

	m.busy = true
	echo := tea.Println(userStyle.Render("You: ") + text)

	if strings.HasPrefix(text, "/") {
		return m, tea.Batch(echo, m.spinner.Tick, m.runCommand(text))
	}
	return m, tea.Batch(echo, m.spinner.Tick, m.runStep(text))
}

func (m model) runCommand(text string) tea.Cmd {
	return func() tea.Msg {
		out, _ := m.chat.router.Execute(m.ctx, defaultSessionID, text)
		return commandDoneMsg(out)
	}
}

func (m model) runStep(text string) tea.Cmd {
	active := m.chat.sessions.Active(defaultSessionID)
	return func() tea.Msg {
		res, err := m.chat.triage.Step(m.ctx, active, text)
		return stepDoneMsg{res: res, err: err}
	}
}

// handleStep updates the session and renders the round for the terminal.
func (m model) handleStep(msg stepDoneMsg) string {
	sessions := m.chat.sessions

	if msg.err != nil {
		log.FromCtx(m.ctx).Error().Err(msg.err).Msg("triage step failed")
		if errors.Is(msg.err, core.ErrNotFound) || errors.Is(msg.err, core.ErrConversationComplete) {
			sessions.Reset(defaultSessionID)
		}
		return errStyle.Render("Error: ") + msg.err.Error()
	}

	res := msg.res
	if res.Complete {
		sessions.Reset(defaultSessionID)
		return "\n" + res.Reply + "\n\n" + dimStyle.Render("Type a new message to start another triage.")
	}
	sessions.Set(defaultSessionID, res.ConversationID)

	var sb strings.Builder
	if line := hypothesesLine(res.Verdict.Candidates); line != "" {
		sb.WriteString(dimStyle.Render(line))
		sb.WriteByte('\n')
	}
	if res.Verdict.EvidenceUsed && len(res.Verdict.Retrieved) > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("Evidence: %d source(s). %s", len(res.Verdict.Retrieved), res.Verdict.EvidenceReasoning)))
		sb.WriteByte('\n')
	}
	sb.WriteString(botStyle.Render("MedHelp: ") + res.Reply)
	return sb.String()
}

func (m model) help() string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("Commands"))
	for _, cmd := range m.chat.router.ListCommands() {
		fmt.Fprintf(&sb, "\n  /%-10s %s", cmd.Name(), dimStyle.Render(cmd.Description()))
	}
	fmt.Fprintf(&sb, "\n  /%-10s %s", "exit", dimStyle.Render("Leave the chat"))
	return sb.String()
}

// hypothesesLine lists the top three candidates, most likely first.
func hypothesesLine(candidates []core.Candidate) string {
	if len(candidates) == 0 {
		return ""
	}

	sorted := make([]core.Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Probability > sorted[j].Probability })

	parts := make([]string, 0, 3)
	for i, c := range sorted {
		if i == 3 {
			break
		}
		parts = append(parts, fmt.Sprintf("%s %d%%", c.Condition, int(c.Probability*100+0.5)))
	}
	return "Considering: " + strings.Join(parts, ", ")
}
