package ui

import "github.com/charmbracelet/lipgloss"

// ANSI colors only, so styles follow the user's terminal theme.
var (
	// TitleStyle cyan, for section headers
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	// UsageStyle green, for arguments and usage lines
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// DescStyle gray, for descriptions and secondary chat lines
	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	// FlagStyle yellow
	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	HeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	UserStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	BotStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)
