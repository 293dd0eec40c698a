package cliui

import "github.com/charmbracelet/lipgloss"

// Shared text styles for command output.
var (
	KeyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	ValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	DimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	NameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	HeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true).Underline(true)
	WarnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)
