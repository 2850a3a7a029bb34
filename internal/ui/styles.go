package ui

import (
	"github.com/charmbracelet/lipgloss"

	"countdo/internal/tasklist"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cursorStyle    = lipgloss.NewStyle().Bold(true)
	activeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	expiredStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Strikethrough(true)
	dimStyle       = lipgloss.NewStyle().Faint(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dialogStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func stateStyle(s tasklist.State) lipgloss.Style {
	switch s {
	case tasklist.Completed:
		return completedStyle
	case tasklist.Expired:
		return expiredStyle
	default:
		return activeStyle
	}
}
