package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	metaStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	labelStyle = lipgloss.NewStyle().Bold(true)
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			MarginTop(1)

	noticeStyles = map[string]lipgloss.Style{
		"success": lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		"info":    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		"warning": lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		"error":   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}

	actionStyles = map[string]lipgloss.Style{
		"Buy":  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		"Sell": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		"Hold": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250")),
	}
)
