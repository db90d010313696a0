package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/robby/ghboard/internal/domain"
)

var (
	// TitleStyle is used for screen titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")). // Purple
			MarginBottom(1)

	// SelectedItemStyle is used for highlighted/selected items.
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")). // Light purple
				Bold(true)

	// NormalItemStyle is used for non-selected items.
	NormalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // Light gray

	// ErrorStyle is used for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)

	// SuccessStyle is used for points and achievement toasts.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	// PromptStyle is used for prompt text.
	PromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")). // Light blue
			MarginBottom(1)

	// HelpStyle is used for help text.
	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")). // Dark gray
			MarginTop(1)
)

// priorityColors follow the usual low-to-critical traffic light.
var priorityColors = map[domain.Priority]lipgloss.Color{
	domain.PriorityLow:      lipgloss.Color("42"),
	domain.PriorityMedium:   lipgloss.Color("220"),
	domain.PriorityHigh:     lipgloss.Color("208"),
	domain.PriorityCritical: lipgloss.Color("196"),
}

// priorityBadge renders a one-letter priority marker.
func priorityBadge(p domain.Priority) string {
	color, ok := priorityColors[p]
	if !ok {
		color = lipgloss.Color("241")
	}
	letter := "?"
	if p != "" {
		letter = string([]rune(string(p))[0])
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(letter)
}
