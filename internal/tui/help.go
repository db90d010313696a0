package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/robby/ghboard/internal/domain"
	"github.com/robby/ghboard/internal/points"
)

var helpOverlayStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("62")).
	Padding(1, 2).
	MarginTop(2)

// HelpModel renders the key overlay and, when points are on, the scoring table.
type HelpModel struct {
	help       help.Model
	keymap     KeyMap
	showPoints bool
}

func NewHelpModel(keymap KeyMap, showPoints bool) HelpModel {
	h := help.New()
	h.ShowAll = true
	return HelpModel{help: h, keymap: keymap, showPoints: showPoints}
}

func (m HelpModel) View(width int) string {
	m.help.Width = width - 8 // padding and border

	sections := []string{TitleStyle.Render("Keys"), m.help.View(m.keymap)}
	if m.showPoints {
		sections = append(sections, "", TitleStyle.Render("Scoring"), scoringLegend())
	}
	sections = append(sections, HelpStyle.Render("Press ? or esc to close."))

	return helpOverlayStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func scoringLegend() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Done: %d + priority", points.BasePoints)
	for _, p := range domain.Priorities() {
		fmt.Fprintf(&b, "  %s %d", priorityBadge(p), points.PriorityBonus[p])
	}
	fmt.Fprintf(&b, "\nEarly: +%d   Streak: +%d per day", points.EarlyBonus, points.StreakBonus)
	return b.String()
}
