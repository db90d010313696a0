package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/robby/ghboard/internal/domain"
)

// Layout constants
const (
	leftPanelRatio = 0.35 // Left panel takes 35% of width
	minLeftWidth   = 30
	maxLeftWidth   = 50
	headerHeight   = 1
	footerHeight   = 1
	borderSize     = 2 // Top + bottom border
)

// Detail view styles
var (
	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	detailLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))

	detailValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Underline(true)

	panelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))

	focusedPanelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("205"))
)

// DetailModel shows one task: fields on the left, description on the right.
type DetailModel struct {
	task     domain.Task
	viewport viewport.Model
	errorMsg string

	width  int
	height int
}

// NewDetailModel creates a detail view for task
func NewDetailModel(task domain.Task) DetailModel {
	vp := viewport.New(40, 10) // resized on WindowSizeMsg
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	m := DetailModel{task: task, viewport: vp}
	m.updateViewportContent()
	return m
}

// Init requests the window size
func (m DetailModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages
func (m DetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeComponents()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// resizeComponents fits the viewport into the right panel
func (m *DetailModel) resizeComponents() {
	leftWidth := leftPanelWidth(m.width)
	rightWidth := m.width - leftWidth - 1
	if rightWidth < 30 {
		rightWidth = 30
	}

	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 10 {
		contentHeight = 10
	}

	m.viewport.Width = rightWidth - borderSize - 2 // padding
	m.viewport.Height = contentHeight - borderSize
	m.updateViewportContent()
}

func leftPanelWidth(width int) int {
	w := int(float64(width) * leftPanelRatio)
	if w < minLeftWidth {
		w = minLeftWidth
	}
	if w > maxLeftWidth {
		w = maxLeftWidth
	}
	return w
}

// handleKeyPress processes keyboard input
func (m DetailModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		return m, func() tea.Msg { return closeViewMsg{} }
	case "e":
		task := m.task.Clone()
		return m, func() tea.Msg { return openFormMsg{task: &task} }
	case "o", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := 0
		if msg.String() != "o" {
			idx = int(msg.Runes[0] - '1')
		}
		if idx < len(m.task.Links) {
			if err := openLink(m.task.Links[idx]); err != nil {
				m.errorMsg = fmt.Sprintf("Open failed: %v", err)
			}
		}
	case "j", "down":
		m.viewport.LineDown(1)
	case "k", "up":
		m.viewport.LineUp(1)
	case "ctrl+d":
		m.viewport.HalfViewDown()
	case "ctrl+u":
		m.viewport.HalfViewUp()
	case "g":
		m.viewport.GotoTop()
	case "G":
		m.viewport.GotoBottom()
	}
	return m, nil
}

// updateViewportContent wraps the description to the viewport width
func (m *DetailModel) updateViewportContent() {
	width := m.viewport.Width
	if width < 10 {
		width = 10
	}
	body := strings.TrimSpace(m.task.Description)
	if body == "" {
		body = detailLabelStyle.Render("No description")
	} else {
		body = wordwrap.String(body, width)
	}
	m.viewport.SetContent(body)
}

// View renders the split-screen detail view
func (m DetailModel) View() string {
	width := m.width
	height := m.height
	if width == 0 {
		width = 100
	}
	if height == 0 {
		height = 30
	}

	leftWidth := leftPanelWidth(width)
	rightWidth := width - leftWidth - 1 // gap

	contentHeight := height - headerHeight - footerHeight
	if contentHeight < 10 {
		contentHeight = 10
	}

	header := m.renderHeader(width)

	leftPanel := panelBorderStyle.
		Width(leftWidth - borderSize).
		Height(contentHeight - borderSize).
		Render(m.renderFields(leftWidth - borderSize))

	rightPanel := focusedPanelBorderStyle.
		Width(rightWidth - borderSize).
		Height(contentHeight - borderSize).
		Padding(0, 1).
		Render(m.viewport.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, " ", rightPanel)

	return lipgloss.JoinVertical(lipgloss.Left, header, panels, m.renderFooter(width))
}

func (m DetailModel) renderHeader(width int) string {
	title := m.task.Title
	if m.task.ID != "" {
		title = fmt.Sprintf("#%s %s", m.task.ID, title)
	}
	return detailTitleStyle.Render(wordwrap.String(title, width))
}

// renderFields lists the task's metadata, wrapping values to width
func (m DetailModel) renderFields(width int) string {
	row := func(label, value string) string {
		if value == "" {
			value = "-"
		}
		return detailLabelStyle.Render(label) + "\n" + detailValueStyle.Render(wordwrap.String(value, width)) + "\n"
	}

	rows := []string{
		row("Status", columnTitle(statusColumn(m.task.Status))+statusSuffix(m.task.Status)),
		row("Priority", string(m.task.Priority)),
		row("Assignee", m.task.Assignee),
		row("Due", m.task.DueDate),
		row("Tags", strings.Join(m.task.Tags, ", ")),
		row("Created", m.task.CreatedAt),
		row("Updated", m.task.UpdatedAt),
	}

	if len(m.task.Links) > 0 {
		links := []string{detailLabelStyle.Render("Links")}
		for i, l := range m.task.Links {
			links = append(links, fmt.Sprintf("%d. %s", i+1, linkStyle.Render(l)))
		}
		rows = append(rows, strings.Join(links, "\n"))
	}

	return strings.Join(rows, "\n")
}

func statusColumn(s domain.Status) domain.Status {
	if s.Known() {
		return s
	}
	return otherColumn
}

// statusSuffix shows the raw value of an unknown status.
func statusSuffix(s domain.Status) string {
	if s.Known() {
		return ""
	}
	return fmt.Sprintf(" (%s)", s.Bare())
}

func (m DetailModel) renderFooter(width int) string {
	if m.errorMsg != "" {
		return errorStyle.Render(m.errorMsg)
	}
	hints := "esc:back e:edit o:open link 1-9:open nth link j/k:scroll"
	return dimStyle.Render(wordwrap.String(hints, width))
}
