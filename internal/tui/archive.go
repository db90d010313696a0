package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/robby/ghboard/internal/domain"
	"github.com/robby/ghboard/internal/store"
)

// ArchiveModel lists archived tasks and lets the user restore or delete them.
type ArchiveModel struct {
	store *store.Store
	ctx   context.Context

	tasks         []domain.Task
	cursor        int
	confirmDelete bool
	busy          bool
	toast         string
	errorToast    string

	width  int
	height int
}

// NewArchiveModel creates the archive view from the store's archived collection.
func NewArchiveModel(s *store.Store, ctx context.Context) ArchiveModel {
	return ArchiveModel{
		store: s,
		ctx:   ctx,
		tasks: s.Archived(),
	}
}

// Init requests the window size
func (m ArchiveModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages
func (m ArchiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case restoredMsg:
		m.busy = false
		if msg.err != nil {
			m.errorToast = fmt.Sprintf("Restore failed: %v", msg.err)
			return m, nil
		}
		m.toast = fmt.Sprintf("Restored #%s to %s", msg.task.ID, domain.StatusTodo.Title())
		m.reload()
		return m, nil

	case taskRemovedMsg:
		m.busy = false
		if msg.err != nil {
			m.errorToast = fmt.Sprintf("Delete failed: %v", msg.err)
			return m, nil
		}
		m.toast = fmt.Sprintf("Deleted #%s", msg.id)
		m.reload()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}
	return m, nil
}

func (m ArchiveModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	if m.confirmDelete {
		m.confirmDelete = false
		if msg.String() == "y" || msg.String() == "Y" {
			if task, ok := m.selected(); ok {
				m.busy = true
				s, ctx := m.store, m.ctx
				return m, func() tea.Msg {
					return taskRemovedMsg{id: task.ID, err: s.Remove(ctx, task.ID)}
				}
			}
		}
		return m, nil
	}

	m.toast, m.errorToast = "", ""
	switch msg.String() {
	case "q", "esc", "v":
		return m, func() tea.Msg { return closeViewMsg{} }
	case "j", "down":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "r":
		if task, ok := m.selected(); ok {
			m.busy = true
			s, ctx := m.store, m.ctx
			return m, func() tea.Msg {
				restored, err := s.Restore(ctx, task.ID)
				return restoredMsg{task: restored, err: err}
			}
		}
	case "d":
		if _, ok := m.selected(); ok {
			m.confirmDelete = true
		}
	case "enter":
		if task, ok := m.selected(); ok {
			return m, func() tea.Msg { return openDetailMsg{task: task} }
		}
	}
	return m, nil
}

func (m *ArchiveModel) reload() {
	m.tasks = m.store.Archived()
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m ArchiveModel) selected() (domain.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return domain.Task{}, false
	}
	return m.tasks[m.cursor], true
}

// View renders the archive list
func (m ArchiveModel) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Archive (%d)", len(m.tasks))))
	b.WriteString("\n")

	if len(m.tasks) == 0 {
		b.WriteString(dimStyle.Render("No archived tasks."))
		b.WriteString("\n")
	}

	for i, task := range m.tasks {
		line := fmt.Sprintf("#%-5s %s", task.ID, task.Title)
		if task.UpdatedAt != "" {
			line += "  " + dimStyle.Render(task.UpdatedAt)
		}
		line = truncate.StringWithTail(line, uint(width-4), "…")
		if i == m.cursor {
			b.WriteString(SelectedItemStyle.Render("> " + line))
		} else {
			b.WriteString(NormalItemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	switch {
	case m.confirmDelete:
		if task, ok := m.selected(); ok {
			b.WriteString(errorStyle.Render(fmt.Sprintf("\nDelete #%s? (y/N)", task.ID)))
		}
	case m.errorToast != "":
		b.WriteString("\n" + errorStyle.Render(m.errorToast))
	case m.toast != "":
		b.WriteString("\n" + SuccessStyle.Render(m.toast))
	}

	b.WriteString(HelpStyle.Render("\nj/k: navigate • r: restore • d: delete • enter: details • esc: back"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
