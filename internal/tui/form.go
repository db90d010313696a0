package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/robby/ghboard/internal/domain"
	"github.com/robby/ghboard/internal/store"
)

// Form fields in tab order.
const (
	fieldTitle = iota
	fieldDescription
	fieldStatus
	fieldPriority
	fieldAssignee
	fieldDueDate
	fieldTags
	fieldLinks
	fieldCount
)

const dueDateLayout = "2006-01-02"

var errTitleRequired = errors.New("title is required")

var (
	formLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(12)

	formFocusedLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true).
				Width(12)

	selectorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

// FormModel creates or edits a task.
type FormModel struct {
	store *store.Store
	ctx   context.Context

	original domain.Task // zero for a new task
	editing  bool

	inputs      map[int]*textinput.Model
	description textarea.Model
	spinner     spinner.Model

	statuses    []domain.Status
	priorities  []domain.Priority
	statusIdx   int
	priorityIdx int

	focus  int
	saving bool
	err    string
	width  int
	height int
}

// NewFormModel returns a form for task, or an empty form when task is nil.
func NewFormModel(task *domain.Task, s *store.Store, ctx context.Context) FormModel {
	m := FormModel{
		store:       s,
		ctx:         ctx,
		inputs:      make(map[int]*textinput.Model),
		statuses:    domain.Statuses(),
		priorities:  domain.Priorities(),
		priorityIdx: 1, // medium
	}
	if task != nil {
		m.original = task.Clone()
		m.editing = true
	}

	newInput := func(placeholder, value string) *textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.Prompt = ""
		ti.CharLimit = 256
		ti.SetValue(value)
		return &ti
	}
	m.inputs[fieldTitle] = newInput("What needs doing?", m.original.Title)
	m.inputs[fieldAssignee] = newInput("Unassigned", m.original.Assignee)
	m.inputs[fieldDueDate] = newInput("YYYY-MM-DD", m.original.DueDate)
	m.inputs[fieldTags] = newInput("comma separated", strings.Join(m.original.Tags, ", "))
	m.inputs[fieldLinks] = newInput("comma separated URLs", strings.Join(m.original.Links, ", "))

	ta := textarea.New()
	ta.Placeholder = "Description"
	ta.ShowLineNumbers = false
	ta.CharLimit = 65535
	ta.SetHeight(5)
	ta.SetWidth(60)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.SetValue(m.original.Description)
	m.description = ta

	if m.editing {
		m.statusIdx = indexOfStatus(&m.statuses, m.original.Status)
		m.priorityIdx = indexOfPriority(&m.priorities, m.original.Priority)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	m.spinner = sp

	m.inputs[fieldTitle].Focus()
	return m
}

// indexOfStatus returns the position of s, appending it when it is an unknown status
// so that editing other fields keeps it.
func indexOfStatus(list *[]domain.Status, s domain.Status) int {
	for i, v := range *list {
		if v == s {
			return i
		}
	}
	*list = append(*list, s)
	return len(*list) - 1
}

func indexOfPriority(list *[]domain.Priority, p domain.Priority) int {
	for i, v := range *list {
		if v == p {
			return i
		}
	}
	*list = append(*list, p)
	return len(*list) - 1
}

// Init starts the cursor blinking
func (m FormModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.WindowSize())
}

// Update handles messages
func (m FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w := msg.Width - 16
		if w > 80 {
			w = 80
		}
		if w < 20 {
			w = 20
		}
		m.description.SetWidth(w)
		for _, in := range m.inputs {
			in.Width = w
		}
		return m, nil

	case spinner.TickMsg:
		if !m.saving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case taskSavedMsg:
		m.saving = false
		if msg.err != nil {
			m.err = msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m.updateFocused(msg)
}

func (m FormModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.saving {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		return m, func() tea.Msg { return closeViewMsg{} }
	case "ctrl+s":
		task, err := m.task()
		if err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.err = ""
		m.saving = true
		return m, tea.Batch(m.spinner.Tick, m.save(task))
	case "tab", "down":
		if msg.String() == "down" && m.focus == fieldDescription {
			break
		}
		return m, m.setFocus((m.focus + 1) % fieldCount)
	case "shift+tab", "up":
		if msg.String() == "up" && m.focus == fieldDescription {
			break
		}
		return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)
	}

	switch m.focus {
	case fieldStatus:
		m.statusIdx = cycle(m.statusIdx, len(m.statuses), msg.String())
		return m, nil
	case fieldPriority:
		m.priorityIdx = cycle(m.priorityIdx, len(m.priorities), msg.String())
		return m, nil
	}
	return m.updateFocused(msg)
}

// cycle steps a selector left or right and wraps around.
func cycle(idx, n int, k string) int {
	switch k {
	case "left", "h":
		return (idx + n - 1) % n
	case "right", "l", " ":
		return (idx + 1) % n
	}
	return idx
}

func (m *FormModel) setFocus(field int) tea.Cmd {
	for _, in := range m.inputs {
		in.Blur()
	}
	m.description.Blur()
	m.focus = field

	switch field {
	case fieldDescription:
		return m.description.Focus()
	case fieldStatus, fieldPriority:
		return nil
	default:
		return m.inputs[field].Focus()
	}
}

func (m FormModel) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case fieldDescription:
		m.description, cmd = m.description.Update(msg)
	case fieldStatus, fieldPriority:
	default:
		in := m.inputs[m.focus]
		*in, cmd = in.Update(msg)
	}
	return m, cmd
}

// task builds the task from the form, keeping fields the form doesn't show.
func (m FormModel) task() (domain.Task, error) {
	task := m.original.Clone()

	task.Title = strings.TrimSpace(m.inputs[fieldTitle].Value())
	if task.Title == "" {
		return domain.Task{}, errTitleRequired
	}
	task.Description = strings.TrimSpace(m.description.Value())
	task.Status = m.statuses[m.statusIdx]
	task.Priority = m.priorities[m.priorityIdx]
	task.Assignee = strings.TrimSpace(m.inputs[fieldAssignee].Value())

	task.DueDate = strings.TrimSpace(m.inputs[fieldDueDate].Value())
	if task.DueDate != "" {
		if !validDueDate(task.DueDate) {
			return domain.Task{}, fmt.Errorf("due date must look like %s", dueDateLayout)
		}
	}

	task.Tags = splitTags(m.inputs[fieldTags].Value())
	task.Links = splitLinks(m.inputs[fieldLinks].Value())
	if task.Status != domain.StatusDone {
		task.Archived = false
	}
	return task, nil
}

func validDueDate(v string) bool {
	for _, layout := range []string{dueDateLayout, time.RFC3339Nano} {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

// splitTags splits on commas, trimming and dropping blanks and repeats.
func splitTags(raw string) []string {
	out := make([]string, 0)
	seen := make(map[string]bool)
	for _, f := range strings.Split(raw, ",") {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// splitLinks splits on commas and whitespace, keeping order.
func splitLinks(raw string) []string {
	out := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if out == nil {
		out = []string{}
	}
	return out
}

func (m FormModel) save(task domain.Task) tea.Cmd {
	s, ctx := m.store, m.ctx
	previous := m.original.Status
	created := !m.editing
	return func() tea.Msg {
		saved, err := s.Save(ctx, task)
		return taskSavedMsg{task: saved, previous: previous, created: created, err: err}
	}
}

// View renders the form
func (m FormModel) View() string {
	heading := "New task"
	if m.editing {
		heading = fmt.Sprintf("Edit #%s", m.original.ID)
	}

	label := func(field int, text string) string {
		if m.focus == field {
			return formFocusedLabelStyle.Render(text)
		}
		return formLabelStyle.Render(text)
	}
	selector := func(field int, value string) string {
		v := selectorStyle.Render(value)
		if m.focus == field {
			return SelectedItemStyle.Render("◀ ") + v + SelectedItemStyle.Render(" ▶")
		}
		return "  " + v
	}

	rows := []string{
		TitleStyle.Render(heading),
		label(fieldTitle, "Title") + m.inputs[fieldTitle].View(),
		label(fieldDescription, "Description"),
		m.description.View(),
		label(fieldStatus, "Status") + selector(fieldStatus, columnTitle(m.statuses[m.statusIdx])),
		label(fieldPriority, "Priority") + selector(fieldPriority, string(m.priorities[m.priorityIdx])),
		label(fieldAssignee, "Assignee") + m.inputs[fieldAssignee].View(),
		label(fieldDueDate, "Due date") + m.inputs[fieldDueDate].View(),
		label(fieldTags, "Tags") + m.inputs[fieldTags].View(),
		label(fieldLinks, "Links") + m.inputs[fieldLinks].View(),
	}

	switch {
	case m.saving:
		rows = append(rows, "", m.spinner.View()+" Saving...")
	case m.err != "":
		rows = append(rows, "", ErrorStyle.Render(m.err))
	}

	rows = append(rows, HelpStyle.Render("tab/shift+tab: field • ←/→: change • ctrl+s: save • esc: cancel"))
	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
