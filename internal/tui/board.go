package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/pkg/browser"

	"github.com/robby/ghboard/internal/domain"
	"github.com/robby/ghboard/internal/points"
	"github.com/robby/ghboard/internal/store"
)

// Layout constants
const (
	minColumnWidth = 24
	maxColumnWidth = 45
	headerLines    = 2  // title line + hints line
	pageJumpSize   = 10 // Number of items to jump with Ctrl+D/U
)

// otherColumn collects tasks whose status is not one of the board's own columns.
const otherColumn domain.Status = ""

// Styles for the board view - base styles without width/height (set dynamically)
var (
	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	cardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedCardStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	moveModeStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("205")).
			Foreground(lipgloss.Color("0")).
			Padding(0, 1)
)

// BoardModel represents the main kanban board view
type BoardModel struct {
	// Dependencies
	store   *store.Store
	tracker *points.Tracker
	ctx     context.Context
	title   string

	// UI components
	keymap      KeyMap
	help        HelpModel
	spinner     spinner.Model
	filterInput textinput.Model

	// Board state
	columns        []domain.Status
	filteredTasks  map[domain.Status][]domain.Task
	selectedColumn int
	columnOffset   int // first visible column index
	selectedCard   map[domain.Status]int
	scrollOffset   map[domain.Status]int

	// View state
	width         int
	height        int
	showHelp      bool
	filterMode    bool
	filterText    string
	moveMode      bool
	confirmDelete bool
	loading       bool
	errorToast    string
	toast         string
}

// NewBoardModel creates a board over s. tracker may be nil to disable points.
func NewBoardModel(s *store.Store, tracker *points.Tracker, ctx context.Context, title string) BoardModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "Filter..."
	ti.Prompt = "/ "

	return BoardModel{
		store:         s,
		tracker:       tracker,
		ctx:           ctx,
		title:         title,
		keymap:        DefaultKeyMap(),
		help:          NewHelpModel(DefaultKeyMap(), tracker != nil),
		spinner:       sp,
		filterInput:   ti,
		filteredTasks: make(map[domain.Status][]domain.Task),
		selectedCard:  make(map[domain.Status]int),
		scrollOffset:  make(map[domain.Status]int),
	}
}

// boardInitMsg triggers initial column build
type boardInitMsg struct{}

// Init initializes the board
func (m BoardModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tea.WindowSize(),
		func() tea.Msg { return boardInitMsg{} },
	)
}

// Update handles messages
func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		(&m).adjustColumnScroll()
		return m, nil

	case boardInitMsg:
		(&m).refresh()
		return m, nil

	case tasksLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errorToast = fmt.Sprintf("Reload failed: %v", msg.err)
		} else {
			m.errorToast = ""
		}
		(&m).refresh()
		return m, nil

	case moveSavedMsg:
		// A failed save keeps the local move; the next reload shows the remote state.
		if msg.err != nil {
			m.errorToast = fmt.Sprintf("Save failed: %v", msg.err)
		}
		(&m).refresh()
		return m, nil

	case taskSavedMsg:
		if msg.err != nil {
			m.errorToast = fmt.Sprintf("Save failed: %v", msg.err)
			return m, nil
		}
		m.errorToast = ""
		if msg.created {
			m.toast = fmt.Sprintf("Created #%s", msg.task.ID)
		} else {
			m.toast = fmt.Sprintf("Saved #%s", msg.task.ID)
		}
		if msg.previous != domain.StatusDone && msg.task.Status == domain.StatusDone {
			(&m).award(msg.task)
		}
		(&m).refresh()
		(&m).selectTask(msg.task.ID)
		return m, nil

	case taskRemovedMsg:
		if msg.err != nil {
			m.errorToast = fmt.Sprintf("Delete failed: %v", msg.err)
			return m, nil
		}
		m.toast = fmt.Sprintf("Deleted #%s", msg.id)
		(&m).refresh()
		return m, nil

	case archivedMsg:
		if msg.err != nil {
			m.errorToast = fmt.Sprintf("Archive failed: %v", msg.err)
			return m, nil
		}
		if len(msg.tasks) == 0 {
			m.toast = "Nothing to archive"
		} else {
			m.toast = fmt.Sprintf("Archived %d tasks", len(msg.tasks))
		}
		(&m).refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

// handleKeyPress processes keyboard input
func (m BoardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Help overlay
	if m.showHelp {
		if msg.String() == "?" || msg.String() == "q" || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	// Filter mode
	if m.filterMode {
		switch msg.String() {
		case "enter":
			m.filterMode = false
			m.filterText = strings.TrimSpace(m.filterInput.Value())
			m.filterInput.Blur()
			(&m).applyFilter()
			return m, nil
		case "esc":
			m.filterMode = false
			m.filterInput.SetValue(m.filterText)
			m.filterInput.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			return m, cmd
		}
	}

	if m.confirmDelete {
		m.confirmDelete = false
		if msg.String() == "y" || msg.String() == "Y" {
			if task, ok := m.selectedTask(); ok {
				return m, m.removeTask(task.ID)
			}
		}
		return m, nil
	}

	if m.moveMode {
		return m.handleMoveMode(msg)
	}

	m.toast = ""

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = true
	case key.Matches(msg, m.keymap.Filter):
		m.filterMode = true
		m.filterInput.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keymap.Left):
		if m.selectedColumn > 0 {
			m.selectedColumn--
			(&m).adjustColumnScroll()
		}
	case key.Matches(msg, m.keymap.Right):
		if m.selectedColumn < len(m.columns)-1 {
			m.selectedColumn++
			(&m).adjustColumnScroll()
		}
	case key.Matches(msg, m.keymap.Down):
		(&m).moveCardSelection(1)
	case key.Matches(msg, m.keymap.Up):
		(&m).moveCardSelection(-1)
	case msg.String() == "g":
		(&m).jumpToCard(0)
	case msg.String() == "G":
		(&m).jumpToCard(-1)
	case msg.String() == "ctrl+d":
		(&m).moveCardSelection(pageJumpSize)
	case msg.String() == "ctrl+u":
		(&m).moveCardSelection(-pageJumpSize)
	case key.Matches(msg, m.keymap.Move):
		if _, ok := m.selectedTask(); ok {
			m.moveMode = true
		}
	case key.Matches(msg, m.keymap.ReorderUp):
		(&m).reorderSelected(-1)
	case key.Matches(msg, m.keymap.ReorderDown):
		(&m).reorderSelected(1)
	case key.Matches(msg, m.keymap.New):
		return m, func() tea.Msg { return openFormMsg{} }
	case key.Matches(msg, m.keymap.Edit):
		if task, ok := m.selectedTask(); ok {
			return m, func() tea.Msg { return openFormMsg{task: &task} }
		}
	case key.Matches(msg, m.keymap.Delete):
		if _, ok := m.selectedTask(); ok {
			m.confirmDelete = true
		}
	case key.Matches(msg, m.keymap.Archive):
		return m, m.archiveDone()
	case key.Matches(msg, m.keymap.ShowArchive):
		return m, func() tea.Msg { return openArchiveMsg{} }
	case key.Matches(msg, m.keymap.View):
		if task, ok := m.selectedTask(); ok {
			return m, func() tea.Msg { return openDetailMsg{task: task} }
		}
	case key.Matches(msg, m.keymap.Open):
		if task, ok := m.selectedTask(); ok && len(task.Links) > 0 {
			if err := openLink(task.Links[0]); err != nil {
				m.errorToast = fmt.Sprintf("Open failed: %v", err)
			}
		}
	case key.Matches(msg, m.keymap.Reload):
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, loadTasks(m.ctx, m.store))
	}

	return m, nil
}

// handleMoveMode handles key presses in move mode
func (m BoardModel) handleMoveMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.moveMode = false
		return m, nil
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(msg.Runes[0] - '1')
		if idx >= 0 && idx < len(m.columns) {
			cmd := (&m).moveSelected(m.columns[idx])
			return m, cmd
		}
	}
	return m, nil
}

// moveSelected moves the selected task to the end of target. The local move is
// immediate; persisting runs in the background and is not rolled back on failure.
func (m *BoardModel) moveSelected(target domain.Status) tea.Cmd {
	m.moveMode = false
	if target == otherColumn {
		m.errorToast = "Tasks can't be moved into Other"
		return nil
	}
	task, ok := m.selectedTask()
	if !ok || task.Status == target {
		return nil
	}

	moved, previous, err := m.store.Move(task.ID, target, -1)
	if err != nil {
		m.errorToast = fmt.Sprintf("Move failed: %v", err)
		return nil
	}
	m.errorToast = ""
	if previous != domain.StatusDone && target == domain.StatusDone {
		m.award(moved)
	}
	m.refresh()
	m.selectTask(moved.ID)

	s, ctx := m.store, m.ctx
	return func() tea.Msg {
		_, err := s.Save(ctx, moved)
		return moveSavedMsg{id: moved.ID, err: err}
	}
}

// reorderSelected shifts the selected task within its column. Order is local to the session.
func (m *BoardModel) reorderSelected(delta int) {
	task, ok := m.selectedTask()
	if !ok {
		return
	}
	column := m.store.Column(task.Status)
	pos := -1
	for i, t := range column {
		if t.ID == task.ID {
			pos = i
			break
		}
	}
	target := pos + delta
	if pos < 0 || target < 0 || target >= len(column) {
		return
	}
	if _, _, err := m.store.Move(task.ID, task.Status, target); err != nil {
		m.errorToast = fmt.Sprintf("Move failed: %v", err)
		return
	}
	m.refresh()
	m.selectTask(task.ID)
}

// award records a completion with the points tracker and reports it in the toast.
func (m *BoardModel) award(task domain.Task) {
	if m.tracker == nil {
		return
	}
	res, err := m.tracker.Complete(task)
	if err != nil {
		m.errorToast = err.Error()
	}

	parts := []string{fmt.Sprintf("+%d pts", res.Points)}
	if res.Early {
		parts = append(parts, "early!")
	}
	for _, a := range res.Achievements {
		parts = append(parts, fmt.Sprintf("★ %s +%d", a.Name, a.Points))
	}
	if res.RankUp != nil {
		parts = append(parts, "promoted to "+res.RankUp.Name)
	}
	m.toast = strings.Join(parts, " | ")
}

// View renders the board - fills entire terminal exactly
func (m BoardModel) View() string {
	width := m.width
	height := m.height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	sections := []string{
		m.renderHeader(width),
		m.renderSecondHeader(width),
	}

	if m.filterMode {
		sections = append(sections, m.filterInput.View())
	}

	if m.moveMode {
		moveBar := moveModeStyle.Render("MOVE") + fmt.Sprintf(" Press 1-%d to select column, ESC to cancel", len(m.columns))
		sections = append(sections, moveBar)
	}

	boardHeight := height - headerLines
	if m.filterMode {
		boardHeight--
	}
	if m.moveMode {
		boardHeight--
	}
	if boardHeight < 5 {
		boardHeight = 5
	}

	var mainContent string
	switch {
	case m.showHelp:
		helpLines := strings.Split(m.help.View(width), "\n")
		if len(helpLines) > boardHeight {
			helpLines = helpLines[:boardHeight]
		}
		mainContent = strings.Join(helpLines, "\n")
	case m.loading && len(m.store.Active()) == 0:
		loadingMsg := m.spinner.View() + " Loading..."
		mainContent = lipgloss.Place(width, boardHeight, lipgloss.Center, lipgloss.Center, loadingMsg)
	default:
		mainContent = m.renderBoard(width, boardHeight)
	}
	sections = append(sections, mainContent)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderSecondHeader renders navigation hints and the toast or position info
func (m BoardModel) renderSecondHeader(width int) string {
	left := "h/l:col j/k:task m:move n:new e:edit d:del enter:view"

	right := ""
	switch {
	case m.confirmDelete:
		if task, ok := m.selectedTask(); ok {
			right = errorStyle.Render(fmt.Sprintf("Delete #%s? (y/N)", task.ID))
		}
	case m.errorToast != "":
		right = errorStyle.Render(m.errorToast)
	case m.toast != "":
		right = SuccessStyle.Render(m.toast)
	case len(m.columns) > 0:
		col := m.columns[m.selectedColumn]
		tasks := m.filteredTasks[col]
		right = fmt.Sprintf("col %d/%d", m.selectedColumn+1, len(m.columns))
		if len(tasks) > 0 {
			right = fmt.Sprintf("%s | task %d/%d", right, m.selectedCard[col]+1, len(tasks))
		}
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}

	return dimStyle.Render(left) + strings.Repeat(" ", padding) + right
}

// renderHeader renders the title on the left and points and board status on the right
func (m BoardModel) renderHeader(width int) string {
	title := m.title
	if title == "" {
		title = "ghboard"
	}

	var statusParts []string
	if m.loading {
		statusParts = append(statusParts, m.spinner.View()+"loading")
	}

	if m.tracker != nil {
		state := m.tracker.State()
		rank := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(state.Rank.Color)).Render(state.Rank.Name)
		statusParts = append(statusParts,
			fmt.Sprintf("%d pts", state.Points),
			rank,
			fmt.Sprintf("streak %d", state.Streak),
		)
	}

	total := 0
	for _, tasks := range m.filteredTasks {
		total += len(tasks)
	}
	statusParts = append(statusParts, fmt.Sprintf("%d tasks", total))

	if m.filterText != "" {
		statusParts = append(statusParts, "/"+m.filterText)
	}
	statusParts = append(statusParts, "[v]archive [?]help")

	status := strings.Join(statusParts, " | ")

	padding := width - lipgloss.Width(title) - lipgloss.Width(status) - 2
	if padding < 1 {
		padding = 1
	}

	return titleStyle.Render(title) + strings.Repeat(" ", padding) + dimStyle.Render(status)
}

// renderBoard renders the kanban columns within the given dimensions.
// Columns scroll horizontally (carousel) when they don't fit.
func (m BoardModel) renderBoard(totalWidth, totalHeight int) string {
	numCols := len(m.columns)
	if numCols == 0 {
		return ""
	}

	// lipgloss Border adds 2 lines to the content height
	colContentHeight := totalHeight - 2
	if colContentHeight < 3 {
		colContentHeight = 3
	}

	visibleCols := totalWidth / minColumnWidth
	if visibleCols < 1 {
		visibleCols = 1
	}
	if visibleCols > numCols {
		visibleCols = numCols
	}

	colWidth := totalWidth / visibleCols
	if colWidth > maxColumnWidth {
		colWidth = maxColumnWidth
	}
	if colWidth < minColumnWidth {
		colWidth = minColumnWidth
	}

	// 2 border + 2 padding
	innerWidth := colWidth - 4
	if innerWidth < 10 {
		innerWidth = 10
	}

	maxCardLines := colContentHeight - 1
	if maxCardLines < 1 {
		maxCardLines = 1
	}

	startCol := m.columnOffset
	endCol := startCol + visibleCols
	if endCol > numCols {
		endCol = numCols
		startCol = endCol - visibleCols
		if startCol < 0 {
			startCol = 0
		}
	}

	columnViews := make([]string, 0, visibleCols+2)

	if startCol > 0 {
		columnViews = append(columnViews, scrollArrow("◀", colContentHeight+2))
	}
	for i := startCol; i < endCol; i++ {
		columnViews = append(columnViews, m.renderColumn(m.columns[i], i == m.selectedColumn, colWidth, colContentHeight, innerWidth, maxCardLines, i+1))
	}
	if endCol < numCols {
		columnViews = append(columnViews, scrollArrow("▶", colContentHeight+2))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, columnViews...)
}

func scrollArrow(arrow string, height int) string {
	return lipgloss.NewStyle().
		Width(2).
		Height(height).
		Foreground(lipgloss.Color("205")).
		Align(lipgloss.Center, lipgloss.Center).
		Render(arrow)
}

// renderColumn renders a single column. innerHeight excludes the border;
// maxCardLines excludes the header line.
func (m BoardModel) renderColumn(col domain.Status, selected bool, width, innerHeight, innerWidth, maxCardLines, colNum int) string {
	tasks := m.filteredTasks[col]

	headerText := fmt.Sprintf("[%d] %s (%d)", colNum, columnTitle(col), len(tasks))
	headerText = truncate.StringWithTail(headerText, uint(innerWidth), "…")

	scrollOffset := m.scrollOffset[col]
	selectedIdx := m.selectedCard[col]

	cardSlots := maxCardLines - 1
	if cardSlots < 1 {
		cardSlots = 1
	}

	needUpIndicator := scrollOffset > 0
	needDownIndicator := false

	availableSlots := cardSlots
	if needUpIndicator {
		availableSlots--
	}

	endIdx := scrollOffset + availableSlots
	if endIdx > len(tasks) {
		endIdx = len(tasks)
	}
	if endIdx < len(tasks) {
		needDownIndicator = true
		availableSlots--
		endIdx = scrollOffset + availableSlots
		if endIdx > len(tasks) {
			endIdx = len(tasks)
		}
	}

	lines := []string{columnHeaderStyle.Render(headerText)}

	if needUpIndicator {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("↑ %d more", scrollOffset)))
	}

	for i := scrollOffset; i < endIdx; i++ {
		text := m.formatCardText(tasks[i], innerWidth-2) // "> " or "  " prefix
		if selected && i == selectedIdx {
			lines = append(lines, selectedCardStyle.Render("> ")+text)
		} else {
			lines = append(lines, cardStyle.Render("  ")+text)
		}
	}

	if remaining := len(tasks) - endIdx; needDownIndicator && remaining > 0 {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("↓ %d more", remaining)))
	}

	if len(tasks) == 0 {
		lines = append(lines, dimStyle.Render("(empty)"))
	}

	borderColor := lipgloss.Color("240")
	if selected {
		borderColor = lipgloss.Color("205")
	}

	// Height sets the content height; the border adds 2 more lines.
	// MaxHeight would truncate the border.
	colStyle := lipgloss.NewStyle().
		Width(width-2).
		Height(innerHeight).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor)

	return colStyle.Render(strings.Join(lines, "\n"))
}

// formatCardText renders a task as "<priority> <title>   #id" within maxWidth cells.
func (m BoardModel) formatCardText(task domain.Task, maxWidth int) string {
	badge := priorityBadge(task.Priority)
	suffix := ""
	if task.ID != "" {
		suffix = "#" + task.ID
	}

	// badge + space
	available := maxWidth - 2
	if suffix != "" {
		available -= len(suffix) + 1
	}
	if available < 5 {
		available = 5
	}

	title := truncate.StringWithTail(task.Title, uint(available), "…")
	padding := maxWidth - 2 - lipgloss.Width(title) - len(suffix)
	if padding < 1 {
		padding = 1
	}

	return badge + " " + cardStyle.Render(title) + strings.Repeat(" ", padding) + dimStyle.Render(suffix)
}

func columnTitle(col domain.Status) string {
	if col == otherColumn {
		return "Other"
	}
	return col.Title()
}

// refresh rebuilds columns and cards from the store.
func (m *BoardModel) refresh() {
	m.rebuildColumns()
	m.applyFilter()
}

// rebuildColumns lays out the board's own columns plus Other when unknown statuses exist.
func (m *BoardModel) rebuildColumns() {
	m.columns = domain.Statuses()
	if len(m.store.OtherStatuses()) > 0 {
		m.columns = append(m.columns, otherColumn)
	}
	if m.selectedColumn >= len(m.columns) {
		m.selectedColumn = len(m.columns) - 1
	}
}

// applyFilter filters active tasks and groups them by column in board order
func (m *BoardModel) applyFilter() {
	m.filteredTasks = make(map[domain.Status][]domain.Task, len(m.columns))
	for _, col := range m.columns {
		m.filteredTasks[col] = []domain.Task{}
	}

	needle := strings.ToLower(m.filterText)
	for _, task := range m.store.Active() {
		col := task.Status
		if !col.Known() {
			col = otherColumn
		}
		if needle != "" && !matchesFilter(task, needle) {
			continue
		}
		m.filteredTasks[col] = append(m.filteredTasks[col], task)
	}

	// Reset scroll so a narrowed filter doesn't leave "↑ N more" behind
	for col, tasks := range m.filteredTasks {
		m.scrollOffset[col] = 0
		if m.selectedCard[col] >= len(tasks) {
			if len(tasks) > 0 {
				m.selectedCard[col] = len(tasks) - 1
			} else {
				m.selectedCard[col] = 0
			}
		}
		m.adjustScroll(col)
	}
}

// matchesFilter reports whether the lower-cased needle appears in the task's
// title, assignee, tags or id.
func matchesFilter(task domain.Task, needle string) bool {
	if strings.Contains(strings.ToLower(task.Title), needle) ||
		strings.Contains(strings.ToLower(task.Assignee), needle) ||
		"#"+task.ID == needle {
		return true
	}
	for _, tag := range task.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// moveCardSelection moves the card selection up or down by delta
func (m *BoardModel) moveCardSelection(delta int) {
	if len(m.columns) == 0 {
		return
	}

	col := m.columns[m.selectedColumn]
	tasks := m.filteredTasks[col]
	if len(tasks) == 0 {
		return
	}

	newIdx := m.selectedCard[col] + delta
	if newIdx < 0 {
		newIdx = 0
	}
	if newIdx >= len(tasks) {
		newIdx = len(tasks) - 1
	}

	m.selectedCard[col] = newIdx
	m.adjustScroll(col)
}

// jumpToCard jumps to a specific card index. Use -1 to jump to last card.
func (m *BoardModel) jumpToCard(idx int) {
	if len(m.columns) == 0 {
		return
	}

	col := m.columns[m.selectedColumn]
	tasks := m.filteredTasks[col]
	if len(tasks) == 0 {
		return
	}

	if idx < 0 || idx >= len(tasks) {
		idx = len(tasks) - 1
	}

	m.selectedCard[col] = idx
	m.adjustScroll(col)
}

// selectTask focuses the column and card holding id, if it is visible.
func (m *BoardModel) selectTask(id string) {
	for ci, col := range m.columns {
		for ti, task := range m.filteredTasks[col] {
			if task.ID == id {
				m.selectedColumn = ci
				m.selectedCard[col] = ti
				m.adjustScroll(col)
				m.adjustColumnScroll()
				return
			}
		}
	}
}

// adjustScroll ensures the selected card is visible
func (m *BoardModel) adjustScroll(col domain.Status) {
	selectedIdx := m.selectedCard[col]

	contentHeight := m.height - headerLines - 2 // column borders
	if m.moveMode {
		contentHeight--
	}
	if m.filterMode {
		contentHeight--
	}
	visibleCards := contentHeight - 3 // header + scroll indicators
	if visibleCards < 3 {
		visibleCards = 3
	}

	if selectedIdx < m.scrollOffset[col] {
		m.scrollOffset[col] = selectedIdx
	}
	if selectedIdx >= m.scrollOffset[col]+visibleCards {
		m.scrollOffset[col] = selectedIdx - visibleCards + 1
	}
}

// adjustColumnScroll ensures the selected column is visible (horizontal carousel)
func (m *BoardModel) adjustColumnScroll() {
	if len(m.columns) == 0 || m.width == 0 {
		return
	}

	visibleCols := m.width / minColumnWidth
	if visibleCols < 1 {
		visibleCols = 1
	}
	if visibleCols > len(m.columns) {
		visibleCols = len(m.columns)
	}

	if m.selectedColumn < m.columnOffset {
		m.columnOffset = m.selectedColumn
	}
	if m.selectedColumn >= m.columnOffset+visibleCols {
		m.columnOffset = m.selectedColumn - visibleCols + 1
	}
}

// selectedTask returns the currently selected task
func (m BoardModel) selectedTask() (domain.Task, bool) {
	if len(m.columns) == 0 {
		return domain.Task{}, false
	}

	col := m.columns[m.selectedColumn]
	tasks := m.filteredTasks[col]
	if len(tasks) == 0 {
		return domain.Task{}, false
	}

	idx := m.selectedCard[col]
	if idx >= len(tasks) {
		idx = 0
	}
	return tasks[idx], true
}

func (m BoardModel) removeTask(id string) tea.Cmd {
	s, ctx := m.store, m.ctx
	return func() tea.Msg {
		return taskRemovedMsg{id: id, err: s.Remove(ctx, id)}
	}
}

func (m BoardModel) archiveDone() tea.Cmd {
	s, ctx := m.store, m.ctx
	return func() tea.Msg {
		tasks, err := s.Archive(ctx)
		return archivedMsg{tasks: tasks, err: err}
	}
}

// loadTasks reloads both collections from the relay.
func loadTasks(ctx context.Context, s *store.Store) tea.Cmd {
	return func() tea.Msg {
		return tasksLoadedMsg{err: s.Load(ctx)}
	}
}

// openLink opens link in the default browser, assuming https when no scheme is given.
func openLink(link string) error {
	link = strings.TrimSpace(link)
	if link == "" {
		return nil
	}
	if !strings.Contains(link, "://") {
		link = "https://" + link
	}
	return browser.OpenURL(link)
}
