package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/robby/ghboard/internal/points"
	"github.com/robby/ghboard/internal/store"
)

// AppScreen represents the different screens in the application flow.
type AppScreen int

const (
	ScreenLoading AppScreen = iota
	ScreenBoard
	ScreenDetail
	ScreenForm
	ScreenArchive
)

// AppModel is the root Bubble Tea model that manages screen transitions.
// It loads the tasks, then shows the board and the screens opened from it.
type AppModel struct {
	// Dependencies
	store   *store.Store
	tracker *points.Tracker
	ctx     context.Context
	title   string

	// Current state
	currentScreen AppScreen
	currentModel  tea.Model
	err           error
	loadingMsg    string
	detailFrom    AppScreen

	// Cached models to preserve state across screen transitions
	boardModel   *BoardModel
	archiveModel *ArchiveModel
}

// NewAppModel creates the root model. tracker may be nil to disable points.
func NewAppModel(s *store.Store, tracker *points.Tracker, ctx context.Context, title string) AppModel {
	return AppModel{
		store:         s,
		tracker:       tracker,
		ctx:           ctx,
		title:         title,
		currentScreen: ScreenLoading,
		loadingMsg:    "Loading tasks...",
	}
}

// Init starts loading the tasks.
func (m AppModel) Init() tea.Cmd {
	return loadTasks(m.ctx, m.store)
}

// Update handles messages and transitions between screens.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentScreen == ScreenLoading || m.err != nil {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "r":
				if m.err != nil {
					m.err = nil
					m.currentScreen = ScreenLoading
					m.currentModel = nil
					return m, loadTasks(m.ctx, m.store)
				}
			}
			return m, nil
		}

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case QuitMsg:
		return m, tea.Quit

	case tasksLoadedMsg:
		if m.currentScreen == ScreenLoading {
			if msg.err != nil {
				m.err = msg.err
				return m, nil
			}
			return m.showBoard()
		}

	case openDetailMsg:
		m.detailFrom = m.currentScreen
		m.currentScreen = ScreenDetail
		detail := NewDetailModel(msg.task)
		m.currentModel = detail
		return m, detail.Init()

	case openFormMsg:
		m.currentScreen = ScreenForm
		form := NewFormModel(msg.task, m.store, m.ctx)
		m.currentModel = form
		return m, form.Init()

	case openArchiveMsg:
		m.currentScreen = ScreenArchive
		archive := NewArchiveModel(m.store, m.ctx)
		m.archiveModel = &archive
		m.currentModel = archive
		return m, archive.Init()

	case closeViewMsg:
		if m.currentScreen == ScreenDetail && m.detailFrom == ScreenArchive && m.archiveModel != nil {
			m.currentScreen = ScreenArchive
			m.currentModel = *m.archiveModel
			return m, tea.WindowSize()
		}
		return m.returnToBoard(nil)

	case taskSavedMsg:
		if m.currentScreen == ScreenForm && msg.err == nil {
			return m.returnToBoard(msg)
		}
	}

	// Delegate to current screen's model
	if m.currentModel != nil {
		var cmd tea.Cmd
		m.currentModel, cmd = m.currentModel.Update(msg)
		// Keep cached models in sync
		switch current := m.currentModel.(type) {
		case BoardModel:
			m.boardModel = &current
		case ArchiveModel:
			m.archiveModel = &current
		}
		return m, cmd
	}

	return m, nil
}

// showBoard creates the board the first time the tasks are loaded.
func (m AppModel) showBoard() (tea.Model, tea.Cmd) {
	m.currentScreen = ScreenBoard
	board := NewBoardModel(m.store, m.tracker, m.ctx, m.title)
	m.boardModel = &board
	m.currentModel = board
	return m, board.Init()
}

// returnToBoard switches back to the cached board, refreshes it from the store,
// and hands it msg when one is given.
func (m AppModel) returnToBoard(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.boardModel == nil {
		return m.showBoard()
	}
	m.currentScreen = ScreenBoard

	board := *m.boardModel
	if msg == nil {
		msg = boardInitMsg{}
	}
	updated, cmd := board.Update(msg)
	if bm, ok := updated.(BoardModel); ok {
		m.boardModel = &bm
	}
	m.currentModel = updated
	// Request window size to ensure proper rendering
	return m, tea.Batch(cmd, tea.WindowSize())
}

// View renders the current screen.
func (m AppModel) View() string {
	if m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.currentModel != nil {
		return m.currentModel.View()
	}

	return m.loadingMsg + "\n\nPress Ctrl+C to quit"
}
