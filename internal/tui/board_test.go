package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robby/ghboard/internal/domain"
	"github.com/robby/ghboard/internal/points"
	"github.com/robby/ghboard/internal/store"
)

// fakeAPI is an in-memory relay used by the board tests
type fakeAPI struct {
	mu         sync.Mutex
	tasks      []domain.Task
	nextID     int
	failUpdate error
	updates    []domain.Task
	deletes    []string
}

func (f *fakeAPI) List(ctx context.Context) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Task, len(f.tasks))
	for i, t := range f.tasks {
		out[i] = t.Clone()
	}
	return out, nil
}

func (f *fakeAPI) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	task.ID = strconv.Itoa(f.nextID)
	f.tasks = append(f.tasks, task.Clone())
	return task, nil
}

func (f *fakeAPI) Update(ctx context.Context, task domain.Task) (domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate != nil {
		return domain.Task{}, f.failUpdate
	}
	f.updates = append(f.updates, task.Clone())
	return task, nil
}

func (f *fakeAPI) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	return nil
}

func testTasks() []domain.Task {
	return []domain.Task{
		{ID: "1", Title: "Task 1", Status: domain.StatusTodo, Priority: domain.PriorityLow, Tags: []string{"docs"}},
		{ID: "2", Title: "Task 2", Status: domain.StatusTodo, Priority: domain.PriorityHigh},
		{ID: "3", Title: "Task 3", Status: domain.StatusInProgress, Priority: domain.PriorityMedium, Assignee: "robby"},
		{ID: "4", Title: "Task 4", Status: domain.StatusDone, Priority: domain.PriorityCritical},
		{ID: "5", Title: "Old task", Status: domain.StatusDone, Priority: domain.PriorityLow, Archived: true},
	}
}

// createTestStore creates a loaded store with test data
func createTestStore(t *testing.T, tasks ...domain.Task) (*store.Store, *fakeAPI) {
	t.Helper()
	if len(tasks) == 0 {
		tasks = testTasks()
	}
	api := &fakeAPI{tasks: tasks, nextID: 100}
	s := store.New(api, store.WithClock(func() time.Time {
		return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, s.Load(context.Background()))
	return s, api
}

func newTestBoard(t *testing.T, s *store.Store, tracker *points.Tracker) BoardModel {
	t.Helper()
	board := NewBoardModel(s, tracker, context.Background(), "robby/tasks")
	board.width = 150
	board.height = 40
	(&board).refresh()
	return board
}

func press(t *testing.T, m tea.Model, keys ...string) (tea.Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, cmd = m.Update(msg)
	}
	return m, cmd
}

func columnIDs(tasks []domain.Task) []string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}

func TestBoardModel_RebuildColumns(t *testing.T) {
	s, _ := createTestStore(t)
	board := newTestBoard(t, s, nil)

	assert.Equal(t, domain.Statuses(), board.columns)
}

func TestBoardModel_OtherColumnForUnknownStatus(t *testing.T) {
	tasks := append(testTasks(), domain.Task{ID: "9", Title: "Blocked", Status: "blocked-list", Priority: "urgent"})
	s, _ := createTestStore(t, tasks...)
	board := newTestBoard(t, s, nil)

	require.Len(t, board.columns, 4)
	assert.Equal(t, otherColumn, board.columns[3])
	assert.Equal(t, []string{"9"}, columnIDs(board.filteredTasks[otherColumn]))
	assert.Contains(t, board.View(), "Other")
}

func TestBoardModel_ApplyFilter(t *testing.T) {
	s, _ := createTestStore(t)
	board := newTestBoard(t, s, nil)

	assert.Equal(t, []string{"1", "2"}, columnIDs(board.filteredTasks[domain.StatusTodo]))
	assert.Equal(t, []string{"3"}, columnIDs(board.filteredTasks[domain.StatusInProgress]))
	assert.Equal(t, []string{"4"}, columnIDs(board.filteredTasks[domain.StatusDone]), "archived tasks stay off the board")
}

func TestBoardModel_ApplyFilterWithText(t *testing.T) {
	s, _ := createTestStore(t)
	board := newTestBoard(t, s, nil)

	board.filterText = "docs"
	(&board).applyFilter()
	assert.Equal(t, []string{"1"}, columnIDs(board.filteredTasks[domain.StatusTodo]), "tags match")
	assert.Empty(t, board.filteredTasks[domain.StatusInProgress])

	board.filterText = "robby"
	(&board).applyFilter()
	assert.Equal(t, []string{"3"}, columnIDs(board.filteredTasks[domain.StatusInProgress]), "assignee matches")
	assert.Empty(t, board.filteredTasks[domain.StatusTodo])
}

func TestBoardModel_Navigation(t *testing.T) {
	s, _ := createTestStore(t)
	board := newTestBoard(t, s, nil)

	model, _ := press(t, board, "l")
	assert.Equal(t, 1, model.(BoardModel).selectedColumn)

	model, _ = press(t, model, "l", "l")
	assert.Equal(t, 2, model.(BoardModel).selectedColumn, "stops at the last column")

	model, _ = press(t, model, "h")
	assert.Equal(t, 1, model.(BoardModel).selectedColumn)
}

func TestBoardModel_CardNavigation(t *testing.T) {
	s, _ := createTestStore(t)
	board := newTestBoard(t, s, nil)

	model, _ := press(t, board, "j")
	assert.Equal(t, 1, model.(BoardModel).selectedCard[domain.StatusTodo])

	model, _ = press(t, model, "j")
	assert.Equal(t, 1, model.(BoardModel).selectedCard[domain.StatusTodo], "stops at the last card")

	model, _ = press(t, model, "k", "k")
	assert.Equal(t, 0, model.(BoardModel).selectedCard[domain.StatusTodo])
}

func TestBoardModel_MoveToDoneAwardsPoints(t *testing.T) {
	s, api := createTestStore(t)
	tracker, err := points.NewTracker(nil)
	require.NoError(t, err)
	board := newTestBoard(t, s, tracker)

	model, cmd := press(t, board, "m", "3")
	require.NotNil(t, cmd)
	board = model.(BoardModel)

	assert.False(t, board.moveMode)
	assert.Equal(t, []string{"2"}, columnIDs(board.filteredTasks[domain.StatusTodo]))
	assert.Equal(t, []string{"4", "1"}, columnIDs(board.filteredTasks[domain.StatusDone]))
	assert.Equal(t, 2, board.selectedColumn, "selection follows the moved task")
	assert.Contains(t, board.toast, "+150 pts")
	assert.Contains(t, board.toast, "FIRST STEPS")
	assert.Equal(t, 1, tracker.State().Stats.TasksCompleted)

	msg := cmd()
	require.IsType(t, moveSavedMsg{}, msg)
	assert.NoError(t, msg.(moveSavedMsg).err)
	require.Len(t, api.updates, 1)
	assert.Equal(t, domain.StatusDone, api.updates[0].Status)
	assert.Equal(t, "2025-03-10T09:00:00.000Z", api.updates[0].UpdatedAt)
}

func TestBoardModel_MoveOutsideDoneDoesNotAward(t *testing.T) {
	s, _ := createTestStore(t)
	tracker, err := points.NewTracker(nil)
	require.NoError(t, err)
	board := newTestBoard(t, s, tracker)

	model, cmd := press(t, board, "m", "2")
	require.NotNil(t, cmd)
	assert.Equal(t, []string{"3", "1"}, columnIDs(model.(BoardModel).filteredTasks[domain.StatusInProgress]))

	// Already in Done: nothing to move or persist
	model, cmd = press(t, model, "l", "m", "3")
	assert.Nil(t, cmd)
	assert.Equal(t, []string{"4"}, columnIDs(model.(BoardModel).filteredTasks[domain.StatusDone]))

	assert.Equal(t, 0, tracker.State().Points)
}

func TestBoardModel_MoveSaveFailureKeepsLocalMove(t *testing.T) {
	s, api := createTestStore(t)
	api.failUpdate = errors.New("relay down")
	board := newTestBoard(t, s, nil)

	model, cmd := press(t, board, "m", "2")
	require.NotNil(t, cmd)

	model, _ = model.Update(cmd())
	board = model.(BoardModel)

	assert.Contains(t, board.errorToast, "Save failed")
	assert.Contains(t, board.errorToast, "relay down")
	assert.Equal(t, []string{"3", "1"}, columnIDs(board.filteredTasks[domain.StatusInProgress]))
	task, ok := s.Get("1")
	require.True(t, ok)
	assert.Equal(t, domain.StatusInProgress, task.Status)
}

func TestBoardModel_MoveModeCancel(t *testing.T) {
	s, _ := createTestStore(t)
	board := newTestBoard(t, s, nil)

	model, _ := press(t, board, "m")
	assert.True(t, model.(BoardModel).moveMode)
	assert.Contains(t, model.View(), "MOVE")

	model, cmd := press(t, model, "esc")
	assert.Nil(t, cmd)
	assert.False(t, model.(BoardModel).moveMode)
}

func TestBoardModel_Reorder(t *testing.T) {
	s, api := createTestStore(t)
	board := newTestBoard(t, s, nil)

	model, cmd := press(t, board, "J")
	assert.Nil(t, cmd, "reordering is local")
	board = model.(BoardModel)

	assert.Equal(t, []string{"2", "1"}, columnIDs(board.filteredTasks[domain.StatusTodo]))
	assert.Equal(t, 1, board.selectedCard[domain.StatusTodo])
	assert.Empty(t, api.updates)

	model, _ = press(t, model, "K")
	assert.Equal(t, []string{"1", "2"}, columnIDs(model.(BoardModel).filteredTasks[domain.StatusTodo]))
}

func TestBoardModel_ArchiveDone(t *testing.T) {
	s, _ := createTestStore(t)
	board := newTestBoard(t, s, nil)

	model, cmd := press(t, board, "A")
	require.NotNil(t, cmd)

	model, _ = model.Update(cmd())
	board = model.(BoardModel)

	assert.Empty(t, board.filteredTasks[domain.StatusDone])
	assert.Equal(t, "Archived 1 tasks", board.toast)
	assert.Equal(t, []string{"5", "4"}, columnIDs(s.Archived()))
}

func TestBoardModel_DeleteNeedsConfirmation(t *testing.T) {
	s, api := createTestStore(t)
	board := newTestBoard(t, s, nil)

	model, cmd := press(t, board, "d")
	assert.Nil(t, cmd)
	assert.Contains(t, model.View(), "Delete #1?")

	model, cmd = press(t, model, "n")
	assert.Nil(t, cmd)
	assert.False(t, model.(BoardModel).confirmDelete)

	model, _ = press(t, model, "d")
	model, cmd = press(t, model, "y")
	require.NotNil(t, cmd)

	model, _ = model.Update(cmd())
	assert.Equal(t, []string{"1"}, api.deletes)
	assert.Equal(t, []string{"2"}, columnIDs(model.(BoardModel).filteredTasks[domain.StatusTodo]))
}

func TestBoardModel_OpenScreens(t *testing.T) {
	s, _ := createTestStore(t)
	board := newTestBoard(t, s, nil)

	_, cmd := press(t, board, "enter")
	require.NotNil(t, cmd)
	assert.Equal(t, "1", cmd().(openDetailMsg).task.ID)

	_, cmd = press(t, board, "e")
	require.NotNil(t, cmd)
	assert.Equal(t, "1", cmd().(openFormMsg).task.ID)

	_, cmd = press(t, board, "n")
	require.NotNil(t, cmd)
	assert.Nil(t, cmd().(openFormMsg).task)

	_, cmd = press(t, board, "v")
	require.NotNil(t, cmd)
	assert.IsType(t, openArchiveMsg{}, cmd())
}

func TestBoardModel_View(t *testing.T) {
	s, _ := createTestStore(t)
	tracker, err := points.NewTracker(nil)
	require.NoError(t, err)
	board := newTestBoard(t, s, tracker)

	require.NotPanics(t, func() {
		NewBoardModel(s, nil, context.Background(), "").View()
	})

	view := board.View()
	assert.Contains(t, view, "robby/tasks")
	assert.Contains(t, view, "To Do")
	assert.Contains(t, view, "In Progress")
	assert.Contains(t, view, "Done")
	assert.Contains(t, view, "0 pts")
	assert.Contains(t, view, "CADET")
	assert.Contains(t, view, "4 tasks")
	assert.Greater(t, len(strings.Split(view, "\n")), 5)
}

func TestFormatCardText_Truncation(t *testing.T) {
	s, _ := createTestStore(t)
	board := newTestBoard(t, s, nil)

	task := domain.Task{
		ID:       "999",
		Title:    "This is a very long title that should be truncated to fit the column width properly",
		Priority: domain.PriorityHigh,
	}
	rendered := board.formatCardText(task, 30)

	assert.Contains(t, rendered, "…")
	assert.Contains(t, rendered, "#999")
	assert.NotContains(t, rendered, "properly")
}

func TestHelpModel_ScoringLegend(t *testing.T) {
	withPoints := NewHelpModel(DefaultKeyMap(), true).View(120)
	assert.Contains(t, withPoints, "Scoring")
	assert.Contains(t, withPoints, "Early: +300")

	without := NewHelpModel(DefaultKeyMap(), false).View(120)
	assert.Contains(t, without, "Keys")
	assert.NotContains(t, without, "Scoring")
}
