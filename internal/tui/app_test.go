package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robby/ghboard/internal/domain"
)

func TestAppModel_LoadThenBoard(t *testing.T) {
	s, _ := createTestStore(t)
	s.Reset()
	app := NewAppModel(s, nil, context.Background(), "robby/tasks")

	assert.Contains(t, app.View(), "Loading tasks")

	msg := app.Init()()
	require.IsType(t, tasksLoadedMsg{}, msg)

	model, _ := app.Update(msg)
	app = model.(AppModel)
	assert.Equal(t, ScreenBoard, app.currentScreen)
	require.NotNil(t, app.boardModel)
	assert.Len(t, s.Active(), 4)
}

func TestAppModel_ScreenTransitions(t *testing.T) {
	s, _ := createTestStore(t)
	app := NewAppModel(s, nil, context.Background(), "")

	model, _ := app.Update(tasksLoadedMsg{})
	model, _ = model.Update(boardInitMsg{})

	task, ok := s.Get("1")
	require.True(t, ok)

	model, _ = model.Update(openDetailMsg{task: task})
	assert.Equal(t, ScreenDetail, model.(AppModel).currentScreen)
	assert.Contains(t, model.View(), "#1 Task 1")

	model, _ = model.Update(closeViewMsg{})
	assert.Equal(t, ScreenBoard, model.(AppModel).currentScreen)

	model, _ = model.Update(openArchiveMsg{})
	assert.Equal(t, ScreenArchive, model.(AppModel).currentScreen)
	assert.Contains(t, model.View(), "Old task")

	// Details opened from the archive return there
	archived, ok := s.Get("5")
	require.True(t, ok)
	model, _ = model.Update(openDetailMsg{task: archived})
	model, _ = model.Update(closeViewMsg{})
	assert.Equal(t, ScreenArchive, model.(AppModel).currentScreen)

	model, _ = model.Update(closeViewMsg{})
	assert.Equal(t, ScreenBoard, model.(AppModel).currentScreen)
}

func TestAppModel_FormSaveReturnsToBoard(t *testing.T) {
	s, _ := createTestStore(t)
	app := NewAppModel(s, nil, context.Background(), "")

	model, _ := app.Update(tasksLoadedMsg{})
	model, _ = model.Update(openFormMsg{})
	require.Equal(t, ScreenForm, model.(AppModel).currentScreen)

	// A failed save keeps the form open with the error
	model, _ = model.Update(taskSavedMsg{err: assert.AnError})
	require.Equal(t, ScreenForm, model.(AppModel).currentScreen)
	assert.Contains(t, model.View(), assert.AnError.Error())

	created, err := s.Save(context.Background(), domain.Task{Title: "Write docs", Status: domain.StatusTodo, Priority: domain.PriorityLow})
	require.NoError(t, err)

	model, _ = model.Update(taskSavedMsg{task: created, created: true})
	app = model.(AppModel)
	require.Equal(t, ScreenBoard, app.currentScreen)

	board := app.currentModel.(BoardModel)
	assert.Equal(t, "Created #101", board.toast)
	selected, ok := board.selectedTask()
	require.True(t, ok)
	assert.Equal(t, created.ID, selected.ID)
}

func TestAppModel_LoadErrorCanRetry(t *testing.T) {
	s, _ := createTestStore(t)
	app := NewAppModel(s, nil, context.Background(), "")

	model, _ := app.Update(tasksLoadedMsg{err: assert.AnError})
	assert.Contains(t, model.View(), "Press r to retry")

	model, cmd := press(t, model, "r")
	require.NotNil(t, cmd)
	assert.Equal(t, ScreenLoading, model.(AppModel).currentScreen)
	assert.Nil(t, model.(AppModel).err)
}

func TestFormModel_RequiresTitle(t *testing.T) {
	s, _ := createTestStore(t)
	form := NewFormModel(nil, s, context.Background())

	model, cmd := form.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
	assert.Equal(t, errTitleRequired.Error(), model.(FormModel).err)
	assert.Contains(t, model.View(), "title is required")
}

func TestFormModel_BuildsTask(t *testing.T) {
	s, _ := createTestStore(t)
	form := NewFormModel(nil, s, context.Background())

	form.inputs[fieldTitle].SetValue("  Fix bug  ")
	form.description.SetValue("Crash on save")
	form.inputs[fieldTags].SetValue("bug, ui, bug, ")
	form.inputs[fieldLinks].SetValue("github.com/robby/ghboard/issues/1, https://example.com")
	form.inputs[fieldDueDate].SetValue("2025-04-01")

	// Status and priority cycle with the arrow keys
	form.focus = fieldStatus
	model, _ := form.Update(tea.KeyMsg{Type: tea.KeyRight})
	form = model.(FormModel)
	form.focus = fieldPriority
	model, _ = form.Update(tea.KeyMsg{Type: tea.KeyLeft})
	form = model.(FormModel)

	task, err := form.task()
	require.NoError(t, err)
	assert.Equal(t, "Fix bug", task.Title)
	assert.Equal(t, "Crash on save", task.Description)
	assert.Equal(t, domain.StatusInProgress, task.Status)
	assert.Equal(t, domain.PriorityLow, task.Priority)
	assert.Equal(t, []string{"bug", "ui"}, task.Tags)
	assert.Equal(t, []string{"github.com/robby/ghboard/issues/1", "https://example.com"}, task.Links)
	assert.Empty(t, task.ID)

	msg := form.save(task)()
	saved := msg.(taskSavedMsg)
	require.NoError(t, saved.err)
	assert.True(t, saved.created)
	assert.Equal(t, "101", saved.task.ID)
}

func TestFormModel_RejectsBadDueDate(t *testing.T) {
	s, _ := createTestStore(t)
	form := NewFormModel(nil, s, context.Background())
	form.inputs[fieldTitle].SetValue("Task")
	form.inputs[fieldDueDate].SetValue("next week")

	_, err := form.task()
	assert.Error(t, err)
}

func TestFormModel_EditKeepsHiddenFields(t *testing.T) {
	s, _ := createTestStore(t)
	original := domain.Task{
		ID:        "7",
		Title:     "Blocked thing",
		Status:    "blocked-list",
		Priority:  "urgent",
		CreatedAt: "2025-01-01T00:00:00.000Z",
	}
	form := NewFormModel(&original, s, context.Background())
	form.inputs[fieldTitle].SetValue("Blocked thing, renamed")

	task, err := form.task()
	require.NoError(t, err)
	assert.Equal(t, "7", task.ID)
	assert.Equal(t, "2025-01-01T00:00:00.000Z", task.CreatedAt)
	assert.Equal(t, domain.Status("blocked-list"), task.Status, "unknown status survives an edit")
	assert.Equal(t, domain.Priority("urgent"), task.Priority)
	assert.Equal(t, "Blocked thing, renamed", task.Title)
	assert.Contains(t, form.View(), "Edit #7")
}

func TestArchiveModel_RestoreAndDelete(t *testing.T) {
	s, api := createTestStore(t,
		domain.Task{ID: "5", Title: "Old task", Status: domain.StatusDone, Archived: true},
		domain.Task{ID: "6", Title: "Older task", Status: domain.StatusDone, Archived: true},
	)
	archive := NewArchiveModel(s, context.Background())
	require.Len(t, archive.tasks, 2)

	model, cmd := press(t, archive, "r")
	require.NotNil(t, cmd)
	model, _ = model.Update(cmd())
	archive = model.(ArchiveModel)

	assert.Equal(t, "Restored #5 to To Do", archive.toast)
	require.Len(t, archive.tasks, 1)
	restored, ok := s.Get("5")
	require.True(t, ok)
	assert.Equal(t, domain.StatusTodo, restored.Status)
	assert.False(t, restored.Archived)

	model, _ = press(t, archive, "d")
	assert.Contains(t, model.View(), "Delete #6?")
	model, cmd = press(t, model, "y")
	require.NotNil(t, cmd)
	model, _ = model.Update(cmd())

	assert.Equal(t, []string{"6"}, api.deletes)
	assert.Empty(t, model.(ArchiveModel).tasks)
	assert.Contains(t, model.View(), "No archived tasks")
}

func TestDetailModel_View(t *testing.T) {
	task := domain.Task{
		ID:          "12",
		Title:       "Ship it",
		Description: "A long description that needs wrapping inside the right hand panel of the detail view.",
		Status:      domain.StatusInProgress,
		Priority:    domain.PriorityHigh,
		Assignee:    "Robby",
		Tags:        []string{"release"},
		Links:       []string{"https://example.com/pr/1"},
	}
	detail := NewDetailModel(task)
	model, _ := detail.Update(tea.WindowSizeMsg{Width: 120, Height: 30})

	view := model.View()
	assert.Contains(t, view, "#12 Ship it")
	assert.Contains(t, view, "In Progress")
	assert.Contains(t, view, "Robby")
	assert.Contains(t, view, "release")
	assert.Contains(t, view, "https://example.com/pr/1")

	_, cmd := press(t, model, "e")
	require.NotNil(t, cmd)
	assert.Equal(t, "12", cmd().(openFormMsg).task.ID)

	_, cmd = press(t, model, "esc")
	require.NotNil(t, cmd)
	assert.IsType(t, closeViewMsg{}, cmd())
}
