// Package tui provides Bubble Tea models for the interactive board.
package tui

import "github.com/robby/ghboard/internal/domain"

// ErrorMsg is emitted when an error occurs that stops the current screen.
type ErrorMsg struct {
	Err error
}

// QuitMsg is emitted when the user requests to quit.
type QuitMsg struct{}

// Messages produced by store commands and screen transitions.
type (
	tasksLoadedMsg struct{ err error }

	// taskSavedMsg carries the status the task had before the edit so the board
	// can award points for a fresh completion.
	taskSavedMsg struct {
		task     domain.Task
		previous domain.Status
		created  bool
		err      error
	}

	moveSavedMsg struct {
		id  string
		err error
	}

	taskRemovedMsg struct {
		id  string
		err error
	}

	archivedMsg struct {
		tasks []domain.Task
		err   error
	}

	restoredMsg struct {
		task domain.Task
		err  error
	}

	openDetailMsg  struct{ task domain.Task }
	openFormMsg    struct{ task *domain.Task }
	openArchiveMsg struct{}
	closeViewMsg   struct{}
)
