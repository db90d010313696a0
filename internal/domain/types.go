// Package domain defines the board's task model and its remote issue representation.
// These types are independent of both the GitHub GraphQL API and the relay wire format.
package domain

import "strings"

// Status is a board column. Known columns carry the "-list" suffix used by the board.
type Status string

// Known board columns, in display order.
const (
	StatusTodo       Status = "todo-list"
	StatusInProgress Status = "in-progress-list"
	StatusDone       Status = "done-list"
)

// StatusSuffix is appended to a bare status label value to form a column name.
const StatusSuffix = "-list"

// Statuses returns the known columns in board order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusDone}
}

// Known reports whether s is one of the board's own columns.
func (s Status) Known() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Bare returns the status without its column suffix ("done-list" -> "done").
func (s Status) Bare() string {
	return strings.TrimSuffix(string(s), StatusSuffix)
}

// StatusFromBare rebuilds a column name from a bare label value ("done" -> "done-list").
// Unknown values are kept so they survive a round trip.
func StatusFromBare(bare string) Status {
	return Status(bare + StatusSuffix)
}

// Title returns the column heading shown on the board.
func (s Status) Title() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	}
	return s.Bare()
}

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Priorities returns the known priorities from lowest to highest.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Task is a unit of work on the board.
type Task struct {
	ID          string   `json:"id,omitempty"`          // Issue number; empty until first persisted
	Title       string   `json:"title"`                 // Required, never defaulted
	Description string   `json:"description"`           // Free text
	Status      Status   `json:"status"`                // Board column
	Priority    Priority `json:"priority"`              // low|medium|high|critical
	Assignee    string   `json:"assignee,omitempty"`    // Display name, not a GitHub login
	DueDate     string   `json:"dueDate,omitempty"`     // ISO-8601 date or empty
	Tags        []string `json:"tags"`                  // Set semantics
	Links       []string `json:"links"`                 // Ordered
	CreatedAt   string   `json:"createdAt,omitempty"`   // ISO8601 timestamp, fixed at creation
	UpdatedAt   string   `json:"updatedAt,omitempty"`   // ISO8601 timestamp, refreshed on save
	Archived    bool     `json:"archived,omitempty"`    // Explicitly archived by the user
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	c := t
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	if t.Links != nil {
		c.Links = append([]string(nil), t.Links...)
	}
	return c
}

// IsArchived reports whether the task belongs to the archived collection:
// it must sit in the terminal column and carry the archive flag.
func (t Task) IsArchived() bool {
	return t.Status == StatusDone && t.Archived
}

// IssueFields are the writable parts of a remote issue.
type IssueFields struct {
	Title  string
	Body   string
	Labels []string
}

// Issue is the remote tracker's record for a task.
type Issue struct {
	Number    int      // Issue number within the repository
	NodeID    string   // GitHub GraphQL node ID
	Title     string   // Issue title
	Body      string   // Description plus Metadata and Links sections
	Labels    []string // Label names
	State     string   // OPEN or CLOSED
	CreatedAt string   // ISO8601 timestamp of creation
	UpdatedAt string   // ISO8601 timestamp of last update
}

// Issue state constants.
const (
	IssueStateOpen   = "OPEN"
	IssueStateClosed = "CLOSED"
)
