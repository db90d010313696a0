// Package store provides the board's client-side task state and keeps it in step
// with the relay. It owns two ordered collections, active and archived, and only
// changes them after the corresponding remote call has succeeded.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robby/ghboard/internal/domain"
)

var (
	// ErrTaskNotFound indicates the requested task is not in the expected collection.
	ErrTaskNotFound = errors.New("task not found")
	// ErrNoAPI indicates the store was created without a remote API.
	ErrNoAPI = errors.New("no task API configured")
)

// TimeLayout matches the ISO-8601 form the board has always written (millisecond UTC).
const TimeLayout = "2006-01-02T15:04:05.000Z"

// API is the remote task service the store persists through.
type API interface {
	List(ctx context.Context) ([]domain.Task, error)
	Create(ctx context.Context, task domain.Task) (domain.Task, error)
	Update(ctx context.Context, task domain.Task) (domain.Task, error)
	Delete(ctx context.Context, id string) error
}

// Store manages the board's tasks. All methods are safe for concurrent use;
// remote calls are made without holding the lock.
type Store struct {
	api API
	now func() time.Time

	mu       sync.Mutex
	active   []domain.Task
	archived []domain.Task
}

// Option customizes a Store.
type Option func(*Store)

// WithClock replaces the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty store backed by api.
func New(api API, opts ...Option) *Store {
	s := &Store{api: api, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces both collections with the remote task list. Tasks in the done column
// that carry the archive flag go to the archived collection; the rest are active.
// On failure the current state is left untouched.
func (s *Store) Load(ctx context.Context) error {
	if s.api == nil {
		return ErrNoAPI
	}
	tasks, err := s.api.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	active := make([]domain.Task, 0, len(tasks))
	archived := make([]domain.Task, 0)
	for _, t := range tasks {
		if t.IsArchived() {
			archived = append(archived, t)
		} else {
			active = append(active, t)
		}
	}

	s.mu.Lock()
	s.active, s.archived = active, archived
	s.mu.Unlock()
	return nil
}

// Save persists a task. A task with an id is updated and filed by its archived state,
// keeping its position when it stays in the same collection; a task without one is
// created and appended to the active collection.
// updatedAt is always refreshed and createdAt filled in when missing.
func (s *Store) Save(ctx context.Context, task domain.Task) (domain.Task, error) {
	if s.api == nil {
		return domain.Task{}, ErrNoAPI
	}
	task = s.stamp(task)

	if task.ID == "" {
		created, err := s.api.Create(ctx, task)
		if err != nil {
			return domain.Task{}, fmt.Errorf("failed to save task: %w", err)
		}
		s.mu.Lock()
		s.active = append(s.active, created.Clone())
		s.mu.Unlock()
		return created, nil
	}

	updated, err := s.api.Update(ctx, task)
	if err != nil {
		return domain.Task{}, fmt.Errorf("failed to save task: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if updated.IsArchived() {
		s.active = without(s.active, updated.ID)
		if i := indexOf(s.archived, updated.ID); i >= 0 {
			s.archived[i] = updated.Clone()
		} else {
			s.archived = append(s.archived, updated.Clone())
		}
		return updated, nil
	}

	s.archived = without(s.archived, updated.ID)
	if i := indexOf(s.active, updated.ID); i >= 0 {
		s.active[i] = updated.Clone()
	} else {
		s.active = append(s.active, updated.Clone())
	}
	return updated, nil
}

// Remove deletes a task remotely and then drops it from whichever collection holds it.
func (s *Store) Remove(ctx context.Context, id string) error {
	if s.api == nil {
		return ErrNoAPI
	}
	if err := s.api.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = without(s.active, id)
	s.archived = without(s.archived, id)
	return nil
}

// Archive persists every active task in the done column with the archive flag set,
// then moves them to the archived collection in their current order. The first failure
// aborts the batch and leaves both collections unchanged; tasks persisted before the
// failure remain archived remotely and reappear as archived on the next Load.
func (s *Store) Archive(ctx context.Context) ([]domain.Task, error) {
	if s.api == nil {
		return nil, ErrNoAPI
	}
	done := s.Column(domain.StatusDone)
	if len(done) == 0 {
		return nil, nil
	}

	saved := make([]domain.Task, 0, len(done))
	for _, task := range done {
		task.Archived = true
		updated, err := s.api.Update(ctx, s.stamp(task))
		if err != nil {
			return nil, fmt.Errorf("failed to archive task %s: %w", task.ID, err)
		}
		saved = append(saved, updated)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range saved {
		s.active = without(s.active, t.ID)
		s.archived = append(s.archived, t.Clone())
	}
	return saved, nil
}

// Restore moves an archived task back to the todo column, clears its archive flag,
// persists it, and appends it to the active collection.
func (s *Store) Restore(ctx context.Context, id string) (domain.Task, error) {
	if s.api == nil {
		return domain.Task{}, ErrNoAPI
	}

	s.mu.Lock()
	i := indexOf(s.archived, id)
	var task domain.Task
	if i >= 0 {
		task = s.archived[i].Clone()
	}
	s.mu.Unlock()
	if i < 0 {
		return domain.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	task.Status = domain.StatusTodo
	task.Archived = false
	restored, err := s.api.Update(ctx, s.stamp(task))
	if err != nil {
		return domain.Task{}, fmt.Errorf("failed to restore task: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.archived = without(s.archived, id)
	s.active = append(s.active, restored.Clone())
	return restored, nil
}

// Move changes an active task's column and its position within that column.
// index counts tasks in the target column; a negative or out-of-range index
// appends to the end of the column. It returns the moved task and its previous
// status. Move is local only; persist the result with Save.
func (s *Store) Move(id string, status domain.Status, index int) (domain.Task, domain.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := indexOf(s.active, id)
	if from < 0 {
		return domain.Task{}, "", fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	task := s.active[from]
	previous := task.Status
	task.Status = status

	rest := append(s.active[:from:from], s.active[from+1:]...)

	// Position in the flat slice: before the index-th task of the target column,
	// or after the column's last task.
	insertAt, seen, lastInColumn := -1, 0, -1
	for i, t := range rest {
		if t.Status != status {
			continue
		}
		if seen == index {
			insertAt = i
			break
		}
		seen++
		lastInColumn = i
	}
	if insertAt < 0 {
		insertAt = len(rest)
		if lastInColumn >= 0 {
			insertAt = lastInColumn + 1
		}
	}

	moved := make([]domain.Task, 0, len(rest)+1)
	moved = append(moved, rest[:insertAt]...)
	moved = append(moved, task)
	moved = append(moved, rest[insertAt:]...)
	s.active = moved

	return task.Clone(), previous, nil
}

// Get returns a copy of a task from either collection.
func (s *Store) Get(id string) (domain.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.active, id); i >= 0 {
		return s.active[i].Clone(), true
	}
	if i := indexOf(s.archived, id); i >= 0 {
		return s.archived[i].Clone(), true
	}
	return domain.Task{}, false
}

// Active returns a copy of the active collection in board order.
func (s *Store) Active() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.active)
}

// Archived returns a copy of the archived collection in archive order.
func (s *Store) Archived() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.archived)
}

// Column returns copies of the active tasks with the given status, in board order.
func (s *Store) Column(status domain.Status) []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Task, 0)
	for _, t := range s.active {
		if t.Status == status {
			out = append(out, t.Clone())
		}
	}
	return out
}

// OtherStatuses returns the unknown statuses present among active tasks, in first-seen order.
func (s *Store) OtherStatuses() []domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Status
	seen := make(map[domain.Status]bool)
	for _, t := range s.active {
		if !t.Status.Known() && !seen[t.Status] {
			seen[t.Status] = true
			out = append(out, t.Status)
		}
	}
	return out
}

// Reset empties both collections.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = nil
	s.archived = nil
}

func (s *Store) stamp(task domain.Task) domain.Task {
	task = task.Clone()
	now := s.now().UTC().Format(TimeLayout)
	if task.CreatedAt == "" {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	return task
}

func indexOf(tasks []domain.Task, id string) int {
	if id == "" {
		return -1
	}
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func without(tasks []domain.Task, id string) []domain.Task {
	out := tasks[:0:0]
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

func cloneAll(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
