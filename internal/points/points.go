// Package points awards points, streaks, achievements and ranks for completed tasks.
// State is local to the user and persisted through a Repository after every completion.
package points

import (
	"fmt"
	"sync"
	"time"

	"github.com/robby/ghboard/internal/domain"
)

// Scoring constants.
const (
	BasePoints   = 100
	EarlyBonus   = 300 // completed before the due date
	StreakBonus  = 50  // per day of current streak
	dayLayout    = "2006-01-02"
	varietyCount = 4
)

// PriorityBonus is added per completion according to the task's priority.
var PriorityBonus = map[domain.Priority]int{
	domain.PriorityLow:      50,
	domain.PriorityMedium:   100,
	domain.PriorityHigh:     200,
	domain.PriorityCritical: 400,
}

// Rank is a title earned by reaching a points threshold.
type Rank struct {
	Name      string `json:"name"`
	Threshold int    `json:"threshold"`
	Color     string `json:"color"`
}

// Ranks in ascending threshold order.
var Ranks = []Rank{
	{Name: "CADET", Threshold: 0, Color: "#4A5568"},
	{Name: "ENSIGN", Threshold: 1000, Color: "#2B6CB0"},
	{Name: "LIEUTENANT", Threshold: 2500, Color: "#2C7A7B"},
	{Name: "COMMANDER", Threshold: 5000, Color: "#9C4221"},
	{Name: "CAPTAIN", Threshold: 10000, Color: "#975A16"},
	{Name: "ADMIRAL", Threshold: 25000, Color: "#1A365D"},
}

// Achievement is a one-time award.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Points      int
	earned      func(State) bool
}

// Achievements in evaluation order.
var Achievements = []Achievement{
	{ID: "first_task", Name: "FIRST STEPS", Description: "Complete your first task", Points: 200,
		earned: func(s State) bool { return s.Stats.TasksCompleted >= 1 }},
	{ID: "streak_3", Name: "STEADY COURSE", Description: "Maintain a 3-day completion streak", Points: 500,
		earned: func(s State) bool { return s.Streak >= 3 }},
	{ID: "priority_master", Name: "PRIORITY MASTER", Description: "Complete 5 critical tasks", Points: 1000,
		earned: func(s State) bool { return s.Stats.CriticalTasksCompleted >= 5 }},
	{ID: "speed_demon", Name: "SPEED DEMON", Description: "Complete 3 tasks before their due date", Points: 800,
		earned: func(s State) bool { return s.Stats.EarlyCompletions >= 3 }},
	{ID: "task_variety", Name: "MISSION SPECIALIST", Description: "Complete tasks of all priority levels", Points: 1500,
		earned: func(s State) bool { return len(s.Stats.ByPriority) >= varietyCount }},
}

// Stats are running completion counters.
type Stats struct {
	TasksCompleted         int                     `json:"tasksCompleted"`
	CriticalTasksCompleted int                     `json:"criticalTasksCompleted"`
	EarlyCompletions       int                     `json:"earlyCompletions"`
	ByPriority             map[domain.Priority]int `json:"byPriority,omitempty"`
}

// State is the persisted points record.
type State struct {
	Points             int      `json:"points"`
	Rank               Rank     `json:"rank"`
	Achievements       []string `json:"achievements"`
	Streak             int      `json:"streak"`
	LastCompletionDate string   `json:"lastCompletionDate,omitempty"`
	Stats              Stats    `json:"stats"`
}

// NewState returns the zero-progress state.
func NewState() State {
	return State{Rank: Ranks[0], Achievements: []string{}}
}

// HasAchievement reports whether id has been awarded.
func (s State) HasAchievement(id string) bool {
	for _, a := range s.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

func (s State) clone() State {
	c := s
	c.Achievements = append([]string{}, s.Achievements...)
	if s.Stats.ByPriority != nil {
		c.Stats.ByPriority = make(map[domain.Priority]int, len(s.Stats.ByPriority))
		for k, v := range s.Stats.ByPriority {
			c.Stats.ByPriority[k] = v
		}
	}
	return c
}

// Result describes what a single completion earned.
type Result struct {
	Points       int           // points for the task itself, excluding achievements
	Early        bool          // completed before the due date
	Achievements []Achievement // newly unlocked
	RankUp       *Rank         // set when the rank changed
	State        State         // state after the completion
}

// Repository persists the points state.
type Repository interface {
	Load() (State, bool, error)
	Save(State) error
}

// Tracker applies completions to the points state. Safe for concurrent use.
type Tracker struct {
	repo Repository
	now  func() time.Time

	mu    sync.Mutex
	state State
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithClock replaces the time source used for streaks and due dates.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// NewTracker loads the saved state from repo. A nil repo keeps state in memory only.
func NewTracker(repo Repository, opts ...Option) (*Tracker, error) {
	t := &Tracker{repo: repo, now: time.Now, state: NewState()}
	for _, opt := range opts {
		opt(t)
	}
	if repo == nil {
		return t, nil
	}

	state, ok, err := repo.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load points state: %w", err)
	}
	if ok {
		if state.Achievements == nil {
			state.Achievements = []string{}
		}
		if state.Rank.Name == "" {
			state.Rank = RankFor(state.Points)
		}
		t.state = state
	}
	return t, nil
}

// State returns a copy of the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.clone()
}

// Complete records a task completion and persists the new state. The in-memory
// state advances even if persisting fails; the error is returned for display.
func (t *Tracker) Complete(task domain.Task) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	s := t.state.clone()
	var res Result

	// Streak bonus uses the streak before this completion.
	res.Points = BasePoints + PriorityBonus[task.Priority] + s.Streak*StreakBonus
	if isEarly(task.DueDate, now) {
		res.Early = true
		res.Points += EarlyBonus
		s.Stats.EarlyCompletions++
	}
	s.Points += res.Points
	s.Stats.TasksCompleted++
	if task.Priority == domain.PriorityCritical {
		s.Stats.CriticalTasksCompleted++
	}
	if task.Priority.Valid() {
		if s.Stats.ByPriority == nil {
			s.Stats.ByPriority = make(map[domain.Priority]int)
		}
		s.Stats.ByPriority[task.Priority]++
	}

	updateStreak(&s, now)

	for _, a := range Achievements {
		if s.HasAchievement(a.ID) || !a.earned(s) {
			continue
		}
		s.Achievements = append(s.Achievements, a.ID)
		s.Points += a.Points
		res.Achievements = append(res.Achievements, a)
	}

	if rank := RankFor(s.Points); rank.Name != s.Rank.Name {
		s.Rank = rank
		res.RankUp = &rank
	}

	t.state = s
	res.State = s.clone()

	if t.repo != nil {
		if err := t.repo.Save(s); err != nil {
			return res, fmt.Errorf("failed to save points state: %w", err)
		}
	}
	return res, nil
}

// RankFor returns the highest rank whose threshold points reaches.
func RankFor(points int) Rank {
	for i := len(Ranks) - 1; i >= 0; i-- {
		if points >= Ranks[i].Threshold {
			return Ranks[i]
		}
	}
	return Ranks[0]
}

// NextRank returns the rank after current, or false at the top.
func NextRank(current Rank) (Rank, bool) {
	for i, r := range Ranks {
		if r.Name == current.Name && i+1 < len(Ranks) {
			return Ranks[i+1], true
		}
	}
	return Rank{}, false
}

func updateStreak(s *State, now time.Time) {
	today := now.Format(dayLayout)
	if s.LastCompletionDate == today {
		return
	}
	if s.LastCompletionDate == now.AddDate(0, 0, -1).Format(dayLayout) {
		s.Streak++
	} else {
		s.Streak = 1
	}
	s.LastCompletionDate = today
}

// isEarly reports whether due is a parseable date still in the future.
func isEarly(due string, now time.Time) bool {
	if due == "" {
		return false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z", "2006-01-02T15:04", dayLayout} {
		if t, err := time.Parse(layout, due); err == nil {
			return t.After(now)
		}
	}
	return false
}
