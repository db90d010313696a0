package points

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/robby/ghboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newClock() *clock {
	return &clock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)}
}

func newTestTracker(t *testing.T, c *clock) *Tracker {
	t.Helper()
	tr, err := NewTracker(nil, WithClock(c.now))
	require.NoError(t, err)
	return tr
}

func TestComplete_FirstTask(t *testing.T) {
	tr := newTestTracker(t, newClock())

	res, err := tr.Complete(domain.Task{Title: "a", Priority: domain.PriorityMedium})
	require.NoError(t, err)

	// base 100 + medium 100, no streak yet
	assert.Equal(t, 200, res.Points)
	require.Len(t, res.Achievements, 1)
	assert.Equal(t, "first_task", res.Achievements[0].ID)
	assert.Equal(t, 400, res.State.Points)
	assert.Equal(t, 1, res.State.Streak)
	assert.Equal(t, "2025-03-10", res.State.LastCompletionDate)
	assert.Nil(t, res.RankUp)
	assert.Equal(t, "CADET", res.State.Rank.Name)
}

func TestComplete_EarlyBonusAndStreak(t *testing.T) {
	c := newClock()
	tr := newTestTracker(t, c)

	_, err := tr.Complete(domain.Task{Title: "a", Priority: domain.PriorityLow})
	require.NoError(t, err)

	res, err := tr.Complete(domain.Task{Title: "b", Priority: domain.PriorityHigh, DueDate: "2025-03-20"})
	require.NoError(t, err)

	// base 100 + high 200 + early 300 + streak 1*50
	assert.Equal(t, 650, res.Points)
	assert.True(t, res.Early)
	assert.Equal(t, 1, res.State.Stats.EarlyCompletions)

	res, err = tr.Complete(domain.Task{Title: "c", Priority: domain.PriorityLow, DueDate: "2025-03-01"})
	require.NoError(t, err)
	assert.False(t, res.Early)
	assert.Equal(t, 1, res.State.Streak, "same day keeps the streak")
}

func TestStreak(t *testing.T) {
	c := newClock()
	tr := newTestTracker(t, c)

	complete := func() State {
		res, err := tr.Complete(domain.Task{Title: "t", Priority: domain.PriorityLow})
		require.NoError(t, err)
		return res.State
	}

	assert.Equal(t, 1, complete().Streak)
	c.t = c.t.AddDate(0, 0, 1)
	assert.Equal(t, 2, complete().Streak)
	c.t = c.t.AddDate(0, 0, 1)
	state := complete()
	assert.Equal(t, 3, state.Streak)
	assert.True(t, state.HasAchievement("streak_3"))

	c.t = c.t.AddDate(0, 0, 3)
	assert.Equal(t, 1, complete().Streak, "a gap resets the streak")
}

func TestAchievements_PriorityMasterAndSpeedDemon(t *testing.T) {
	tr := newTestTracker(t, newClock())

	var unlocked []string
	for i := 0; i < 5; i++ {
		res, err := tr.Complete(domain.Task{Title: "t", Priority: domain.PriorityCritical, DueDate: "2030-01-01"})
		require.NoError(t, err)
		for _, a := range res.Achievements {
			unlocked = append(unlocked, a.ID)
		}
	}

	assert.Equal(t, []string{"first_task", "speed_demon", "priority_master"}, unlocked)
	state := tr.State()
	assert.Equal(t, 5, state.Stats.CriticalTasksCompleted)
	assert.Equal(t, 5, state.Stats.EarlyCompletions)
}

func TestAchievements_TaskVarietyNeedsAllPriorities(t *testing.T) {
	tr := newTestTracker(t, newClock())

	for i := 0; i < 4; i++ {
		_, err := tr.Complete(domain.Task{Title: "t", Priority: domain.PriorityLow})
		require.NoError(t, err)
	}
	assert.False(t, tr.State().HasAchievement("task_variety"))

	for _, p := range []domain.Priority{domain.PriorityMedium, domain.PriorityHigh} {
		_, err := tr.Complete(domain.Task{Title: "t", Priority: p})
		require.NoError(t, err)
	}
	assert.False(t, tr.State().HasAchievement("task_variety"))

	res, err := tr.Complete(domain.Task{Title: "t", Priority: domain.PriorityCritical})
	require.NoError(t, err)
	require.NotEmpty(t, res.Achievements)
	assert.Equal(t, "task_variety", res.Achievements[len(res.Achievements)-1].ID)
}

func TestRankFor(t *testing.T) {
	testCases := map[int]string{
		0:     "CADET",
		999:   "CADET",
		1000:  "ENSIGN",
		2500:  "LIEUTENANT",
		4999:  "LIEUTENANT",
		5000:  "COMMANDER",
		10000: "CAPTAIN",
		30000: "ADMIRAL",
	}
	for points, name := range testCases {
		assert.Equal(t, name, RankFor(points).Name, "points=%d", points)
	}

	next, ok := NextRank(Ranks[0])
	require.True(t, ok)
	assert.Equal(t, "ENSIGN", next.Name)
	_, ok = NextRank(Ranks[len(Ranks)-1])
	assert.False(t, ok)
}

func TestComplete_RankUp(t *testing.T) {
	tr := newTestTracker(t, newClock())

	var rankUps []string
	for i := 0; i < 3; i++ {
		res, err := tr.Complete(domain.Task{Title: "t", Priority: domain.PriorityCritical})
		require.NoError(t, err)
		if res.RankUp != nil {
			rankUps = append(rankUps, res.RankUp.Name)
		}
	}
	// 700 (500 + first_task) -> 1250 (550 with streak) -> 1800
	assert.Equal(t, []string{"ENSIGN"}, rankUps)
	assert.Equal(t, 1800, tr.State().Points)
}

func TestBoltRepository_PersistsAcrossTrackers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "points.db")
	c := newClock()

	repo, err := Open(path)
	require.NoError(t, err)

	_, found, err := repo.Load()
	require.NoError(t, err)
	assert.False(t, found)

	tr, err := NewTracker(repo, WithClock(c.now))
	require.NoError(t, err)
	_, err = tr.Complete(domain.Task{Title: "t", Priority: domain.PriorityHigh})
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = Open(path)
	require.NoError(t, err)
	defer repo.Close()

	tr, err = NewTracker(repo, WithClock(c.now))
	require.NoError(t, err)
	state := tr.State()
	assert.Equal(t, 500, state.Points)
	assert.Equal(t, []string{"first_task"}, state.Achievements)
	assert.Equal(t, 1, state.Stats.ByPriority[domain.PriorityHigh])
}

type failingRepo struct{}

func (failingRepo) Load() (State, bool, error) { return State{}, false, nil }
func (failingRepo) Save(State) error          { return errors.New("disk full") }

func TestComplete_SaveFailureKeepsProgress(t *testing.T) {
	tr, err := NewTracker(failingRepo{}, WithClock(newClock().now))
	require.NoError(t, err)

	res, err := tr.Complete(domain.Task{Title: "t", Priority: domain.PriorityLow})
	assert.Error(t, err)
	assert.Equal(t, 150, res.Points)
	assert.Equal(t, 350, tr.State().Points)
}
