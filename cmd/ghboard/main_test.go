package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robby/ghboard/internal/domain"
	"github.com/robby/ghboard/internal/points"
)

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("GITHUB_OWNER", "env-owner")
	t.Setenv("GITHUB_REPO", "env-repo")
	t.Setenv("PORT", "4000")

	repo := "flag-repo"
	empty := ""
	cfg, err := loadConfig(map[string]*string{"repo": &repo, "owner": &empty})
	require.NoError(t, err)

	assert.Equal(t, "env-owner", cfg.GitHub.Owner, "empty flags keep the env value")
	assert.Equal(t, "flag-repo", cfg.GitHub.Repo)
	assert.Equal(t, "4000", cfg.HTTP.Port)
}

func TestPrintStats(t *testing.T) {
	tracker, err := points.NewTracker(nil)
	require.NoError(t, err)
	_, err = tracker.Complete(domain.Task{Title: "t", Priority: domain.PriorityCritical})
	require.NoError(t, err)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	printStats(cmd, tracker.State())

	text := out.String()
	assert.Contains(t, text, "Rank:     CADET")
	assert.Contains(t, text, "Points:   700 (300 to ENSIGN)")
	assert.Contains(t, text, "1 total, 1 critical, 0 early")
	assert.Contains(t, text, "Priority: critical=1")
	assert.Contains(t, text, "[x] FIRST STEPS")
	assert.Contains(t, text, "[ ] STEADY COURSE")
}

func TestRootCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range []*cobra.Command{newServeCmd(), newBoardCmd(), newStatsCmd()} {
		names[c.Name()] = true
	}
	assert.Equal(t, map[string]bool{"serve": true, "board": true, "stats": true}, names)
	assert.NotNil(t, newBoardCmd().Flags().Lookup("no-points"))
}
