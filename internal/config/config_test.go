package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"HOST", "PORT", "RELAY_URL", "REQUEST_TIMEOUT", "LOG_LEVEL", "LOG_ENCODING", "GITHUB_GRAPHQL_URL", "POINTS_DB"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:3000", cfg.Address())
	assert.Equal(t, "http://127.0.0.1:3000", cfg.Board.RelayURL)
	assert.Equal(t, 15*time.Second, cfg.Context.RequestTimeout)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Encoding)
	assert.Equal(t, "https://api.github.com/graphql", cfg.GitHub.Endpoint)
	assert.Contains(t, cfg.Board.PointsDB, "points.db")
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("PORT", "8080")
	t.Setenv("RELAY_URL", "http://relay.local:9000")
	t.Setenv("REQUEST_TIMEOUT", "30")
	t.Setenv("SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("GITHUB_OWNER", "robby")
	t.Setenv("GITHUB_REPO", "tasks")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.Equal(t, "http://relay.local:9000", cfg.Board.RelayURL)
	assert.Equal(t, 30*time.Second, cfg.Context.RequestTimeout)
	assert.Equal(t, 2*time.Second, cfg.Context.ShutdownTimeout)
	assert.NoError(t, cfg.ValidateGitHub())
}

func TestGetDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("READ_TIMEOUT", "soon")
	assert.Equal(t, 3*time.Second, getDuration("READ_TIMEOUT", 3*time.Second))
}

func TestValidateGitHub_Missing(t *testing.T) {
	cfg := &Config{}
	err := cfg.ValidateGitHub()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GITHUB_OWNER")
	assert.Contains(t, err.Error(), "GITHUB_REPO")
}
