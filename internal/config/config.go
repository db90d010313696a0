// Package config loads runtime settings from the environment, optionally seeded
// from a .env file in the working directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates all runtime settings required by the relay and the board.
type Config struct {
	HTTP    HTTPConfig
	GitHub  GitHubConfig
	Context ContextConfig
	Logger  LoggerConfig
	Board   BoardConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigin   string
}

type GitHubConfig struct {
	Token    string
	Owner    string
	Repo     string
	Endpoint string
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
	File     string
}

type BoardConfig struct {
	RelayURL string
	PointsDB string
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults so the relay and board can start without any setup.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		HTTP: HTTPConfig{
			Host:         getString("HOST", "127.0.0.1"),
			Port:         getString("PORT", "3000"),
			ReadTimeout:  getDuration("READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 10*time.Second),
			CORSOrigin:   getString("CORS_ORIGIN", "*"),
		},
		GitHub: GitHubConfig{
			Token:    os.Getenv("GITHUB_TOKEN"),
			Owner:    os.Getenv("GITHUB_OWNER"),
			Repo:     os.Getenv("GITHUB_REPO"),
			Endpoint: getString("GITHUB_GRAPHQL_URL", "https://api.github.com/graphql"),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
			File:     os.Getenv("LOG_FILE"),
		},
		Board: BoardConfig{
			RelayURL: getString("RELAY_URL", ""),
			PointsDB: getString("POINTS_DB", defaultPointsDB()),
		},
	}

	if cfg.Board.RelayURL == "" {
		cfg.Board.RelayURL = "http://" + cfg.Address()
	}

	return cfg, nil
}

// Address returns the HTTP listen address for the relay server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}

// ValidateGitHub reports missing repository coordinates, which the relay cannot run without.
func (c *Config) ValidateGitHub() error {
	var missing []string
	if c.GitHub.Owner == "" {
		missing = append(missing, "GITHUB_OWNER")
	}
	if c.GitHub.Repo == "" {
		missing = append(missing, "GITHUB_REPO")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func defaultPointsDB() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".ghboard", "points.db")
	}
	return filepath.Join(home, ".ghboard", "points.db")
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
