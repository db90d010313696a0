// Package auth provides GitHub authentication token management for the relay.
// A token is taken from the first provider in the chain that yields one.
package auth

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrNoToken is returned when no provider in a chain could supply a token.
var ErrNoToken = errors.New("no GitHub token available")

// TokenProvider defines the interface for obtaining a GitHub authentication token.
type TokenProvider interface {
	GetToken() (string, error)
}

// StaticProvider returns a token supplied through configuration (flag or .env).
type StaticProvider struct {
	Token string
}

// GetToken returns the configured token, or an error if it is blank.
func (s *StaticProvider) GetToken() (string, error) {
	token := strings.TrimSpace(s.Token)
	if token == "" {
		return "", errors.New("no token configured")
	}
	return token, nil
}

// EnvProvider obtains tokens from the GITHUB_TOKEN environment variable.
type EnvProvider struct{}

// GetToken reads the GITHUB_TOKEN environment variable.
// Returns an error if the variable is not set or is empty.
func (e *EnvProvider) GetToken() (string, error) {
	token := strings.TrimSpace(os.Getenv("GITHUB_TOKEN"))
	if token == "" {
		return "", errors.New("GITHUB_TOKEN environment variable not set or empty")
	}
	return token, nil
}

// GhCliProvider obtains tokens by shelling out to the GitHub CLI (`gh auth token`).
type GhCliProvider struct {
	// Command overrides the executable name; defaults to "gh".
	Command string
}

// GetToken shells out to `gh auth token` to retrieve the current token.
// Returns an error if gh CLI is not installed, not authenticated, or the command fails.
func (g *GhCliProvider) GetToken() (string, error) {
	name := g.Command
	if name == "" {
		name = "gh"
	}

	cmd := exec.Command(name, "auth", "token", "--hostname", "github.com")
	output, err := cmd.Output()
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return "", errors.New("gh CLI not found in PATH")
		}
		return "", fmt.Errorf("gh auth token failed: %w", err)
	}

	token := strings.TrimSpace(string(output))
	if token == "" {
		return "", errors.New("gh auth token returned empty token")
	}

	return token, nil
}

// Chain tries each provider in order and returns the first token found.
type Chain []TokenProvider

// GetToken walks the chain. When every provider fails the error lists each cause.
func (c Chain) GetToken() (string, error) {
	causes := make([]string, 0, len(c))
	for _, p := range c {
		token, err := p.GetToken()
		if err == nil {
			return token, nil
		}
		causes = append(causes, err.Error())
	}
	return "", fmt.Errorf("%w (%s)", ErrNoToken, strings.Join(causes, "; "))
}

// GetToken resolves a token from, in order, the configured value, the GITHUB_TOKEN
// environment variable and the gh CLI. The error is actionable when all fail.
func GetToken(configured string) (string, error) {
	chain := Chain{
		&StaticProvider{Token: configured},
		&EnvProvider{},
		&GhCliProvider{},
	}

	token, err := chain.GetToken()
	if err == nil {
		return token, nil
	}

	return "", fmt.Errorf(
		"failed to obtain GitHub token: %w.\n"+
			"Please either:\n"+
			"  1. Set GITHUB_TOKEN in the environment or .env file, or\n"+
			"  2. Run 'gh auth login' to authenticate with GitHub CLI",
		err,
	)
}
