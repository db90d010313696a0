// Package gh provides a GraphQL client for the GitHub Issues of a single repository.
// It implements a deep module interface - simple methods hiding the GraphQL queries,
// pagination and label bookkeeping.
package gh

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/machinebox/graphql"
	"go.uber.org/zap"
)

// DefaultEndpoint is the public GitHub GraphQL endpoint.
const DefaultEndpoint = "https://api.github.com/graphql"

var (
	// ErrIssueNotFound indicates the requested issue number does not exist in the repository.
	ErrIssueNotFound = errors.New("issue not found")
	// ErrRepoNotFound indicates the configured owner/repo could not be resolved.
	ErrRepoNotFound = errors.New("repository not found")
)

// Config holds the coordinates and credentials for the client.
type Config struct {
	Token    string
	Owner    string
	Repo     string
	Endpoint string // defaults to DefaultEndpoint
	Logger   *zap.Logger
}

// Client is a GitHub GraphQL API client scoped to one repository.
type Client struct {
	gql    *graphql.Client
	token  string
	owner  string
	repo   string
	logger *zap.Logger

	// Repository node ID and label name -> label node ID, resolved lazily.
	mu     sync.Mutex
	repoID string
	labels map[string]string
}

// New creates a new GitHub GraphQL client for owner/repo.
// Returns an error if the token or repository coordinates are missing.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, errors.New("GitHub token is required")
	}
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, errors.New("GitHub owner and repo are required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	client := graphql.NewClient(endpoint)
	client.Log = func(s string) { logger.Debug(s) }

	return &Client{
		gql:    client,
		token:  cfg.Token,
		owner:  cfg.Owner,
		repo:   cfg.Repo,
		logger: logger,
	}, nil
}

// Repository returns the "owner/repo" coordinate the client is bound to.
func (c *Client) Repository() string {
	return fmt.Sprintf("%s/%s", c.owner, c.repo)
}

// makeRequest executes a GraphQL request with authentication.
// This is a helper method to avoid repeating the authorization header setup.
func (c *Client) makeRequest(ctx context.Context, req *graphql.Request, resp interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.token)
	return c.gql.Run(ctx, req, resp)
}
