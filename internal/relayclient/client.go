// Package relayclient talks to the relay over HTTP on behalf of the board.
package relayclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/robby/ghboard/internal/domain"
)

// ErrMissingID is returned by Update and Delete for a task that was never persisted.
var ErrMissingID = errors.New("task has no id")

// APIError is a non-2xx relay response.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("relay returned %d: %s (%s)", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("relay returned %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the relay.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Config configures the client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Dial overrides how connections are made; nil uses TCP.
	Dial   fasthttp.DialFunc
	Logger *zap.Logger
}

// Client is a relay API client. Safe for concurrent use.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a relay client for cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("relay URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		http: &fasthttp.Client{
			Name: "ghboard",
			Dial: cfg.Dial,
		},
		baseURL: base,
		timeout: timeout,
		logger:  log,
	}, nil
}

// List fetches every task on the board.
func (c *Client) List(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Create persists a new task and returns it with its assigned id.
func (c *Client) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	var created domain.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", task, &created); err != nil {
		return domain.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	return created, nil
}

// Update overwrites an existing task.
func (c *Client) Update(ctx context.Context, task domain.Task) (domain.Task, error) {
	if task.ID == "" {
		return domain.Task{}, ErrMissingID
	}
	var updated domain.Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+task.ID, task, &updated); err != nil {
		return domain.Task{}, fmt.Errorf("failed to update task %s: %w", task.ID, err)
	}
	return updated, nil
}

// Delete closes the task's issue.
func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	if err := c.do(ctx, http.MethodDelete, "/tasks/"+id, nil, nil); err != nil {
		return fmt.Errorf("failed to delete task %s: %w", id, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return err
	}
	c.logger.Debug("relay call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", time.Since(start)),
	)

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return decodeAPIError(status, resp.Body())
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var payload struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		apiErr.Message = payload.Error
		apiErr.Details = payload.Details
	} else {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
