// Package relay exposes the task board over HTTP and keeps GitHub Issues as the only
// source of truth. It holds no state of its own: every request is encoded with the
// codec, forwarded upstream, and the resulting issue decoded back into a task.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/robby/ghboard/internal/codec"
	"github.com/robby/ghboard/internal/domain"
	"github.com/robby/ghboard/internal/httpcontext"
	"github.com/robby/ghboard/internal/logger"
)

// Issues is the upstream issue tracker the relay forwards to.
type Issues interface {
	ListIssues(ctx context.Context) ([]domain.Issue, error)
	CreateIssue(ctx context.Context, fields domain.IssueFields) (domain.Issue, error)
	UpdateIssue(ctx context.Context, number int, fields domain.IssueFields) (domain.Issue, error)
	CloseIssue(ctx context.Context, number int) error
}

// Fixed client-facing messages. Upstream error text is logged, never returned.
const (
	msgListFailed   = "Failed to fetch tasks"
	msgCreateFailed = "Failed to create task"
	msgUpdateFailed = "Failed to update task"
	msgDeleteFailed = "Failed to delete task"
	msgInvalidBody  = "Invalid task payload"
	msgInvalidID    = "Invalid task id"
	msgEmptyTitle   = "Task title is required"
	msgNotFound     = "Task not found"
)

// Handler serves the task routes.
type Handler struct {
	issues  Issues
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

// NewHandler creates a handler forwarding to issues.
func NewHandler(issues Issues, adapter *httpcontext.Adapter, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if adapter == nil {
		adapter = httpcontext.NewAdapter(0)
	}
	return &Handler{issues: issues, adapter: adapter, logger: log}
}

// ListTasks returns every open issue decoded as a task.
func (h *Handler) ListTasks(stdCtx context.Context, ctx *fasthttp.RequestCtx) {
	issues, err := h.issues.ListIssues(stdCtx)
	if err != nil {
		h.respondError(stdCtx, ctx, err, msgListFailed)
		return
	}

	tasks := make([]domain.Task, 0, len(issues))
	for _, issue := range issues {
		tasks = append(tasks, codec.Decode(issue))
	}
	respondJSON(ctx, http.StatusOK, tasks)
}

// CreateTask opens a new issue for the posted task and returns it with its id.
func (h *Handler) CreateTask(stdCtx context.Context, ctx *fasthttp.RequestCtx) {
	fields, ok := h.parseTask(ctx)
	if !ok {
		return
	}

	issue, err := h.issues.CreateIssue(stdCtx, fields)
	if err != nil {
		h.respondError(stdCtx, ctx, err, msgCreateFailed)
		return
	}
	respondJSON(ctx, http.StatusCreated, codec.Decode(issue))
}

// UpdateTask overwrites the issue behind {id} with the posted task.
func (h *Handler) UpdateTask(stdCtx context.Context, ctx *fasthttp.RequestCtx) {
	number, ok := h.issueNumber(ctx)
	if !ok {
		return
	}
	fields, ok := h.parseTask(ctx)
	if !ok {
		return
	}

	issue, err := h.issues.UpdateIssue(stdCtx, number, fields)
	if err != nil {
		h.respondError(stdCtx, ctx, err, msgUpdateFailed)
		return
	}
	respondJSON(ctx, http.StatusOK, codec.Decode(issue))
}

// DeleteTask closes the issue behind {id}.
func (h *Handler) DeleteTask(stdCtx context.Context, ctx *fasthttp.RequestCtx) {
	number, ok := h.issueNumber(ctx)
	if !ok {
		return
	}

	if err := h.issues.CloseIssue(stdCtx, number); err != nil {
		h.respondError(stdCtx, ctx, err, msgDeleteFailed)
		return
	}
	respondJSON(ctx, http.StatusOK, successResponse{Success: true})
}

// Health reports liveness only; it does not call upstream.
func (h *Handler) Health(ctx *fasthttp.RequestCtx) {
	respondJSON(ctx, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) parseTask(ctx *fasthttp.RequestCtx) (domain.IssueFields, bool) {
	var task domain.Task
	if err := json.Unmarshal(ctx.PostBody(), &task); err != nil {
		respondJSON(ctx, http.StatusBadRequest, errorResponse{Error: msgInvalidBody, Details: err.Error()})
		return domain.IssueFields{}, false
	}

	fields, err := codec.Encode(task)
	if err != nil {
		if errors.Is(err, codec.ErrEmptyTitle) {
			respondJSON(ctx, http.StatusBadRequest, errorResponse{Error: msgEmptyTitle})
			return domain.IssueFields{}, false
		}
		respondJSON(ctx, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return domain.IssueFields{}, false
	}
	return fields, true
}

func (h *Handler) issueNumber(ctx *fasthttp.RequestCtx) (int, bool) {
	raw, _ := ctx.UserValue("id").(string)
	number, err := strconv.Atoi(raw)
	if err != nil || number <= 0 {
		respondJSON(ctx, http.StatusBadRequest, errorResponse{Error: msgInvalidID, Details: "id must be a positive issue number"})
		return 0, false
	}
	return number, true
}

func (h *Handler) respondError(stdCtx context.Context, ctx *fasthttp.RequestCtx, err error, fallback string) {
	status, message := mapError(err, fallback)
	logger.WithRequestID(stdCtx, h.logger).Error("upstream request failed",
		zap.String("method", string(ctx.Method())),
		zap.String("path", string(ctx.Path())),
		zap.Int("status", status),
		zap.Error(err),
	)
	respondJSON(ctx, status, errorResponse{Error: message})
}
