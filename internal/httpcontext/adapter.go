// Package httpcontext gives relay routes a context.Context tied to the request:
// a deadline for the upstream call and the request id used in logs and responses.
package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/robby/ghboard/internal/logger"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

const (
	userValueRequestID = "httpcontext.request_id"
	maxRequestIDLen    = 128
	defaultTimeout     = 15 * time.Second
)

// Handler is a route that receives the request's context alongside fasthttp's.
type Handler func(ctx context.Context, rc *fasthttp.RequestCtx)

// Adapter turns Handlers into fasthttp handlers with a bounded upstream deadline.
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Adapter{timeout: timeout}
}

// Wrap runs next with a context carrying the request id and the adapter's deadline.
// The context is cancelled as soon as next returns.
func (a *Adapter) Wrap(next Handler) fasthttp.RequestHandler {
	return func(rc *fasthttp.RequestCtx) {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		next(logger.ContextWithRequestID(ctx, RequestID(rc)), rc)
	}
}

// AssignRequestID tags every request, routed or not, with an id and echoes it
// on the response. A usable incoming X-Request-ID is kept.
func AssignRequestID(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(rc *fasthttp.RequestCtx) {
		RequestID(rc)
		next(rc)
	}
}

// RequestID returns the id assigned to rc, assigning one on first use.
func RequestID(rc *fasthttp.RequestCtx) string {
	if id, ok := rc.UserValue(userValueRequestID).(string); ok && id != "" {
		return id
	}
	id := strings.TrimSpace(string(rc.Request.Header.Peek(HeaderRequestID)))
	if id == "" || len(id) > maxRequestIDLen {
		id = uuid.NewString()
	}
	rc.SetUserValue(userValueRequestID, id)
	rc.Response.Header.Set(HeaderRequestID, id)
	return id
}
