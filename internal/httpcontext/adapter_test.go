package httpcontext

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/robby/ghboard/internal/logger"
)

func TestWrap_ContextCarriesRequestIDAndDeadline(t *testing.T) {
	var rc fasthttp.RequestCtx
	var seen context.Context

	NewAdapter(time.Second).Wrap(func(ctx context.Context, _ *fasthttp.RequestCtx) {
		seen = ctx
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)
	})(&rc)

	reqID := logger.RequestID(seen)
	_, err := uuid.Parse(reqID)
	require.NoError(t, err)
	assert.Equal(t, reqID, string(rc.Response.Header.Peek(HeaderRequestID)))
	assert.ErrorIs(t, seen.Err(), context.Canceled, "context ends with the handler")
}

func TestAssignRequestID_KeepsIncomingID(t *testing.T) {
	var rc fasthttp.RequestCtx
	rc.Request.Header.Set(HeaderRequestID, "abc-123")

	var inner string
	AssignRequestID(NewAdapter(0).Wrap(func(ctx context.Context, _ *fasthttp.RequestCtx) {
		inner = logger.RequestID(ctx)
	}))(&rc)

	assert.Equal(t, "abc-123", inner)
	assert.Equal(t, "abc-123", string(rc.Response.Header.Peek(HeaderRequestID)))
}

func TestRequestID_ReplacesOversizedHeader(t *testing.T) {
	var rc fasthttp.RequestCtx
	rc.Request.Header.Set(HeaderRequestID, strings.Repeat("x", maxRequestIDLen+1))

	id := RequestID(&rc)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, RequestID(&rc), "the id is stable for the request")
}
