package relay

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"

	"github.com/robby/ghboard/internal/codec"
	"github.com/robby/ghboard/internal/gh"
)

// errorResponse is the uniform error body for every failing route.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func respondJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"Failed to encode response"}`)
	}
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

// mapError translates an upstream error into a status code and client message.
func mapError(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, codec.ErrEmptyTitle):
		return http.StatusBadRequest, msgEmptyTitle
	case errors.Is(err, gh.ErrIssueNotFound):
		return http.StatusNotFound, msgNotFound
	default:
		return http.StatusInternalServerError, fallback
	}
}
