package relay

import (
	"time"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/robby/ghboard/internal/httpcontext"
)

// Route prefixes. Both are served so clients written against either path keep working.
var taskPrefixes = []string{"/tasks", "/api/tasks"}

// Options configures the relay HTTP surface.
type Options struct {
	// CORSOrigin is sent as Access-Control-Allow-Origin; empty disables CORS headers.
	CORSOrigin string
	Logger     *zap.Logger
}

// NewRouter mounts the task routes and the health check.
func NewRouter(h *Handler) *router.Router {
	r := router.New()

	r.GET("/health", h.Health)
	for _, prefix := range taskPrefixes {
		r.GET(prefix, h.adapter.Wrap(h.ListTasks))
		r.POST(prefix, h.adapter.Wrap(h.CreateTask))
		r.PUT(prefix+"/{id}", h.adapter.Wrap(h.UpdateTask))
		r.DELETE(prefix+"/{id}", h.adapter.Wrap(h.DeleteTask))
	}

	r.NotFound = func(ctx *fasthttp.RequestCtx) {
		respondJSON(ctx, fasthttp.StatusNotFound, errorResponse{Error: "Route not found"})
	}
	r.MethodNotAllowed = func(ctx *fasthttp.RequestCtx) {
		respondJSON(ctx, fasthttp.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
	}

	return r
}

// NewHandlerChain wraps the router with request ids, CORS and access logging.
func NewHandlerChain(h *Handler, opts Options) fasthttp.RequestHandler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return accessLog(log, httpcontext.AssignRequestID(cors(opts.CORSOrigin, NewRouter(h).Handler)))
}

func cors(origin string, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	if origin == "" {
		return next
	}
	return func(ctx *fasthttp.RequestCtx) {
		ctx.Response.Header.Set("Access-Control-Allow-Origin", origin)
		ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type, "+httpcontext.HeaderRequestID)
		ctx.Response.Header.Set("Access-Control-Expose-Headers", httpcontext.HeaderRequestID)

		if ctx.IsOptions() {
			ctx.SetStatusCode(fasthttp.StatusNoContent)
			return
		}
		next(ctx)
	}
}

func accessLog(log *zap.Logger, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)
		log.Info("request",
			zap.String("method", string(ctx.Method())),
			zap.String("path", string(ctx.Path())),
			zap.Int("status", ctx.Response.StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", httpcontext.RequestID(ctx)),
		)
	}
}

// NewServer builds the fasthttp server for the relay.
func NewServer(handler fasthttp.RequestHandler, readTimeout, writeTimeout time.Duration) *fasthttp.Server {
	return &fasthttp.Server{
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  2 * time.Minute,
		Name:         "ghboard-relay",
	}
}
