// Package lifecycle runs a long-lived component until it fails or the process is
// told to stop, then stops registered components newest first.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// StopFunc stops one component within the deadline carried by ctx.
type StopFunc func(ctx context.Context) error

type component struct {
	name string
	stop StopFunc
}

// Manager owns the stop order of the relay's or board's components.
type Manager struct {
	timeout time.Duration
	signals []os.Signal
	logger  *zap.Logger

	mu         sync.Mutex
	components []component
}

// Option configures a Manager.
type Option func(*Manager)

// WithSignals replaces the default SIGINT/SIGTERM set.
func WithSignals(sigs ...os.Signal) Option {
	return func(m *Manager) { m.signals = sigs }
}

func New(timeout time.Duration, logger *zap.Logger, opts ...Option) *Manager {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		timeout: timeout,
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register adds a component to stop. Nil stop funcs are ignored.
func (m *Manager) Register(name string, stop StopFunc) {
	if stop == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, component{name: name, stop: stop})
}

// Run calls serve and blocks until it returns, ctx is done, or a stop signal
// arrives. It then stops every registered component. A serve error is returned
// joined with any stop errors; a nil serve return is treated as a clean exit.
func (m *Manager) Run(ctx context.Context, serve func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sigCtx, cancel := signal.NotifyContext(ctx, m.signals...)
	defer cancel()

	serveErr := make(chan error, 1)
	go func() { serveErr <- serve() }()

	var runErr error
	select {
	case <-sigCtx.Done():
		m.logger.Info("shutdown requested")
	case err := <-serveErr:
		if err != nil {
			m.logger.Error("component failed", zap.Error(err))
			runErr = fmt.Errorf("serve: %w", err)
		}
	}

	return errors.Join(runErr, m.Stop(context.Background()))
}

// Stop stops registered components in reverse registration order within the
// manager's timeout. Every component is stopped even if an earlier one fails.
// Components are forgotten once stopped, so a second Stop is a no-op.
func (m *Manager) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.mu.Lock()
	components := m.components
	m.components = nil
	m.mu.Unlock()

	var result error
	for i := len(components) - 1; i >= 0; i-- {
		c := components[i]
		start := time.Now()
		if err := c.stop(ctx); err != nil {
			m.logger.Error("stop failed", zap.String("component", c.name), zap.Error(err))
			result = errors.Join(result, fmt.Errorf("%s: %w", c.name, err))
			continue
		}
		m.logger.Info("component stopped", zap.String("component", c.name), zap.Duration("took", time.Since(start)))
	}
	return result
}
