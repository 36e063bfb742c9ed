// Package shutdown turns SIGINT/SIGTERM into context cancellation and runs
// cleanup hooks first.
package shutdown

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

type hook struct {
	name string
	fn   func(ctx context.Context)
}

// Handler runs registered hooks, most recent first, when a signal arrives or
// Trigger is called, and then cancels the context returned by Listen.
type Handler struct {
	mu      sync.Mutex
	hooks   []hook
	trigger chan os.Signal
	once    sync.Once
}

// New creates a handler that is not yet listening.
func New() *Handler {
	return &Handler{trigger: make(chan os.Signal, 1)}
}

// BeforeShutdown registers fn to run before the context is cancelled. The
// context passed to fn is still alive.
func (h *Handler) BeforeShutdown(name string, fn func(ctx context.Context)) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.hooks = append(h.hooks, hook{name: name, fn: fn})
}

// Trigger starts the shutdown without a signal. Extra calls are ignored.
func (h *Handler) Trigger() {
	select {
	case h.trigger <- os.Interrupt:
	default:
	}
}

// Listen subscribes to SIGINT and SIGTERM and returns a context cancelled
// once the hooks have run.
func (h *Handler) Listen(parent context.Context) context.Context {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(parent)

	go func() {
		defer signal.Stop(signals)

		var sig os.Signal

		select {
		case sig = <-signals:
		case sig = <-h.trigger:
		case <-parent.Done():
			cancel()

			return
		}

		slog.Warn("Received " + sig.String() + ", shutting down...")

		h.run(ctx)
		cancel()
	}()

	return ctx
}

func (h *Handler) run(ctx context.Context) {
	h.once.Do(func() {
		h.mu.Lock()
		hooks := h.hooks
		h.hooks = nil
		h.mu.Unlock()

		for i := len(hooks) - 1; i >= 0; i-- {
			slog.Debug("Running shutdown hook", "hook", hooks[i].name)
			hooks[i].fn(ctx)
		}
	})
}

var defaultHandler = New() //nolint:gochecknoglobals

// BeforeShutdown registers a hook on the default handler.
func BeforeShutdown(name string, fn func(ctx context.Context)) {
	defaultHandler.BeforeShutdown(name, fn)
}

// Shutdown triggers the default handler.
func Shutdown() {
	defaultHandler.Trigger()
}

// SetupHandler starts the default handler.
func SetupHandler(parent context.Context) context.Context {
	return defaultHandler.Listen(parent)
}
