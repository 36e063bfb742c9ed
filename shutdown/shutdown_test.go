package shutdown

import (
	"context"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitDone(t *testing.T, ctx context.Context) {
	t.Helper()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled")
	}
}

func TestTriggerRunsHooksInReverse(t *testing.T) {
	t.Parallel()

	h := New()

	var (
		mu    sync.Mutex
		order []string
		alive []bool
	)

	for _, name := range []string{"telemetry", "metrics", "robot"} {
		h.BeforeShutdown(name, func(ctx context.Context) {
			mu.Lock()
			defer mu.Unlock()

			order = append(order, name)
			alive = append(alive, ctx.Err() == nil)
		})
	}

	ctx := h.Listen(t.Context())

	select {
	case <-ctx.Done():
		t.Fatal("context should not be cancelled before a trigger")
	default:
	}

	h.Trigger()
	h.Trigger()
	waitDone(t, ctx)

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, []string{"robot", "metrics", "telemetry"}, order)
	assert.Equal(t, []bool{true, true, true}, alive)
}

func TestSignal(t *testing.T) {
	t.Parallel()

	h := New()

	called := make(chan struct{})
	h.BeforeShutdown("robot", func(context.Context) { close(called) })

	ctx := h.Listen(t.Context())

	// Delivered straight to the trigger channel so the test process is not signalled.
	h.trigger <- syscall.SIGTERM

	waitDone(t, ctx)

	select {
	case <-called:
	default:
		t.Fatal("hook was not called")
	}
}

func TestParentCancelSkipsHooks(t *testing.T) {
	t.Parallel()

	h := New()

	var called bool
	h.BeforeShutdown("robot", func(context.Context) { called = true })

	parent, cancel := context.WithCancel(t.Context())
	ctx := h.Listen(parent)

	cancel()
	waitDone(t, ctx)

	require.False(t, called)
}
