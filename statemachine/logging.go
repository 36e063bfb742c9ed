package statemachine

import (
	"log/slog"
	"time"
)

// Logger receives the two verbose-mode events of a machine.
type Logger interface {
	// StateEntered fires on the first dispatch of a state, with the time
	// elapsed since the run started.
	StateEntered(machine, runID, state string, runElapsed time.Duration)
	// RunStopped fires when Done stops a machine that had an active state.
	RunStopped(machine, runID string, runElapsed time.Duration)
}

// DefaultLogger implements Logger using slog.
type DefaultLogger struct {
	logger *slog.Logger
}

// NewDefaultLogger creates a logger that writes to slog.Default().
func NewDefaultLogger() *DefaultLogger {
	return NewSlogLogger(nil)
}

// NewSlogLogger creates a logger that writes to the given slog logger.
// A nil logger means slog.Default().
func NewSlogLogger(logger *slog.Logger) *DefaultLogger {
	if logger == nil {
		logger = slog.Default()
	}

	return &DefaultLogger{
		logger: logger,
	}
}

func (l *DefaultLogger) StateEntered(machine, runID, state string, runElapsed time.Duration) {
	l.logger.Info("Entering state",
		"machine", machine,
		"run_id", runID,
		"state", state,
		"elapsed", formatSeconds(runElapsed),
	)
}

func (l *DefaultLogger) RunStopped(machine, runID string, runElapsed time.Duration) {
	l.logger.Info("Stopped state machine execution",
		"machine", machine,
		"run_id", runID,
		"elapsed", formatSeconds(runElapsed),
	)
}

// formatSeconds truncates a run-relative time to millisecond precision.
func formatSeconds(d time.Duration) string {
	return time.Duration(d.Milliseconds() * int64(time.Millisecond)).String()
}
