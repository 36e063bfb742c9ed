package robot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"facette.io/natsort"
	"github.com/alitto/pond/v2"
	"github.com/amp-labs/magicbot/logger"
	"github.com/looplab/fsm"
	"go.uber.org/atomic"
)

// DefaultPeriod is the control loop period used when none is configured.
const DefaultPeriod = 20 * time.Millisecond

// Robot runs its components and the selected autonomous routine from one
// fixed-period loop. Components and routines must be added before Run or
// Tick is first called; mode requests and autonomous selection are safe to
// make from any goroutine.
type Robot struct {
	name   string
	period time.Duration
	logger *slog.Logger

	components  []Component
	autonomous  map[string]Autonomous
	defaultAuto string

	active     Autonomous
	activeName string

	periodic map[Mode]func() error
	inits    map[Mode]func()
	sinks    []StatusSink

	modes     *fsm.FSM
	requested *atomic.String
	selected  *atomic.String
	tick      *atomic.Uint64
	booted    *atomic.Bool
	closed    *atomic.Bool
	pool      pond.Pool
}

// Option configures a Robot.
type Option func(*Robot)

// WithName sets the robot name used in logs, metrics and status.
func WithName(name string) Option {
	return func(r *Robot) {
		r.name = name
	}
}

// WithPeriod sets the control loop period.
func WithPeriod(period time.Duration) Option {
	return func(r *Robot) {
		if period > 0 {
			r.period = period
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Robot) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithPeriodic registers a hook run on every tick spent in mode, before
// components execute.
func WithPeriodic(mode Mode, fn func() error) Option {
	return func(r *Robot) {
		r.periodic[mode] = fn
	}
}

// WithModeInit registers a hook run each time mode is entered.
func WithModeInit(mode Mode, fn func()) Option {
	return func(r *Robot) {
		r.inits[mode] = fn
	}
}

// WithStatusSink registers a sink for status snapshots.
func WithStatusSink(sink StatusSink) Option {
	return func(r *Robot) {
		r.sinks = append(r.sinks, sink)
	}
}

// New creates a disabled robot.
func New(opts ...Option) *Robot {
	r := &Robot{
		name:       "robot",
		period:     DefaultPeriod,
		logger:     slog.Default(),
		autonomous: make(map[string]Autonomous),
		periodic:   make(map[Mode]func() error),
		inits:      make(map[Mode]func()),
		requested:  atomic.NewString(string(ModeDisabled)),
		selected:   atomic.NewString(""),
		tick:       atomic.NewUint64(0),
		booted:     atomic.NewBool(false),
		closed:     atomic.NewBool(false),
		pool:       pond.NewPool(1),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.modes = r.newModeMachine()

	return r
}

// Name returns the robot name.
func (r *Robot) Name() string {
	return r.name
}

// Period returns the control loop period.
func (r *Robot) Period() time.Duration {
	return r.period
}

// Mode returns the current mode.
func (r *Robot) Mode() Mode {
	return Mode(r.modes.Current())
}

// Ticks returns the number of ticks run so far.
func (r *Robot) Ticks() uint64 {
	return r.tick.Load()
}

// AddComponent registers components executed while the robot is enabled.
func (r *Robot) AddComponent(components ...Component) {
	r.components = append(r.components, components...)
}

// AddAutonomous registers an autonomous routine under name. At most one
// routine may be the default.
func (r *Robot) AddAutonomous(name string, routine Autonomous, isDefault bool) error {
	if name == "" {
		return ErrAutonomousNameRequired
	}

	if _, exists := r.autonomous[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAutonomous, name)
	}

	if isDefault {
		if r.defaultAuto != "" {
			return fmt.Errorf("%w: %s and %s", ErrMultipleDefaultAutonomous, r.defaultAuto, name)
		}

		r.defaultAuto = name
	}

	r.autonomous[name] = routine

	return nil
}

// AutonomousModes returns the registered routine names in natural order.
func (r *Robot) AutonomousModes() []string {
	names := make([]string, 0, len(r.autonomous))
	for name := range r.autonomous {
		names = append(names, name)
	}

	natsort.Sort(names)

	return names
}

// DefaultAutonomous returns the name of the default routine, if any.
func (r *Robot) DefaultAutonomous() string {
	return r.defaultAuto
}

// SelectAutonomous picks the routine run the next time autonomous mode is
// entered. An empty name clears the selection.
func (r *Robot) SelectAutonomous(name string) error {
	if name != "" {
		if _, ok := r.autonomous[name]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownAutonomous, name)
		}
	}

	r.selected.Store(name)

	return nil
}

// RequestMode asks the loop to switch to mode at the start of the next tick.
func (r *Robot) RequestMode(mode Mode) error {
	if _, err := ParseMode(string(mode)); err != nil {
		return err
	}

	r.requested.Store(string(mode))

	return nil
}

// Tick runs one control loop iteration: it applies any pending mode request
// and then runs the current mode. The first tick also enters disabled, so
// components are disabled and the disabled init hook runs once at startup. Errors from hooks, routines and
// components are logged, counted and joined into the returned error; they
// never stop the other components from running.
func (r *Robot) Tick(ctx context.Context) error {
	var errs []error

	if r.booted.CompareAndSwap(false, true) {
		r.disableComponents()
		r.runInit(ModeDisabled)
	}

	if err := r.transition(ctx, Mode(r.requested.Load())); err != nil {
		errs = append(errs, err)
	}

	mode := r.Mode()

	if hook := r.periodic[mode]; hook != nil {
		errs = append(errs, r.call(string(mode)+"_periodic", hook))
	}

	switch mode {
	case ModeAutonomous:
		if r.active != nil {
			errs = append(errs, r.call(r.activeName, r.active.Periodic))
		}

		errs = append(errs, r.executeComponents()...)
	case ModeTeleop:
		errs = append(errs, r.executeComponents()...)
	case ModeDisabled, ModeTest:
	}

	r.tick.Inc()

	return errors.Join(errs...)
}

// Run ticks the robot every period until ctx is cancelled. On cancellation
// the robot is disabled and pending status deliveries are flushed.
func (r *Robot) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	r.logger.Info("Starting control loop", "robot", r.name, "period", r.period.String())

	for {
		select {
		case <-ctx.Done():
			r.shutdown(context.WithoutCancel(ctx))

			return nil
		case <-ticker.C:
			start := time.Now()
			mode := r.Mode()

			_ = r.Tick(ctx)

			cycleTime := time.Since(start)
			loopCycleSeconds.WithLabelValues(r.name, string(mode)).Observe(cycleTime.Seconds())

			if cycleTime > r.period {
				loopOverrunsTotal.WithLabelValues(r.name).Inc()

				attrs := []any{
					"robot", r.name,
					"mode", mode,
					"cycle_time", cycleTime.String(),
					"period", r.period.String(),
				}

				if cycleTime > 2*r.period {
					r.logger.Error("Control loop cycle time far exceeds period", attrs...)
				} else {
					r.logger.Warn("Control loop cycle time exceeds period", attrs...)
				}
			}
		}
	}
}

// Close stops status delivery after flushing queued snapshots. The robot
// keeps ticking but no further snapshots are delivered.
func (r *Robot) Close() {
	if r.closed.CompareAndSwap(false, true) {
		r.pool.StopAndWait()
	}
}

func (r *Robot) shutdown(ctx context.Context) {
	r.requested.Store(string(ModeDisabled))

	if err := r.transition(ctx, ModeDisabled); err != nil {
		r.logger.Error("Failed to disable robot", "robot", r.name, "error", err)
	}

	r.Close()

	r.logger.Info("Stopped control loop", "robot", r.name, "ticks", r.tick.Load())
}

func (r *Robot) call(name string, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}

	componentErrorsTotal.WithLabelValues(r.name, name).Inc()

	err = logger.AnnotateError(fmt.Errorf("%s: %w", name, err), "component", name, "tick", r.tick.Load())
	r.logger.Warn("Component returned an error", "robot", r.name, "error", err)

	return err
}

func (r *Robot) executeComponents() []error {
	var errs []error

	for _, c := range r.components {
		errs = append(errs, r.call(componentName(c), c.Execute))
	}

	return errs
}

func (r *Robot) enableComponents() {
	for _, c := range r.components {
		c.OnEnabled()
	}
}

func (r *Robot) disableComponents() {
	for _, c := range r.components {
		c.OnDisabled()
	}
}

func (r *Robot) runInit(mode Mode) {
	if hook := r.inits[mode]; hook != nil {
		hook()
	}
}

// startAutonomous picks the selected routine, falling back to the default
// and then to a routine that does nothing.
func (r *Robot) startAutonomous() {
	name := r.selected.Load()
	if name == "" {
		name = r.defaultAuto
	}

	routine, ok := r.autonomous[name]
	if !ok {
		r.logger.Warn("No autonomous mode selected", "robot", r.name)

		routine, name = noopAutonomous{}, ""
	} else {
		r.logger.Info("Running autonomous mode", "robot", r.name, "autonomous", name)
	}

	r.active, r.activeName = routine, name
	r.active.OnEnabled()
}

func (r *Robot) stopAutonomous() {
	if r.active != nil {
		r.active.OnDisabled()
	}

	r.active, r.activeName = nil, ""
}

func (r *Robot) modeEntered(from, to Mode) {
	modeTransitionsTotal.WithLabelValues(r.name, string(from), string(to)).Inc()
	r.logger.Info("Robot mode changed", "robot", r.name, "from", from, "to", to)
	r.publish(r.status(from, to))
}
