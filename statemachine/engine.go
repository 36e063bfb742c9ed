package statemachine

import (
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

const noState = -1

// stateRun holds the per-run fields of one registered state.
type stateRun struct {
	ran       bool
	startTime time.Duration
	expires   time.Duration
}

// Machine executes the states of a Registry, one tick per call to Execute.
//
// A Machine is not safe for concurrent use. Exactly one periodic driver may
// call Execute; state bodies run on that driver's goroutine and may call
// NextState, NextStateNow and Done on the same machine.
type Machine struct {
	name     string
	registry *Registry
	runs     []stateRun

	// index of the currently executing state, or noState
	current      int
	defaultState int

	// engaged is true while a run is in progress
	engaged bool
	// shouldEngage is the one-shot request of an external party, cleared every tick
	shouldEngage bool

	runStart time.Time
	runID    string
	runSpan  trace.Span

	verbose bool
	clock   Clock
	logger  Logger
	tracer  trace.Tracer
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock replaces the system clock, typically with a fake one in tests.
func WithClock(clock Clock) Option {
	return func(m *Machine) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithVerbose enables the state entry and run stop log events.
func WithVerbose(verbose bool) Option {
	return func(m *Machine) {
		m.verbose = verbose
	}
}

// WithLogger sets the receiver of verbose log events.
func WithLogger(logger Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithTracer sets the tracer used for run spans. The global tracer provider
// is used otherwise.
func WithTracer(tracer trace.Tracer) Option {
	return func(m *Machine) {
		if tracer != nil {
			m.tracer = tracer
		}
	}
}

// New builds the registry for specs and returns a machine over it.
// Registry validation errors are returned unchanged.
func New(name string, specs []StateSpec, opts ...Option) (*Machine, error) {
	reg, err := BuildRegistry(specs)
	if err != nil {
		return nil, err
	}

	return NewMachine(name, reg, opts...), nil
}

// NewMachine returns an idle machine over an already built registry.
func NewMachine(name string, registry *Registry, opts ...Option) *Machine {
	m := &Machine{
		name:         name,
		registry:     registry,
		runs:         make([]stateRun, registry.Len()),
		current:      noState,
		defaultState: noState,
		clock:        SystemClock,
		logger:       NewDefaultLogger(),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.tracer == nil {
		m.tracer = defaultTracer()
	}

	if defaultName, ok := registry.Default(); ok {
		m.defaultState, _ = registry.indexOf(defaultName)
	}

	for i := range m.runs {
		m.runs[i].expires = Forever
	}

	// Time before the first run is measured from construction.
	m.runStart = m.clock.Now()

	return m
}

// Name returns the machine's name.
func (m *Machine) Name() string {
	return m.name
}

// Registry returns the machine's registry.
func (m *Machine) Registry() *Registry {
	return m.registry
}

// SetVerbose toggles the state entry and run stop log events.
func (m *Machine) SetVerbose(verbose bool) {
	m.verbose = verbose
}

// IsExecuting reports whether a run is in progress.
func (m *Machine) IsExecuting() bool {
	return m.engaged
}

// CurrentState returns the name of the active state, or "" if none.
func (m *Machine) CurrentState() string {
	if m.current == noState {
		return ""
	}

	return m.registry.states[m.current].name
}

type engageOptions struct {
	initialState string
	force        bool
}

// EngageOption adjusts a call to Engage.
type EngageOption func(*engageOptions)

// WithInitialState starts the run in the named state instead of the first state.
func WithInitialState(name string) EngageOption {
	return func(o *engageOptions) {
		o.initialState = name
	}
}

// WithForce restarts the run even if a state is already active.
func WithForce() EngageOption {
	return func(o *engageOptions) {
		o.force = true
	}
}

// Engage signals that the machine should run its states on the next tick.
// It must be called on every tick to keep a run going; states not marked
// must-finish stop as soon as a tick passes without it.
//
// When forced, or when nothing but the default state is active, the entry
// state is selected right away and will restart cleanly. Nothing is
// dispatched until Execute.
func (m *Machine) Engage(opts ...EngageOption) error {
	var options engageOptions
	for _, opt := range opts {
		opt(&options)
	}

	m.shouldEngage = true

	if options.force || m.current == noState || m.current == m.defaultState {
		target := options.initialState
		if target == "" {
			target = m.registry.firstState
		}

		return m.NextState(target)
	}

	return nil
}

// NextState makes name the current state. It is dispatched, with
// initialCall set, by the next Execute.
func (m *Machine) NextState(name string) error {
	idx, ok := m.registry.indexOf(name)
	if !ok {
		return WrapStateError(name, ErrUnknownState)
	}

	m.runs[idx].ran = false
	m.current = idx

	return nil
}

// NextStateNow switches to name and executes it within the same tick.
// Each chained call recurses into Execute; bounding the chain is up to the caller.
func (m *Machine) NextStateNow(name string) error {
	err := m.NextState(name)
	if err != nil {
		return err
	}

	return m.Execute()
}

// Done stops the current run. It is safe to call at any time.
func (m *Machine) Done() {
	m.done(m.clock.Now())
}

func (m *Machine) done(now time.Time) {
	elapsed := now.Sub(m.runStart)

	if m.verbose && m.current != noState {
		m.logger.RunStopped(m.name, m.runID, elapsed)
	}

	if m.engaged {
		runsStoppedTotal.WithLabelValues(sanitizeMachine(m.name)).Inc()
		endRunSpan(m.runSpan, elapsed)
		m.runSpan = nil
	}

	m.current = noState
	m.engaged = false
}

// OnEnabled implements the component lifecycle. Machines need no setup.
func (m *Machine) OnEnabled() {}

// OnDisabled implements the component lifecycle by stopping the run.
func (m *Machine) OnDisabled() {
	m.Done()
}

// Execute runs one tick. The order of the checks below matters: expiry is
// evaluated before engagement, and the default state is only considered
// once nothing else is left to run.
func (m *Machine) Execute() error {
	now := m.clock.Now()

	if !m.engaged {
		if m.shouldEngage {
			m.startRun(now)
		} else if m.defaultState == noState {
			return nil
		}
	}

	defer func() {
		m.shouldEngage = false
	}()

	// tm is the time since the run started
	tm := now.Sub(m.runStart)
	state := m.current

	// Chained timed states start where the previous one expired rather
	// than at the tick, so the chain does not drift.
	newStateStart := tm

	if state != noState && m.runs[state].ran && m.runs[state].expires < tm {
		desc := m.registry.states[state]
		newStateStart = m.runs[state].expires

		stateExpirationsTotal.WithLabelValues(sanitizeMachine(m.name), desc.name).Inc()
		recordStateExpired(m.runSpan, desc)

		switch {
		case desc.next != "":
			err := m.NextState(desc.next)
			if err != nil {
				m.stateFailed(desc.name, err)

				return err
			}

			state = m.current
		case m.shouldEngage:
			// the last state of a chain expired while still engaged: start over
			_ = m.NextState(m.registry.firstState)
			state = m.current
		default:
			state = noState
		}
	}

	if state != noState && !m.shouldEngage && !m.registry.states[state].mustFinish {
		state = noState
	}

	if state == noState && m.defaultState != noState {
		state = m.defaultState

		if m.current != m.defaultState {
			m.current = m.defaultState
			m.runs[state].ran = false
		}
	}

	if state == noState {
		m.done(now)

		return nil
	}

	return m.dispatch(state, tm, newStateStart)
}

func (m *Machine) dispatch(state int, tm, newStateStart time.Duration) error {
	desc := m.registry.states[state]
	run := &m.runs[state]

	initialCall := !run.ran
	if initialCall {
		run.ran = true
		run.startTime = newStateStart
		run.expires = saturatingAdd(newStateStart, desc.duration)

		stateEntriesTotal.WithLabelValues(sanitizeMachine(m.name), desc.name).Inc()
		recordStateEntered(m.runSpan, desc, tm)

		if m.verbose {
			m.logger.StateEntered(m.name, m.runID, desc.name, tm)
		}
	}

	if desc.body == nil {
		return nil
	}

	err := desc.body(tm-run.startTime, initialCall)
	if err != nil {
		m.stateFailed(desc.name, err)

		return WrapStateError(desc.name, err)
	}

	return nil
}

func (m *Machine) startRun(now time.Time) {
	m.runStart = now
	m.engaged = true
	m.runID = uuid.New().String()
	m.runSpan = startRunSpan(m.tracer, m.name, m.runID)

	runsStartedTotal.WithLabelValues(sanitizeMachine(m.name)).Inc()
}

func (m *Machine) stateFailed(state string, err error) {
	stateErrorsTotal.WithLabelValues(sanitizeMachine(m.name), state).Inc()
	recordStateError(m.runSpan, state, err)
}
