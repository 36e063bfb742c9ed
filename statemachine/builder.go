package statemachine

import "time"

// StateOption sets an attribute of a state declared through a Builder.
type StateOption func(*StateSpec)

// First marks the state as the entry point of every fresh run.
func First() StateOption {
	return func(s *StateSpec) {
		s.First = true
	}
}

// MustFinish keeps the state running after engagement is withdrawn.
func MustFinish() StateOption {
	return func(s *StateSpec) {
		s.MustFinish = true
	}
}

// Next names the state that follows a timed state.
func Next(name string) StateOption {
	return func(s *StateSpec) {
		s.Next = name
	}
}

// Builder provides a fluent API for declaring the states of a machine.
type Builder struct {
	name  string
	specs []StateSpec
}

// NewBuilder creates a new state machine builder.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:  name,
		specs: []StateSpec{},
	}
}

// State declares a plain state.
func (b *Builder) State(name string, body StateFunc, opts ...StateOption) *Builder {
	return b.add(StateSpec{Name: name, Kind: KindPlain, Body: body}, opts)
}

// Timed declares a state that runs for duration before moving to its next state.
func (b *Builder) Timed(name string, duration time.Duration, body StateFunc, opts ...StateOption) *Builder {
	return b.add(StateSpec{Name: name, Kind: KindTimed, Duration: duration, Body: body}, opts)
}

// Default declares the state that runs whenever no other state is active.
func (b *Builder) Default(name string, body StateFunc) *Builder {
	return b.add(StateSpec{Name: name, Kind: KindDefault, Body: body}, nil)
}

// Specs returns the declared table.
func (b *Builder) Specs() []StateSpec {
	out := make([]StateSpec, len(b.specs))
	copy(out, b.specs)

	return out
}

// Build validates the declared table and constructs the machine.
func (b *Builder) Build(opts ...Option) (*Machine, error) {
	return New(b.name, b.specs, opts...)
}

func (b *Builder) add(spec StateSpec, opts []StateOption) *Builder {
	for _, opt := range opts {
		opt(&spec)
	}

	b.specs = append(b.specs, spec)

	return b
}
