package statemachine

import "time"

// Descriptor is the immutable metadata of a registered state.
type Descriptor struct {
	name       string
	kind       Kind
	first      bool
	mustFinish bool
	duration   time.Duration
	next       string
	body       StateFunc
}

// Name returns the state's unique name.
func (d Descriptor) Name() string { return d.name }

// Kind returns whether the state is plain, timed or the default state.
func (d Descriptor) Kind() Kind { return d.kind }

// IsFirst reports whether a fresh run starts in this state.
func (d Descriptor) IsFirst() bool { return d.first }

// IsDefault reports whether this is the fallback state.
func (d Descriptor) IsDefault() bool { return d.kind == KindDefault }

// MustFinish reports whether the state keeps running once engagement is withdrawn.
func (d Descriptor) MustFinish() bool { return d.mustFinish }

// Duration returns how long a timed state runs, or Forever for any other kind.
func (d Descriptor) Duration() time.Duration { return d.duration }

// Next returns the state that follows a timed state, if any.
func (d Descriptor) Next() (string, bool) { return d.next, d.next != "" }

// Registry holds the validated states of one machine type. It never changes
// after BuildRegistry returns and can be read without synchronization.
type Registry struct {
	states       []Descriptor
	index        map[string]int
	firstState   string
	defaultState string
}

// BuildRegistry validates a registration table and indexes it by name.
// Tables are checked in declaration order and the first violation is returned.
// Next targets are not resolved here; an unknown target surfaces as
// ErrUnknownState when the transition is attempted.
func BuildRegistry(specs []StateSpec) (*Registry, error) {
	reg := &Registry{
		states: make([]Descriptor, 0, len(specs)),
		index:  make(map[string]int, len(specs)),
	}

	for _, spec := range specs {
		if spec.Name == "" {
			return nil, ErrStateNameRequired
		}

		if _, exists := reg.index[spec.Name]; exists {
			return nil, WrapStateError(spec.Name, ErrDuplicateState)
		}

		desc := Descriptor{
			name:       spec.Name,
			kind:       spec.Kind,
			first:      spec.First,
			mustFinish: spec.MustFinish,
			duration:   Forever,
			body:       spec.Body,
		}

		switch spec.Kind {
		case KindTimed:
			if spec.Duration <= 0 {
				return nil, WrapStateError(spec.Name, ErrInvalidDuration)
			}

			desc.duration = spec.Duration
			desc.next = spec.Next
		case KindPlain, KindDefault:
		default:
			return nil, WrapStateError(spec.Name, ErrUnknownKind)
		}

		if desc.first {
			if reg.firstState != "" {
				return nil, WrapStateError(spec.Name, ErrMultipleFirstStates)
			}

			reg.firstState = desc.name
		}

		if desc.IsDefault() {
			if desc.first {
				return nil, WrapStateError(spec.Name, ErrDefaultStateFirst)
			}

			if reg.defaultState != "" {
				return nil, WrapStateError(spec.Name, ErrMultipleDefaultStates)
			}

			reg.defaultState = desc.name
		}

		reg.index[desc.name] = len(reg.states)
		reg.states = append(reg.states, desc)
	}

	if reg.firstState == "" {
		return nil, ErrNoFirstState
	}

	return reg, nil
}

// First returns the name of the entry state of every fresh run.
func (r *Registry) First() string {
	return r.firstState
}

// Default returns the name of the fallback state, if one was declared.
func (r *Registry) Default() (string, bool) {
	return r.defaultState, r.defaultState != ""
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	idx, ok := r.index[name]
	if !ok {
		return Descriptor{}, false
	}

	return r.states[idx], true
}

// Names returns the registered state names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.states))
	for i, desc := range r.states {
		names[i] = desc.name
	}

	return names
}

// Descriptors returns a copy of all descriptors in declaration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, len(r.states))
	copy(out, r.states)

	return out
}

// Len returns the number of registered states.
func (r *Registry) Len() int {
	return len(r.states)
}

func (r *Registry) indexOf(name string) (int, bool) {
	idx, ok := r.index[name]

	return idx, ok
}
