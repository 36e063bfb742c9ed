package statemachine

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Forever is the duration of every state that is not timed. Expiry
// arithmetic saturates at Forever, so such states never expire.
const Forever = time.Duration(math.MaxInt64)

// Kind classifies how a state behaves over time.
type Kind int

const (
	// KindPlain runs until something else claims the machine.
	KindPlain Kind = iota
	// KindTimed runs for a fixed duration and then moves on to its next state.
	KindTimed
	// KindDefault runs only when no other state is active.
	KindDefault
)

var kindNames = map[Kind]string{
	KindPlain:   "plain",
	KindTimed:   "timed",
	KindDefault: "default",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}

	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty value is a plain state.
func (k *Kind) UnmarshalText(text []byte) error {
	value := strings.ToLower(strings.TrimSpace(string(text)))
	if value == "" {
		*k = KindPlain

		return nil
	}

	for kind, name := range kindNames {
		if name == value {
			*k = kind

			return nil
		}
	}

	return fmt.Errorf("%w: %q", ErrUnknownKind, value)
}

// StateFunc is the body of a state. It receives the time spent in the state
// so far and whether this is the first dispatch since the state was entered.
// A returned error aborts the tick and is handed back to the caller of Execute.
type StateFunc func(elapsed time.Duration, initialCall bool) error

// StateSpec is one row of a registration table.
type StateSpec struct {
	Name string
	Kind Kind

	// Duration is only meaningful for timed states and must be positive there.
	Duration time.Duration

	// Next names the state that follows a timed state once it expires.
	// Empty means the timed state is the last one in its chain.
	Next string

	First      bool
	MustFinish bool

	// Body may be nil, in which case dispatching the state does nothing.
	Body StateFunc
}

// saturatingAdd adds two non-negative durations, clamping at Forever.
func saturatingAdd(a, b time.Duration) time.Duration {
	if b >= Forever-a {
		return Forever
	}

	return a + b
}
