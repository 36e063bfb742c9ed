package testing

import (
	"errors"
	"fmt"
	"strings"
)

// Matcher errors.
var (
	ErrNoExecutionTrace   = errors.New("no execution trace available")
	ErrNoMatchersPassed   = errors.New("no matchers passed")
	ErrStateNotVisited    = errors.New("state was not visited")
	ErrTransitionNotTaken = errors.New("transition was not taken")
	ErrUnexpectedState    = errors.New("unexpected current state")
	ErrExecutingMismatch  = errors.New("executing flag mismatch")
	ErrTraceMismatch      = errors.New("dispatch sequence mismatch")
	ErrDispatchCount      = errors.New("unexpected dispatch count")
)

// Matcher defines an assertion matcher interface.
type Matcher interface {
	Match(machine *TestMachine) (bool, error)
	Description() string
}

// StateWasVisited creates a matcher that checks if a state was dispatched.
func StateWasVisited(name string) Matcher {
	return &stateVisitedMatcher{stateName: name}
}

type stateVisitedMatcher struct {
	stateName string
}

func (m *stateVisitedMatcher) Match(machine *TestMachine) (bool, error) {
	for _, entry := range machine.Recorder.entries {
		if entry.State == m.stateName {
			return true, nil
		}
	}

	return false, fmt.Errorf("%w: '%s'", ErrStateNotVisited, m.stateName)
}

func (m *stateVisitedMatcher) Description() string {
	return fmt.Sprintf("state '%s' should be visited", m.stateName)
}

// TransitionWasTaken creates a matcher that checks that to was entered
// immediately after from.
func TransitionWasTaken(from, to string) Matcher {
	return &transitionTakenMatcher{from: from, to: to}
}

type transitionTakenMatcher struct {
	from string
	to   string
}

func (m *transitionTakenMatcher) Match(machine *TestMachine) (bool, error) {
	entered := machine.Recorder.Entered()
	if len(entered) == 0 {
		return false, ErrNoExecutionTrace
	}

	for i := range len(entered) - 1 {
		if entered[i] == m.from && entered[i+1] == m.to {
			return true, nil
		}
	}

	return false, fmt.Errorf("%w: from '%s' to '%s'", ErrTransitionNotTaken, m.from, m.to)
}

func (m *transitionTakenMatcher) Description() string {
	return fmt.Sprintf("transition from '%s' to '%s' should be taken", m.from, m.to)
}

// DispatchedTimes creates a matcher that checks how often a state body ran.
func DispatchedTimes(name string, count int) Matcher {
	return &dispatchCountMatcher{stateName: name, count: count}
}

type dispatchCountMatcher struct {
	stateName string
	count     int
}

func (m *dispatchCountMatcher) Match(machine *TestMachine) (bool, error) {
	actual := 0

	for _, entry := range machine.Recorder.entries {
		if entry.State == m.stateName {
			actual++
		}
	}

	if actual != m.count {
		return false, fmt.Errorf("%w: '%s' ran %d times, expected %d", ErrDispatchCount, m.stateName, actual, m.count)
	}

	return true, nil
}

func (m *dispatchCountMatcher) Description() string {
	return fmt.Sprintf("state '%s' should be dispatched %d times", m.stateName, m.count)
}

// CurrentStateIs creates a matcher for the active state. An empty name means none.
func CurrentStateIs(name string) Matcher {
	return &currentStateMatcher{stateName: name}
}

type currentStateMatcher struct {
	stateName string
}

func (m *currentStateMatcher) Match(machine *TestMachine) (bool, error) {
	actual := machine.CurrentState()
	if actual != m.stateName {
		return false, fmt.Errorf("%w: expected '%s', got '%s'", ErrUnexpectedState, m.stateName, actual)
	}

	return true, nil
}

func (m *currentStateMatcher) Description() string {
	return fmt.Sprintf("current state should be '%s'", m.stateName)
}

// AllOf creates a matcher that requires all matchers to pass.
func AllOf(matchers ...Matcher) Matcher {
	return &allOfMatcher{matchers: matchers}
}

type allOfMatcher struct {
	matchers []Matcher
}

func (m *allOfMatcher) Match(machine *TestMachine) (bool, error) {
	for _, matcher := range m.matchers {
		ok, err := matcher.Match(machine)
		if !ok {
			return false, err
		}
	}

	return true, nil
}

func (m *allOfMatcher) Description() string {
	descriptions := make([]string, len(m.matchers))
	for i, matcher := range m.matchers {
		descriptions[i] = matcher.Description()
	}

	return "all of: " + strings.Join(descriptions, ", ")
}

// AnyOf creates a matcher that requires at least one matcher to pass.
func AnyOf(matchers ...Matcher) Matcher {
	return &anyOfMatcher{matchers: matchers}
}

type anyOfMatcher struct {
	matchers []Matcher
}

func (m *anyOfMatcher) Match(machine *TestMachine) (bool, error) {
	for _, matcher := range m.matchers {
		ok, _ := matcher.Match(machine)
		if ok {
			return true, nil
		}
	}

	return false, ErrNoMatchersPassed
}

func (m *anyOfMatcher) Description() string {
	descriptions := make([]string, len(m.matchers))
	for i, matcher := range m.matchers {
		descriptions[i] = matcher.Description()
	}

	return "any of: " + strings.Join(descriptions, ", ")
}
