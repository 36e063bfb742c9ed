package validator

import (
	"fmt"

	"github.com/amp-labs/magicbot/statemachine"
)

// Severity defines the severity level of a validation issue.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// RuleResult contains both errors and warnings from a rule check.
type RuleResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// Rule defines a validation rule that can check a table for specific issues.
type Rule interface {
	Name() string
	Severity() Severity
	Check(table *statemachine.Table) RuleResult
}

// DefaultRules returns the standard set of validation rules.
func DefaultRules() []Rule {
	return []Rule{
		&stateNameRule{},
		&firstStateRule{},
		&defaultStateRule{},
		&timedDurationRule{},
		&danglingNextRule{},
		&ignoredFieldRule{},
		&timedCycleRule{},
		&namingConventionRule{},
	}
}

// stateNameRule checks for empty and duplicate state names.
type stateNameRule struct{}

func (r *stateNameRule) Name() string       { return "StateName" }
func (r *stateNameRule) Severity() Severity { return SeverityError }

func (r *stateNameRule) Check(table *statemachine.Table) RuleResult {
	var errors []ValidationError

	seen := make(map[string]bool, len(table.States))

	for i, state := range table.States {
		if state.Name == "" {
			errors = append(errors, ValidationError{
				Code:    "STATE_NAME_REQUIRED",
				Message: fmt.Sprintf("State at position %d has no name", i),
			})

			continue
		}

		if seen[state.Name] {
			errors = append(errors, ValidationError{
				Code:     "DUPLICATE_STATE",
				Message:  fmt.Sprintf("State '%s' is declared more than once", state.Name),
				Location: Location{State: state.Name},
			})
		}

		seen[state.Name] = true
	}

	return RuleResult{Errors: errors}
}

// firstStateRule checks that exactly one state is marked first.
type firstStateRule struct{}

func (r *firstStateRule) Name() string       { return "FirstState" }
func (r *firstStateRule) Severity() Severity { return SeverityError }

func (r *firstStateRule) Check(table *statemachine.Table) RuleResult {
	var (
		errors []ValidationError
		first  string
	)

	for _, state := range table.States {
		if !state.First {
			continue
		}

		if first != "" {
			errors = append(errors, ValidationError{
				Code:     "MULTIPLE_FIRST_STATES",
				Message:  fmt.Sprintf("State '%s' is marked first, but '%s' already is", state.Name, first),
				Location: Location{State: state.Name},
				Fix:      UnmarkFirst(state.Name),
			})

			continue
		}

		first = state.Name
	}

	if first == "" {
		var fix *Fix

		for _, state := range table.States {
			if state.Name != "" && state.Kind != statemachine.KindDefault {
				fix = MarkFirst(state.Name)

				break
			}
		}

		errors = append(errors, ValidationError{
			Code:    "NO_FIRST_STATE",
			Message: "No state is marked first",
			Fix:     fix,
		})
	}

	return RuleResult{Errors: errors}
}

// defaultStateRule checks that at most one default state exists and that it
// does not carry attributes that make no sense for it.
type defaultStateRule struct{}

func (r *defaultStateRule) Name() string       { return "DefaultState" }
func (r *defaultStateRule) Severity() Severity { return SeverityError }

func (r *defaultStateRule) Check(table *statemachine.Table) RuleResult {
	var (
		result RuleResult
		found  string
	)

	for _, state := range table.States {
		if state.Kind != statemachine.KindDefault {
			continue
		}

		if found != "" {
			result.Errors = append(result.Errors, ValidationError{
				Code:     "MULTIPLE_DEFAULT_STATES",
				Message:  fmt.Sprintf("State '%s' is a default state, but '%s' already is", state.Name, found),
				Location: Location{State: state.Name},
			})
		} else {
			found = state.Name
		}

		if state.First {
			result.Errors = append(result.Errors, ValidationError{
				Code:     "DEFAULT_IS_FIRST",
				Message:  fmt.Sprintf("Default state '%s' cannot be marked first", state.Name),
				Location: Location{State: state.Name},
			})
		}

		if state.MustFinish {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Code:     "IGNORED_FIELD",
				Message:  fmt.Sprintf("Default state '%s' never expires, so mustFinish has no effect", state.Name),
				Location: Location{State: state.Name},
				Fix:      ClearIgnoredFields(state.Name),
			})
		}
	}

	return result
}

// timedDurationRule checks that every timed state has a positive duration.
type timedDurationRule struct{}

func (r *timedDurationRule) Name() string       { return "TimedDuration" }
func (r *timedDurationRule) Severity() Severity { return SeverityError }

func (r *timedDurationRule) Check(table *statemachine.Table) RuleResult {
	var errors []ValidationError

	for _, state := range table.States {
		if state.Kind == statemachine.KindTimed && state.Duration <= 0 {
			errors = append(errors, ValidationError{
				Code:     "INVALID_DURATION",
				Message:  fmt.Sprintf("Timed state '%s' has duration %s; it must be positive", state.Name, state.Duration),
				Location: Location{State: state.Name},
			})
		}
	}

	return RuleResult{Errors: errors}
}

// danglingNextRule resolves every next target eagerly.
type danglingNextRule struct{}

func (r *danglingNextRule) Name() string       { return "DanglingNext" }
func (r *danglingNextRule) Severity() Severity { return SeverityError }

func (r *danglingNextRule) Check(table *statemachine.Table) RuleResult {
	var errors []ValidationError

	names := stateNames(table)

	for _, state := range table.States {
		if state.Kind != statemachine.KindTimed || state.Next == "" || names[state.Next] {
			continue
		}

		verr := ValidationError{
			Code:     "DANGLING_NEXT",
			Message:  fmt.Sprintf("Timed state '%s' names unknown next state '%s'", state.Name, state.Next),
			Location: Location{State: state.Name},
		}

		if closest := closestName(state.Next, names); closest != "" {
			verr.Fix = RetargetNext(state.Name, closest)
		}

		errors = append(errors, verr)
	}

	return RuleResult{Errors: errors}
}

// ignoredFieldRule warns about timed-only fields on other kinds of state.
type ignoredFieldRule struct{}

func (r *ignoredFieldRule) Name() string       { return "IgnoredField" }
func (r *ignoredFieldRule) Severity() Severity { return SeverityWarning }

func (r *ignoredFieldRule) Check(table *statemachine.Table) RuleResult {
	var warnings []ValidationWarning

	for _, state := range table.States {
		if state.Kind == statemachine.KindTimed {
			continue
		}

		if state.Duration != 0 || state.Next != "" {
			warnings = append(warnings, ValidationWarning{
				Code: "IGNORED_FIELD",
				Message: fmt.Sprintf(
					"%s state '%s' sets duration or next, which only timed states use", state.Kind, state.Name),
				Location: Location{State: state.Name},
				Fix:      ClearIgnoredFields(state.Name),
			})
		}
	}

	return RuleResult{Warnings: warnings}
}

// timedCycleRule warns about chains of timed states that loop forever.
type timedCycleRule struct{}

func (r *timedCycleRule) Name() string       { return "TimedCycle" }
func (r *timedCycleRule) Severity() Severity { return SeverityWarning }

func (r *timedCycleRule) Check(table *statemachine.Table) RuleResult {
	var warnings []ValidationWarning

	next := make(map[string]string, len(table.States))

	for _, state := range table.States {
		if state.Kind == statemachine.KindTimed && state.Next != "" {
			next[state.Name] = state.Next
		}
	}

	reported := make(map[string]bool)

	for _, state := range table.States {
		start := state.Name
		if _, ok := next[start]; !ok || reported[start] {
			continue
		}

		// walk at most len(next) steps; returning to start means a cycle
		current := start
		for range len(next) {
			target, ok := next[current]
			if !ok {
				break
			}

			if target == start {
				cycle := []string{start}
				for member := next[start]; member != start; member = next[member] {
					cycle = append(cycle, member)
					reported[member] = true
				}

				reported[start] = true

				warnings = append(warnings, ValidationWarning{
					Code:     "TIMED_CYCLE",
					Message:  fmt.Sprintf("Timed states %v form a cycle and will repeat until the machine is stopped", cycle),
					Location: Location{State: start},
				})

				break
			}

			current = target
		}
	}

	return RuleResult{Warnings: warnings}
}

// namingConventionRule checks for snake_case state names.
type namingConventionRule struct{}

func (r *namingConventionRule) Name() string       { return "NamingConvention" }
func (r *namingConventionRule) Severity() Severity { return SeverityWarning }

func (r *namingConventionRule) Check(table *statemachine.Table) RuleResult {
	var warnings []ValidationWarning

	names := stateNames(table)

	for _, state := range table.States {
		if state.Name == "" || isSnakeCase(state.Name) {
			continue
		}

		warning := ValidationWarning{
			Code:     "NAMING_CONVENTION",
			Message:  fmt.Sprintf("State '%s' should use snake_case naming", state.Name),
			Location: Location{State: state.Name},
		}

		if suggested := toSnakeCase(state.Name); !names[suggested] {
			warning.Fix = RenameState(state.Name, suggested)
		}

		warnings = append(warnings, warning)
	}

	return RuleResult{Warnings: warnings}
}

// Helper functions

func stateNames(table *statemachine.Table) map[string]bool {
	names := make(map[string]bool, len(table.States))
	for _, state := range table.States {
		names[state.Name] = true
	}

	return names
}

func isSnakeCase(s string) bool {
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			return false
		}

		if r == '-' || r == ' ' {
			return false
		}
	}

	return true
}

func toSnakeCase(s string) string {
	var result []rune

	for i, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			if i > 0 {
				result = append(result, '_')
			}

			result = append(result, r+'a'-'A')
		case r == '-' || r == ' ':
			result = append(result, '_')
		default:
			result = append(result, r)
		}
	}

	return string(result)
}

// closestName returns the declared name with the smallest edit distance to
// target, if that distance is small enough to be a likely typo.
func closestName(target string, names map[string]bool) string {
	const maxDistance = 2

	best := ""
	bestDistance := maxDistance + 1

	for name := range names {
		if name == "" {
			continue
		}

		d := levenshtein(target, name)
		if d < bestDistance || (d == bestDistance && name < best) {
			best = name
			bestDistance = d
		}
	}

	if bestDistance > maxDistance {
		return ""
	}

	return best
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i

		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(rb)]
}
