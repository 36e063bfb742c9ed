package validator

import (
	"fmt"
	"strings"

	"github.com/amp-labs/magicbot/statemachine"
)

// ValidationResult contains the results of validating a state table.
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// ValidationError represents a problem that keeps a table from building or
// makes a transition fail at run time.
type ValidationError struct {
	Code     string   // Error code like "DANGLING_NEXT", "NO_FIRST_STATE"
	Message  string   // Human-readable error message
	Location Location // Where the error occurred
	Fix      *Fix     // Optional auto-fix suggestion
}

// ValidationWarning represents a non-critical issue.
type ValidationWarning struct {
	Code     string
	Message  string
	Location Location
	Fix      *Fix
}

// Location identifies where an issue occurred.
type Location struct {
	File  string // Table file path
	State string // State name if applicable
}

// Validate checks a table with the default rules. Unlike building a
// registry, it reports every problem it finds and resolves next targets
// eagerly.
func Validate(table *statemachine.Table) ValidationResult {
	return ValidateWithRules(table, DefaultRules())
}

// ValidateFile loads a table from a file and validates it.
func ValidateFile(path string) (ValidationResult, error) {
	return ValidateFileWithOptions(path, false)
}

// ValidateFileStrict loads a table from a file and validates it in strict mode.
func ValidateFileStrict(path string) (ValidationResult, error) {
	return ValidateFileWithOptions(path, true)
}

// ValidateFileWithOptions loads a table from a file and validates it with options.
func ValidateFileWithOptions(path string, strict bool) (ValidationResult, error) {
	table, err := statemachine.LoadTable(path)
	if err != nil {
		return ValidationResult{
			Valid: false,
			Errors: []ValidationError{
				{
					Code:     "TABLE_LOAD_FAILED",
					Message:  fmt.Sprintf("Failed to load table: %v", err),
					Location: Location{File: path},
				},
			},
		}, err
	}

	var result ValidationResult
	if strict {
		result = ValidateWithRulesStrict(table, DefaultRules())
	} else {
		result = Validate(table)
	}

	for i := range result.Errors {
		if result.Errors[i].Location.File == "" {
			result.Errors[i].Location.File = path
		}
	}

	for i := range result.Warnings {
		if result.Warnings[i].Location.File == "" {
			result.Warnings[i].Location.File = path
		}
	}

	return result, nil
}

// ValidateWithRules validates using custom rules.
func ValidateWithRules(table *statemachine.Table, rules []Rule) ValidationResult {
	var result ValidationResult

	for _, rule := range rules {
		ruleResult := rule.Check(table)
		result.Errors = append(result.Errors, ruleResult.Errors...)
		result.Warnings = append(result.Warnings, ruleResult.Warnings...)
	}

	// The registry is the final authority on what builds.
	if len(result.Errors) == 0 {
		if _, err := statemachine.BuildRegistry(table.Specs()); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Code:    "BUILD_FAILED",
				Message: err.Error(),
			})
		}
	}

	result.Valid = len(result.Errors) == 0

	return result
}

// ValidateWithRulesStrict validates with strict mode (treats warnings as errors).
func ValidateWithRulesStrict(table *statemachine.Table, rules []Rule) ValidationResult {
	result := ValidateWithRules(table, rules)

	for _, warning := range result.Warnings {
		result.Errors = append(result.Errors, ValidationError{
			Code:     warning.Code,
			Message:  warning.Message,
			Location: warning.Location,
			Fix:      warning.Fix,
		})
	}

	result.Warnings = nil
	result.Valid = len(result.Errors) == 0

	return result
}

// HasErrors returns true if the result has any errors.
func (r ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if the result has any warnings.
func (r ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Fixes returns every available fix, errors first.
func (r ValidationResult) Fixes() []*Fix {
	var fixes []*Fix

	for _, err := range r.Errors {
		if err.Fix != nil {
			fixes = append(fixes, err.Fix)
		}
	}

	for _, warn := range r.Warnings {
		if warn.Fix != nil {
			fixes = append(fixes, warn.Fix)
		}
	}

	return fixes
}

// String returns a human-readable summary of validation results.
func (r ValidationResult) String() string {
	var sb strings.Builder

	if r.Valid {
		sb.WriteString("✓ Table is valid\n")
	} else {
		sb.WriteString(fmt.Sprintf("✗ Table has %d error(s)\n", len(r.Errors)))

		for _, err := range r.Errors {
			writeIssue(&sb, err.Code, err.Message, err.Location, err.Fix)
		}
	}

	if len(r.Warnings) > 0 {
		sb.WriteString(fmt.Sprintf("\n⚠ %d warning(s):\n", len(r.Warnings)))

		for _, warn := range r.Warnings {
			writeIssue(&sb, warn.Code, warn.Message, warn.Location, warn.Fix)
		}
	}

	return sb.String()
}

func writeIssue(sb *strings.Builder, code, message string, loc Location, fix *Fix) {
	sb.WriteString(fmt.Sprintf("  [%s] %s", code, message))

	if loc.State != "" {
		sb.WriteString(fmt.Sprintf(" (state: %s)", loc.State))
	}

	sb.WriteString("\n")

	if fix != nil {
		sb.WriteString(fmt.Sprintf("    Fix: %s\n", fix.Description))
	}
}
