package scenario

import (
	"errors"
	"fmt"
)

// RunError represents a failure detected at the scenario layer, above the
// browser primitives.
//
// Run errors include:
//   - Unknown scenario: the caller requested an unregistered label. Fatal
//     for the invocation; no browser session is opened.
//   - Application error signal: a known failure marker was found in the
//     rendered output after otherwise-successful steps. Fails the
//     scenario; the run continues.
type RunError struct {
	// Code identifies the error category.
	Code RunErrorCode

	// Message is a human-readable description.
	Message string

	// Scenario identifies the affected scenario, when known.
	Scenario string

	// Marker is the matched failure marker (error-signal errors only).
	Marker string
}

// RunErrorCode categorizes scenario-layer errors.
type RunErrorCode string

const (
	// ErrCodeUnknownScenario indicates a request for an unregistered label.
	ErrCodeUnknownScenario RunErrorCode = "UNKNOWN_SCENARIO"

	// ErrCodeAppErrorSignal indicates a known failure marker in rendered
	// output.
	ErrCodeAppErrorSignal RunErrorCode = "APP_ERROR_SIGNAL"
)

// Error implements the error interface.
func (e *RunError) Error() string {
	if e.Scenario != "" {
		return fmt.Sprintf("%s: %s (scenario=%s)", e.Code, e.Message, e.Scenario)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnknownScenario reports whether err is an unknown-scenario error.
// Uses errors.As to handle wrapped errors.
func IsUnknownScenario(err error) bool {
	var re *RunError
	if errors.As(err, &re) {
		return re.Code == ErrCodeUnknownScenario
	}
	return false
}

// IsAppErrorSignal reports whether err is an application error signal.
func IsAppErrorSignal(err error) bool {
	var re *RunError
	if errors.As(err, &re) {
		return re.Code == ErrCodeAppErrorSignal
	}
	return false
}

// NewUnknownScenarioError creates a RunError for an unregistered label.
func NewUnknownScenarioError(label string) *RunError {
	return &RunError{
		Code:     ErrCodeUnknownScenario,
		Message:  fmt.Sprintf("no scenario registered with label %q", label),
		Scenario: label,
	}
}

// NewAppErrorSignal creates a RunError for a matched failure marker.
func NewAppErrorSignal(scenario, marker string) *RunError {
	return &RunError{
		Code:     ErrCodeAppErrorSignal,
		Message:  fmt.Sprintf("failure marker %q found in rendered output", marker),
		Scenario: scenario,
		Marker:   marker,
	}
}
