package browser

import (
	"errors"
	"fmt"
	"time"
)

// DriveError represents a failure while driving the browser.
//
// Drive errors fall into three categories:
//   - Launch: the browser process could not be started. Fatal for the
//     whole run.
//   - Wait timeout: a condition never became true within budget. Becomes
//     a step failure; the run continues with the next scenario.
//   - Interaction: an element was found but the action was rejected, or
//     a primitive's internal wait expired. Same handling as a timeout.
//
// DriveError includes structured fields for diagnostics.
type DriveError struct {
	// Code identifies the error category.
	Code DriveErrorCode

	// Message is a human-readable description.
	Message string

	// Step describes the primitive or condition that failed.
	Step string

	// Budget is the wait budget that elapsed (timeout errors only).
	Budget time.Duration

	// Err is the underlying cause, if any.
	Err error
}

// DriveErrorCode categorizes drive errors.
type DriveErrorCode string

const (
	// ErrCodeLaunchFailed indicates the browser could not be started.
	ErrCodeLaunchFailed DriveErrorCode = "LAUNCH_FAILED"

	// ErrCodeWaitTimeout indicates a condition never held within budget.
	ErrCodeWaitTimeout DriveErrorCode = "WAIT_TIMEOUT"

	// ErrCodeInteractionFailed indicates an action on a located element
	// was rejected.
	ErrCodeInteractionFailed DriveErrorCode = "INTERACTION_FAILED"
)

// Error implements the error interface.
func (e *DriveError) Error() string {
	if e.Step != "" && e.Err != nil {
		return fmt.Sprintf("%s: %s (step=%s): %v", e.Code, e.Message, e.Step, e.Err)
	}
	if e.Step != "" {
		return fmt.Sprintf("%s: %s (step=%s)", e.Code, e.Message, e.Step)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *DriveError) Unwrap() error {
	return e.Err
}

// IsLaunchError reports whether err is a browser launch failure.
// Uses errors.As to handle wrapped errors.
func IsLaunchError(err error) bool {
	var de *DriveError
	if errors.As(err, &de) {
		return de.Code == ErrCodeLaunchFailed
	}
	return false
}

// IsWaitTimeout reports whether err is a wait deadline failure.
func IsWaitTimeout(err error) bool {
	var de *DriveError
	if errors.As(err, &de) {
		return de.Code == ErrCodeWaitTimeout
	}
	return false
}

// IsInteractionError reports whether err is a rejected interaction.
func IsInteractionError(err error) bool {
	var de *DriveError
	if errors.As(err, &de) {
		return de.Code == ErrCodeInteractionFailed
	}
	return false
}

// NewLaunchError creates a DriveError for a failed browser start.
func NewLaunchError(err error) *DriveError {
	return &DriveError{
		Code:    ErrCodeLaunchFailed,
		Message: "browser could not be started",
		Err:     err,
	}
}

// NewWaitTimeout creates a DriveError for a condition that never held.
func NewWaitTimeout(condition string, budget time.Duration) *DriveError {
	return &DriveError{
		Code:    ErrCodeWaitTimeout,
		Message: fmt.Sprintf("condition %q not satisfied within %s", condition, budget),
		Step:    condition,
		Budget:  budget,
	}
}

// NewInteractionError creates a DriveError for a rejected action.
func NewInteractionError(step string, err error) *DriveError {
	return &DriveError{
		Code:    ErrCodeInteractionFailed,
		Message: "interaction rejected",
		Step:    step,
		Err:     err,
	}
}
