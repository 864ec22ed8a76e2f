package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/cedarhq/uiprobe/internal/scenario"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // All selected scenarios passed
	ExitFailure      = 1 // One or more scenarios failed
	ExitCommandError = 2 // Command error (unknown scenario, browser launch failure, bad flags)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// reportPayload is the JSON shape of a run report.
type reportPayload struct {
	RunID    string             `json:"run_id"`
	Outcomes []scenario.Outcome `json:"outcomes"`
	Passed   int                `json:"passed"`
	Failed   int                `json:"failed"`
	Total    int                `json:"total"`
}

// renderReportText writes the human-readable report: one line per
// scenario with indented diagnostics, then a summary.
func renderReportText(w io.Writer, report *scenario.Report) {
	for _, o := range report.Outcomes {
		if o.Success {
			fmt.Fprintf(w, "✓ %s\n", o.Label)
		} else {
			fmt.Fprintf(w, "✗ %s\n", o.Label)
		}
		for _, d := range o.Diagnostics {
			fmt.Fprintf(w, "  %s\n", d)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Probe Summary: %d passed, %d failed, %d total\n",
		report.Passed(), report.Failed(), len(report.Outcomes))
	if report.Success() {
		fmt.Fprintln(w, "✓ All scenarios passed")
	} else {
		fmt.Fprintln(w, "✗ Some scenarios failed")
	}
}

// renderReportJSON writes the report in the CLIResponse envelope.
func renderReportJSON(w io.Writer, report *scenario.Report) error {
	payload := reportPayload{
		RunID:    report.RunID,
		Outcomes: report.Outcomes,
		Passed:   report.Passed(),
		Failed:   report.Failed(),
		Total:    len(report.Outcomes),
	}

	response := CLIResponse{Status: "ok", Data: payload}
	if !report.Success() {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_SCENARIOS_FAILED",
			Message: fmt.Sprintf("%d scenario(s) failed", report.Failed()),
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// renderLabelsJSON writes scenario labels in the CLIResponse envelope.
func renderLabelsJSON(w io.Writer, labels []string) error {
	response := CLIResponse{Status: "ok", Data: map[string][]string{"scenarios": labels}}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}
