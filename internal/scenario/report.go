package scenario

import "github.com/google/uuid"

// Outcome is the result of one executed scenario.
type Outcome struct {
	// Label is the scenario's identifying label.
	Label string `json:"label"`

	// Success is true only when every step succeeded and no failure
	// marker was found in the rendered output.
	Success bool `json:"success"`

	// Diagnostics are human-readable messages in the order they were
	// recorded. Warnings from soft checks appear here without flipping
	// Success.
	Diagnostics []string `json:"diagnostics"`
}

// Report collects per-scenario outcomes for one run. It is an explicit
// value threaded through and returned by the Runner, never process-wide
// mutable state, so the engine can run repeatedly in one process.
type Report struct {
	// RunID identifies this run.
	RunID string `json:"run_id"`

	// Outcomes holds one entry per executed scenario, in execution order.
	// Never two entries for the same label within one run; registry label
	// uniqueness guarantees it.
	Outcomes []Outcome `json:"outcomes"`
}

// NewReport creates an empty report with a fresh run identifier.
func NewReport() *Report {
	return &Report{RunID: uuid.New().String()}
}

// Add appends an outcome.
func (r *Report) Add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Success is the final verdict: the logical AND of all outcomes. An empty
// report (nothing executed) is defined as failure.
func (r *Report) Success() bool {
	if len(r.Outcomes) == 0 {
		return false
	}
	for _, o := range r.Outcomes {
		if !o.Success {
			return false
		}
	}
	return true
}

// Passed counts successful outcomes.
func (r *Report) Passed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Success {
			n++
		}
	}
	return n
}

// Failed counts failed outcomes.
func (r *Report) Failed() int {
	return len(r.Outcomes) - r.Passed()
}
