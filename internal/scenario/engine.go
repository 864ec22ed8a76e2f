package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cedarhq/uiprobe/internal/browser"
)

// engineState tracks a scenario execution through its lifecycle:
// NotStarted -> Running on first step dispatch, then Passed or Failed.
type engineState int

const (
	stateNotStarted engineState = iota
	stateRunning
	statePassed
	stateFailed
)

// Failure markers scanned for in the rendered document after all steps
// nominally succeed. Server-side failures manifest in the page, not as
// exceptions from the interaction primitives.
var errorMarkers = []string{
	"An error has occurred",
	"object 'hr_data' not found",
	"shiny-output-error",
}

// Execute runs a single scenario against the runtime and produces its
// Outcome.
//
// Steps execute in declared order; a step failure records the causing
// diagnostic and skips the remaining steps - no partial credit. After all
// steps succeed, the error-signal scan checks the document text for the
// known failure markers; any hit forces failure even though the steps
// completed. Soft checks run last and only ever add warning diagnostics.
//
// Step and primitive errors are absorbed here into the Outcome; they never
// propagate past the scenario boundary.
func Execute(ctx context.Context, rt *browser.Runtime, sc *Scenario, log *slog.Logger) Outcome {
	out := Outcome{Label: sc.Label, Diagnostics: []string{}}
	state := stateNotStarted

	for i, step := range sc.Steps {
		state = stateRunning
		log.Info("running step", "scenario", sc.Label, "step", step.Desc)

		if err := step.Run(ctx, rt); err != nil {
			out.Diagnostics = append(out.Diagnostics,
				fmt.Sprintf("step %d/%d (%s): %v", i+1, len(sc.Steps), step.Desc, err))
			state = stateFailed
			break
		}
	}

	// Error-signal scan: steps may succeed while the server rendered a
	// failure into the page.
	if state != stateFailed {
		if marker := scanForMarkers(ctx, rt); marker != "" {
			out.Diagnostics = append(out.Diagnostics, NewAppErrorSignal(sc.Label, marker).Error())
			state = stateFailed
		}
	}

	if state == stateFailed {
		log.Warn("scenario failed", "scenario", sc.Label)
		return out
	}

	for _, check := range sc.SoftChecks {
		if !rt.Rendered(ctx, check.Selector) {
			out.Diagnostics = append(out.Diagnostics,
				fmt.Sprintf("warning: %s not rendered (may still be loading)", check.Desc))
			log.Info("soft check missed", "scenario", sc.Label, "check", check.Desc)
		}
	}

	state = statePassed
	out.Success = state == statePassed
	log.Info("scenario passed", "scenario", sc.Label)
	return out
}

// scanForMarkers returns the first failure marker found in the current
// document, or empty when the page is clean. An unreadable document is
// treated as a marker hit in its own right.
func scanForMarkers(ctx context.Context, rt *browser.Runtime) string {
	html, err := rt.DocumentHTML(ctx)
	if err != nil {
		return fmt.Sprintf("document unreadable: %v", err)
	}
	for _, marker := range errorMarkers {
		if strings.Contains(html, marker) {
			return marker
		}
	}
	return ""
}
