// Package scenario turns declarative workflow descriptions into browser
// runs and structured outcomes.
//
// A Scenario is a named, ordered sequence of Steps. The engine executes
// steps in declared order, stops at the first failure, then scans the
// rendered document for known failure markers that would otherwise go
// unnoticed (server-side errors surface in the page, not as exceptions
// from the primitives). The Runner sequences scenarios over one shared
// browser session and aggregates outcomes into a Report.
package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/cedarhq/uiprobe/internal/browser"
)

// Step is one bound interaction primitive invocation within a Scenario.
// Steps are idempotent in intent but not guaranteed idempotent against the
// live target: re-running a step may act on different live state.
type Step struct {
	// Desc names the step in diagnostics.
	Desc string

	run func(ctx context.Context, rt *browser.Runtime) error
}

// Run executes the step against the runtime.
func (s Step) Run(ctx context.Context, rt *browser.Runtime) error {
	return s.run(ctx, rt)
}

// SoftCheck is an informational postcondition. Its absence is logged as a
// warning diagnostic but never fails the scenario, since render timing is
// not guaranteed within the settle window.
type SoftCheck struct {
	Desc     string
	Selector string
}

// Scenario is a named user workflow. Immutable once registered.
type Scenario struct {
	// Label uniquely identifies the scenario and is the value callers
	// select by.
	Label string

	// Description explains the workflow in one line.
	Description string

	// Steps execute in declared order; the first failure skips the rest.
	Steps []Step

	// SoftChecks run after all steps succeed.
	SoftChecks []SoftCheck
}

// LoadPage navigates to url and waits out widget initialization. An empty
// url means the configured application root.
func LoadPage(url string) Step {
	desc := "load page"
	if url != "" {
		desc = fmt.Sprintf("load page %q", url)
	}
	return Step{
		Desc: desc,
		run: func(ctx context.Context, rt *browser.Runtime) error {
			return rt.LoadPage(ctx, url)
		},
	}
}

// SelectAsyncOption types value into the async combobox identified by
// fieldID and commits the option keyed by that exact value.
func SelectAsyncOption(fieldID, value string) Step {
	return Step{
		Desc: fmt.Sprintf("select %q in #%s", value, fieldID),
		run: func(ctx context.Context, rt *browser.Runtime) error {
			return rt.SelectAsyncOption(ctx, fieldID, value)
		},
	}
}

// SelectAsyncOptionContaining is SelectAsyncOption with substring matching
// on the committed option value.
func SelectAsyncOptionContaining(fieldID, value string) Step {
	return Step{
		Desc: fmt.Sprintf("select option containing %q in #%s", value, fieldID),
		run: func(ctx context.Context, rt *browser.Runtime) error {
			return rt.SelectAsyncOptionContaining(ctx, fieldID, value)
		},
	}
}

// SelectStaticOption commits value on the plain enumerated control
// identified by fieldID. Which fields are static vs async is fixed here,
// at scenario-authoring time, never discovered at runtime.
func SelectStaticOption(fieldID, value string) Step {
	return Step{
		Desc: fmt.Sprintf("set #%s to %q", fieldID, value),
		run: func(ctx context.Context, rt *browser.Runtime) error {
			return rt.SelectStaticOption(ctx, fieldID, value)
		},
	}
}

// ClickControl clicks the element with the given id.
func ClickControl(id string) Step {
	return Step{
		Desc: fmt.Sprintf("click #%s", id),
		run: func(ctx context.Context, rt *browser.Runtime) error {
			return rt.ClickControl(ctx, id)
		},
	}
}

// ClickLabeled clicks the button or link with the given visible text.
func ClickLabeled(label string) Step {
	return Step{
		Desc: fmt.Sprintf("click %q", label),
		run: func(ctx context.Context, rt *browser.Runtime) error {
			return rt.ClickLabeled(ctx, label)
		},
	}
}

// NavigateTab activates the tab with the given visible link text.
func NavigateTab(label string) Step {
	return Step{
		Desc: fmt.Sprintf("open tab %q", label),
		run: func(ctx context.Context, rt *browser.Runtime) error {
			return rt.NavigateTab(ctx, label)
		},
	}
}

// Settle pauses for the given number of settle units. Inserted by scenario
// authors after clicks whose downstream render latency varies by workload.
func Settle(units int) Step {
	return Step{
		Desc: fmt.Sprintf("settle %d", units),
		run: func(ctx context.Context, rt *browser.Runtime) error {
			return rt.Settle(ctx, units)
		},
	}
}

// ExpectPresent waits for selector to exist. A hard precondition: its
// absence fails the step and the scenario.
func ExpectPresent(desc, selector string) Step {
	return Step{
		Desc: desc,
		run: func(ctx context.Context, rt *browser.Runtime) error {
			return browser.WaitFor(ctx, browser.Present(rt.Driver, selector), rt.Timeout, browser.DefaultPoll)
		},
	}
}

// WaitOptions waits until the combobox identified by fieldID has at least
// n options populated. Preferred over a fixed settle wherever the target
// exposes this readiness signal.
func WaitOptions(fieldID string, n int) Step {
	sel := fmt.Sprintf("#%s + .selectize-control div[data-value]:nth-of-type(%d)", fieldID, n)
	return Step{
		Desc: fmt.Sprintf("wait for %d options in #%s", n, fieldID),
		run: func(ctx context.Context, rt *browser.Runtime) error {
			return browser.WaitFor(ctx, browser.Present(rt.Driver, sel), rt.Timeout, browser.DefaultPoll)
		},
	}
}

// raw builds a Step from an arbitrary runtime call.
func raw(desc string, fn func(ctx context.Context, rt *browser.Runtime) error) Step {
	return Step{Desc: desc, run: fn}
}

// withTimeout wraps a step so its waits observe an overridden budget.
func withTimeout(s Step, budget time.Duration) Step {
	return Step{
		Desc: s.Desc,
		run: func(ctx context.Context, rt *browser.Runtime) error {
			scoped := *rt
			scoped.Timeout = budget
			return s.run(ctx, &scoped)
		},
	}
}
