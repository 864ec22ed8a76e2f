package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Runtime binds a Driver to the interaction primitives with a shared wait
// budget. One Runtime serves one run; it is exclusively owned by the
// scenario runner and never used concurrently.
type Runtime struct {
	// Driver is the live browser connection (or a fake in tests).
	Driver Driver

	// BaseURL is the application root; LoadPage("") resolves to it.
	BaseURL string

	// Timeout is the default wait budget for conditions.
	Timeout time.Duration

	// SettleUnit scales the fixed settle intervals. The dashboard
	// populates its interactive controls after initial paint with no
	// completion signal available to us, so primitives sleep a small
	// multiple of this unit where no readiness predicate exists. This is
	// an acknowledged compromise, not a correctness guarantee.
	SettleUnit time.Duration

	// Log receives structured step diagnostics.
	Log *slog.Logger
}

// NewRuntime creates a Runtime with the standard settle unit.
func NewRuntime(d Driver, baseURL string, timeout time.Duration, log *slog.Logger) *Runtime {
	return &Runtime{
		Driver:     d,
		BaseURL:    baseURL,
		Timeout:    timeout,
		SettleUnit: time.Second,
		Log:        log,
	}
}

// Settle sleeps for units settle units, honoring ctx cancellation.
func (rt *Runtime) Settle(ctx context.Context, units int) error {
	select {
	case <-time.After(time.Duration(units) * rt.SettleUnit):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// wait runs WaitFor with the runtime's default cadence.
func (rt *Runtime) wait(ctx context.Context, cond Condition, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = rt.Timeout
	}
	return WaitFor(ctx, cond, timeout, DefaultPoll)
}

// LoadPage navigates to url (the configured root when url is empty), waits
// for the document body, then settles to let asynchronous widget
// initialization finish.
func (rt *Runtime) LoadPage(ctx context.Context, url string) error {
	if url == "" {
		url = rt.BaseURL
	}
	rt.Log.Info("loading page", "url", url)

	if err := rt.Driver.Navigate(ctx, url); err != nil {
		return NewInteractionError(fmt.Sprintf("navigate %q", url), err)
	}
	if err := rt.wait(ctx, Present(rt.Driver, "body"), 0); err != nil {
		return err
	}
	return rt.Settle(ctx, 2)
}

// SelectAsyncOption drives an async-populated combobox: it activates the
// field's text-entry surface, types value, then commits the option element
// keyed by that exact value. The two wait/act pairs are independent
// suspension points; either can time out on its own.
func (rt *Runtime) SelectAsyncOption(ctx context.Context, fieldID, value string) error {
	option := fmt.Sprintf("div[data-value='%s']", value)
	return rt.selectAsync(ctx, fieldID, value, option)
}

// SelectAsyncOptionContaining is SelectAsyncOption with substring matching
// on the committed option's data-value. Used when the typed text is an
// abbreviation of the full stored value (e.g. "Arts" for a college name).
func (rt *Runtime) SelectAsyncOptionContaining(ctx context.Context, fieldID, value string) error {
	option := fmt.Sprintf("div[data-value*='%s']", value)
	return rt.selectAsync(ctx, fieldID, value, option)
}

func (rt *Runtime) selectAsync(ctx context.Context, fieldID, value, option string) error {
	DismissOverlay(ctx, rt.Driver, rt.Log, rt.Timeout)

	input := fmt.Sprintf("#%s + .selectize-control input", fieldID)
	step := fmt.Sprintf("select %q in #%s", value, fieldID)
	rt.Log.Info("selecting async option", "field", fieldID, "value", value)

	if err := rt.wait(ctx, Clickable(rt.Driver, input), 0); err != nil {
		return err
	}
	if err := rt.Driver.Click(ctx, input); err != nil {
		return NewInteractionError(step, err)
	}
	if err := rt.Driver.SendKeys(ctx, input, value); err != nil {
		return NewInteractionError(step, err)
	}
	if err := rt.Settle(ctx, 1); err != nil {
		return err
	}

	// Second suspension point: the matching option appears only after the
	// server echoes the filtered choices.
	if err := rt.wait(ctx, Clickable(rt.Driver, option), rt.Timeout/2); err != nil {
		return err
	}
	if err := rt.Driver.Click(ctx, option); err != nil {
		return NewInteractionError(step, err)
	}
	return rt.Settle(ctx, 1)
}

// SelectStaticOption commits value on a plain enumerated control. No
// typing and no dropdown list are involved; the control kind is fixed at
// scenario-authoring time, not discovered at runtime.
func (rt *Runtime) SelectStaticOption(ctx context.Context, fieldID, value string) error {
	sel := "#" + fieldID
	rt.Log.Info("selecting static option", "field", fieldID, "value", value)

	if err := rt.wait(ctx, Present(rt.Driver, sel), 0); err != nil {
		return err
	}
	if err := rt.Driver.SetValue(ctx, sel, value); err != nil {
		return NewInteractionError(fmt.Sprintf("set #%s to %q", fieldID, value), err)
	}
	return rt.Settle(ctx, 1)
}

// ClickControl clicks the element with the given id. No settle is built
// in: render latency after a click varies by workload, so callers insert
// an explicit Settle step sized for the downstream effect.
func (rt *Runtime) ClickControl(ctx context.Context, id string) error {
	sel := "#" + id
	rt.Log.Info("clicking control", "id", id)

	if err := rt.wait(ctx, Clickable(rt.Driver, sel), 0); err != nil {
		return err
	}
	if err := rt.Driver.Click(ctx, sel); err != nil {
		return NewInteractionError(fmt.Sprintf("click #%s", id), err)
	}
	return nil
}

// NavigateTab activates the tab whose link text equals label exactly, then
// settles: tab content may itself contain controls requiring asynchronous
// initialization, recursively subject to the LoadPage caveat.
func (rt *Runtime) NavigateTab(ctx context.Context, label string) error {
	DismissOverlay(ctx, rt.Driver, rt.Log, rt.Timeout)
	rt.Log.Info("navigating to tab", "label", label)

	if err := rt.wait(ctx, ClickableText(rt.Driver, label), 0); err != nil {
		return err
	}
	if err := rt.Driver.ClickByText(ctx, label); err != nil {
		return NewInteractionError(fmt.Sprintf("open tab %q", label), err)
	}
	return rt.Settle(ctx, 2)
}

// ClickLabeled clicks the button or link whose visible text equals label
// exactly. Like ClickControl, no settle is built in.
func (rt *Runtime) ClickLabeled(ctx context.Context, label string) error {
	DismissOverlay(ctx, rt.Driver, rt.Log, rt.Timeout)
	rt.Log.Info("clicking labeled control", "label", label)

	if err := rt.wait(ctx, ClickableText(rt.Driver, label), 0); err != nil {
		return err
	}
	if err := rt.Driver.ClickByText(ctx, label); err != nil {
		return NewInteractionError(fmt.Sprintf("click %q", label), err)
	}
	return nil
}

// Rendered reports whether a node matching selector currently exists. Used
// for soft postcondition checks, where absence is informational only.
func (rt *Runtime) Rendered(ctx context.Context, selector string) bool {
	ok, err := rt.Driver.Present(ctx, selector)
	return err == nil && ok
}

// DocumentHTML returns the current serialized document for error-signal
// scanning.
func (rt *Runtime) DocumentHTML(ctx context.Context) (string, error) {
	return rt.Driver.HTML(ctx)
}
