package browser

import "context"

// Driver is the DOM query/mutation surface the waiter and the interaction
// primitives are built on. The chromedp Session implements it; tests use
// testutil.FakeDriver.
//
// Probe methods (Present, Clickable, Text variants) report instantaneous
// document state and must not block waiting for a change - blocking is the
// waiter's job.
type Driver interface {
	// Navigate loads url and returns once the document load event fired.
	Navigate(ctx context.Context, url string) error

	// HTML returns the current serialized document.
	HTML(ctx context.Context) (string, error)

	// Present reports whether a node matching the CSS selector exists.
	Present(ctx context.Context, selector string) (bool, error)

	// Clickable reports whether a node matching the CSS selector exists,
	// is visible, and is not disabled.
	Clickable(ctx context.Context, selector string) (bool, error)

	// Click dispatches a click on the first node matching the selector.
	Click(ctx context.Context, selector string) error

	// SendKeys focuses the first node matching the selector and types text.
	SendKeys(ctx context.Context, selector string, text string) error

	// SetValue commits value on a plain enumerated control (a <select>
	// element) and fires a change event so the host framework notices.
	SetValue(ctx context.Context, selector string, value string) error

	// ClickableByText reports whether a link or button whose visible text
	// equals label exactly is clickable.
	ClickableByText(ctx context.Context, label string) (bool, error)

	// ClickByText clicks the link or button whose visible text equals
	// label exactly.
	ClickByText(ctx context.Context, label string) error
}

// Conn is a Driver with a lifecycle. Close must be idempotent and safe to
// call on every exit path, including mid-scenario failure.
type Conn interface {
	Driver
	Close() error
}
