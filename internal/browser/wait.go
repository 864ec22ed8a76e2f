package browser

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Condition is a predicate over live document state. Probe is re-evaluated
// against the current document on every poll tick, never against a
// snapshot. Probe errors are treated as "not yet satisfied": the DOM may be
// mid-mutation, and only the deadline decides failure.
type Condition struct {
	// Desc names the condition in diagnostics, e.g. `clickable "#enrl_button"`.
	Desc string

	// Probe reports whether the condition currently holds.
	Probe func(ctx context.Context) (bool, error)
}

// WaitFor polls cond until it holds or timeout elapses.
//
// The probe runs once immediately, then once per poll interval; there is no
// busy loop tighter than poll. On deadline elapse WaitFor returns a
// DriveError with code WAIT_TIMEOUT carrying the condition description and
// the budget. An expired or canceled ctx returns ctx.Err.
//
// This is the system's only suspension primitive.
func WaitFor(ctx context.Context, cond Condition, timeout, poll time.Duration) error {
	if poll <= 0 {
		poll = DefaultPoll
	}
	deadline := time.Now().Add(timeout)

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		ok, err := cond.Probe(ctx)
		if err == nil && ok {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !time.Now().Before(deadline) {
			return NewWaitTimeout(cond.Desc, timeout)
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// DefaultPoll is the polling cadence used when a wait does not override it.
const DefaultPoll = 250 * time.Millisecond

// Present holds when a node matching selector exists.
func Present(d Driver, selector string) Condition {
	return Condition{
		Desc: fmt.Sprintf("present %q", selector),
		Probe: func(ctx context.Context) (bool, error) {
			return d.Present(ctx, selector)
		},
	}
}

// Clickable holds when a node matching selector exists, is visible, and is
// not disabled.
func Clickable(d Driver, selector string) Condition {
	return Condition{
		Desc: fmt.Sprintf("clickable %q", selector),
		Probe: func(ctx context.Context) (bool, error) {
			return d.Clickable(ctx, selector)
		},
	}
}

// Absent holds when no node matching selector exists or the node is not
// visible. The inverse of Present modulo visibility: a hidden overlay
// counts as absent.
func Absent(d Driver, selector string) Condition {
	return Condition{
		Desc: fmt.Sprintf("absent %q", selector),
		Probe: func(ctx context.Context) (bool, error) {
			ok, err := d.Present(ctx, selector)
			if err != nil {
				return false, err
			}
			return !ok, nil
		},
	}
}

// TextContains holds when the serialized document contains substr.
func TextContains(d Driver, substr string) Condition {
	return Condition{
		Desc: fmt.Sprintf("document contains %q", substr),
		Probe: func(ctx context.Context) (bool, error) {
			html, err := d.HTML(ctx)
			if err != nil {
				return false, err
			}
			return strings.Contains(html, substr), nil
		},
	}
}

// ClickableText holds when a link with visible text equal to label is
// clickable.
func ClickableText(d Driver, label string) Condition {
	return Condition{
		Desc: fmt.Sprintf("clickable link %q", label),
		Probe: func(ctx context.Context) (bool, error) {
			return d.ClickableByText(ctx, label)
		},
	}
}
