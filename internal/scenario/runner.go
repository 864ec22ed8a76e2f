package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cedarhq/uiprobe/internal/browser"
)

// Runner invokes the engine once per selected scenario over a single,
// serially-reused browser session, and aggregates outcomes into a Report.
type Runner struct {
	// Registry holds the selectable scenarios.
	Registry *Registry

	// BaseURL is the application root every run starts from.
	BaseURL string

	// Browser configures the session (headless, timeout, viewport).
	Browser browser.Config

	// SettleUnit overrides the runtime's settle unit when positive.
	// Tests shrink it so fixed waits do not dominate.
	SettleUnit time.Duration

	// Open creates the browser connection. Defaults to browser.Open;
	// tests substitute a fake.
	Open func(ctx context.Context, cfg browser.Config, log *slog.Logger) (browser.Conn, error)

	// Log receives structured run diagnostics.
	Log *slog.Logger
}

// NewRunner creates a Runner backed by a real chromedp session.
func NewRunner(reg *Registry, baseURL string, cfg browser.Config, log *slog.Logger) *Runner {
	return &Runner{
		Registry: reg,
		BaseURL:  baseURL,
		Browser:  cfg,
		Open: func(ctx context.Context, cfg browser.Config, log *slog.Logger) (browser.Conn, error) {
			return browser.Open(ctx, cfg, log)
		},
		Log: log,
	}
}

// Run executes the selected scenarios and returns the accumulated Report.
//
// selector is either SelectorAll or a single registered label. An unknown
// label fails immediately with an UNKNOWN_SCENARIO error, before any
// browser session is opened. Session-level failures (launch, initial page
// load) abort the whole run and surface as the returned error alongside
// the partial report; per-scenario failures are recorded in the report and
// the run continues.
//
// The session is torn down exactly once on every exit path.
func (r *Runner) Run(ctx context.Context, selector string) (*Report, error) {
	report := NewReport()

	// Resolve the selection first so an unknown label never costs a
	// browser launch.
	var selected []*Scenario
	if selector == SelectorAll {
		selected = r.Registry.All()
	} else {
		sc, err := r.Registry.Lookup(selector)
		if err != nil {
			return report, err
		}
		selected = []*Scenario{sc}
	}
	if len(selected) == 0 {
		return report, fmt.Errorf("no scenarios registered")
	}

	conn, err := r.Open(ctx, r.Browser, r.Log)
	if err != nil {
		return report, err
	}
	defer conn.Close()

	rt := browser.NewRuntime(conn, r.BaseURL, r.Browser.Timeout, r.Log)
	if r.SettleUnit > 0 {
		rt.SettleUnit = r.SettleUnit
	}

	// Initial load establishes the document every scenario starts from.
	// Unlike a step failure, this aborts the entire run.
	if err := rt.LoadPage(ctx, ""); err != nil {
		return report, fmt.Errorf("initial page load failed: %w", err)
	}

	for _, sc := range selected {
		report.Add(Execute(ctx, rt, sc, r.Log))
	}
	return report, nil
}
