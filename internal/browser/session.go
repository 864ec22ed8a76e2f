package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	cdpruntime "github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// Config holds browser startup configuration.
type Config struct {
	// Headless runs Chrome without a visible window.
	Headless bool

	// Timeout bounds individual browser operations (navigation included).
	Timeout time.Duration

	// Viewport dimensions. Zero values fall back to 1920x1080.
	WindowWidth  int
	WindowHeight int
}

// State is the session lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateClosed
)

// Session owns a single controllable Chrome instance over CDP and
// implements Driver against it. A Session is Ready for at most one
// scenario execution at a time; the runner serially reuses it for the
// whole run and closes it exactly once.
type Session struct {
	cfg Config
	log *slog.Logger

	ctx         context.Context
	allocCancel context.CancelFunc
	ctxCancel   context.CancelFunc

	mu        sync.Mutex
	state     State
	closeOnce sync.Once
}

var _ Conn = (*Session)(nil)

// Open starts a Chrome instance and returns a Ready session. A missing or
// incompatible browser binary surfaces as a DriveError with code
// LAUNCH_FAILED; the caller aborts the whole run on it.
func Open(ctx context.Context, cfg Config, log *slog.Logger) (*Session, error) {
	w, h := cfg.WindowWidth, cfg.WindowHeight
	if w <= 0 || h <= 0 {
		w, h = 1920, 1080
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(w, h),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, ctxCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		cfg:         cfg,
		log:         log,
		ctx:         browserCtx,
		allocCancel: allocCancel,
		ctxCancel:   ctxCancel,
	}

	// Surface in-page console errors and exceptions in our log; server-side
	// failures often announce themselves there before any marker renders.
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		switch ev := ev.(type) {
		case *cdpruntime.EventConsoleAPICalled:
			if ev.Type == cdpruntime.APITypeError {
				args := make([]string, len(ev.Args))
				for i, a := range ev.Args {
					args[i] = string(a.Value)
				}
				log.Debug("browser console error", "args", strings.Join(args, " "))
			}
		case *cdpruntime.EventExceptionThrown:
			log.Warn("browser exception", "detail", ev.ExceptionDetails.Error())
		}
	})

	// An empty Run starts the browser process; this is where a missing
	// driver binary or incompatible version shows up.
	probeCtx, cancel := context.WithTimeout(browserCtx, cfg.Timeout)
	defer cancel()
	if err := chromedp.Run(probeCtx); err != nil {
		ctxCancel()
		allocCancel()
		return nil, NewLaunchError(err)
	}

	s.state = StateReady
	log.Info("browser session ready", "headless", cfg.Headless)
	return s, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close terminates the browser process and releases the allocator.
// Idempotent: every call after the first is a no-op, so it is safe on all
// exit paths.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = StateClosed
		s.mu.Unlock()

		s.ctxCancel()
		s.allocCancel()
		s.log.Info("browser session closed")
	})
	return nil
}

// run executes chromedp actions under the session context, carrying over
// the caller's deadline when one is set.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.State() != StateReady {
		return fmt.Errorf("session not ready")
	}

	runCtx := s.ctx
	cancel := context.CancelFunc(func() {})
	if dl, ok := ctx.Deadline(); ok {
		runCtx, cancel = context.WithDeadline(s.ctx, dl)
	} else if s.cfg.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(s.ctx, s.cfg.Timeout)
	}
	defer cancel()

	return chromedp.Run(runCtx, actions...)
}

// eval runs a JS expression and decodes its result into out.
func (s *Session) eval(ctx context.Context, expr string, out interface{}) error {
	return s.run(ctx, chromedp.Evaluate(expr, out))
}

// jsString encodes a Go string as a JS string literal.
func jsString(v string) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// Navigate implements Driver.
func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

// HTML implements Driver.
func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Present implements Driver.
func (s *Session) Present(ctx context.Context, selector string) (bool, error) {
	var ok bool
	expr := fmt.Sprintf(`document.querySelector(%s) !== null`, jsString(selector))
	if err := s.eval(ctx, expr, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// Clickable implements Driver: present, visible, and not disabled.
func (s *Session) Clickable(ctx context.Context, selector string) (bool, error) {
	var ok bool
	expr := fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el || el.disabled) return false;
		const cs = window.getComputedStyle(el);
		if (cs.display === 'none' || cs.visibility === 'hidden') return false;
		return el.getClientRects().length > 0;
	})()`, jsString(selector))
	if err := s.eval(ctx, expr, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// Click implements Driver.
func (s *Session) Click(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

// SendKeys implements Driver.
func (s *Session) SendKeys(ctx context.Context, selector, text string) error {
	return s.run(ctx, chromedp.SendKeys(selector, text, chromedp.ByQuery))
}

// SetValue implements Driver. The change event is dispatched explicitly so
// the host framework's input binding observes the new value.
func (s *Session) SetValue(ctx context.Context, selector, value string) error {
	var ok bool
	expr := fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el) return false;
		el.value = %s;
		el.dispatchEvent(new Event('change', { bubbles: true }));
		return true;
	})()`, jsString(selector), jsString(value))
	if err := s.eval(ctx, expr, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no element matches %q", selector)
	}
	return nil
}

// ClickableByText implements Driver: an <a> or <button> whose trimmed text
// equals label exactly and is visible.
func (s *Session) ClickableByText(ctx context.Context, label string) (bool, error) {
	var ok bool
	expr := fmt.Sprintf(`(() => {
		const want = %s;
		for (const el of document.querySelectorAll('a, button')) {
			if (el.textContent.trim() !== want) continue;
			if (el.disabled) continue;
			const cs = window.getComputedStyle(el);
			if (cs.display === 'none' || cs.visibility === 'hidden') continue;
			if (el.getClientRects().length === 0) continue;
			return true;
		}
		return false;
	})()`, jsString(label))
	if err := s.eval(ctx, expr, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// ClickByText implements Driver.
func (s *Session) ClickByText(ctx context.Context, label string) error {
	var ok bool
	expr := fmt.Sprintf(`(() => {
		const want = %s;
		for (const el of document.querySelectorAll('a, button')) {
			if (el.textContent.trim() !== want) continue;
			el.click();
			return true;
		}
		return false;
	})()`, jsString(label))
	if err := s.eval(ctx, expr, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no link or button with text %q", label)
	}
	return nil
}
