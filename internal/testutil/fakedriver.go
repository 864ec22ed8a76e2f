// Package testutil provides deterministic test doubles for the browser
// layer. FakeDriver stands in for a live Chrome session so the waiter,
// the interaction primitives, and the scenario engine can be exercised
// without a browser process.
package testutil

import (
	"context"
	"fmt"
	"sync"
)

// TypedEntry records one SendKeys call.
type TypedEntry struct {
	Selector string
	Text     string
}

// ValueEntry records one SetValue call.
type ValueEntry struct {
	Selector string
	Value    string
}

// FakeDriver is an in-memory stand-in for a browser connection.
//
// Document state is mutable between calls, which lets tests model an
// eventually-consistent UI: AppearAfter makes a selector appear only
// after a number of probes, the way an async-populated widget materializes
// after the page settles.
//
// Thread-safety: all methods lock, so tests may mutate state from a
// separate goroutine while a wait loop polls.
type FakeDriver struct {
	mu sync.Mutex

	doc       string
	present   map[string]bool
	clickable map[string]bool
	links     map[string]bool
	appearIn  map[string]int

	navErr   error
	clickErr map[string]error

	// Recorded side effects, in call order.
	Navigations []string
	Clicks      []string
	Typed       []TypedEntry
	Values      []ValueEntry
	TabClicks   []string

	// CloseCalls counts Close invocations for teardown-idempotence checks.
	CloseCalls int
}

// NewFakeDriver creates an empty fake document.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{
		present:   make(map[string]bool),
		clickable: make(map[string]bool),
		links:     make(map[string]bool),
		appearIn:  make(map[string]int),
		clickErr:  make(map[string]error),
	}
}

// SetDocument replaces the serialized document text.
func (f *FakeDriver) SetDocument(html string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.doc = html
}

// AddElement makes selector present and clickable.
func (f *FakeDriver) AddElement(sel string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.present[sel] = true
	f.clickable[sel] = true
}

// AddHiddenElement makes selector present but not clickable.
func (f *FakeDriver) AddHiddenElement(sel string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.present[sel] = true
	f.clickable[sel] = false
}

// RemoveElement removes selector from the document.
func (f *FakeDriver) RemoveElement(sel string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.present, sel)
	delete(f.clickable, sel)
}

// AddLink registers a clickable link or button with the given visible text.
func (f *FakeDriver) AddLink(label string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.links[label] = true
}

// AppearAfter makes selector present and clickable only after n probes, to
// model widgets that initialize asynchronously after page load.
func (f *FakeDriver) AppearAfter(sel string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appearIn[sel] = n
}

// FailClick injects an error for clicks on selector.
func (f *FakeDriver) FailClick(sel string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clickErr[sel] = err
}

// FailNavigate injects an error for all Navigate calls.
func (f *FakeDriver) FailNavigate(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.navErr = err
}

// tick decrements the appear counter for sel and reports whether the
// element has materialized. Caller holds the lock.
func (f *FakeDriver) tick(sel string) bool {
	if n, pending := f.appearIn[sel]; pending {
		if n > 1 {
			f.appearIn[sel] = n - 1
			return false
		}
		delete(f.appearIn, sel)
		f.present[sel] = true
		f.clickable[sel] = true
	}
	return true
}

// Navigate implements browser.Driver.
func (f *FakeDriver) Navigate(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.navErr != nil {
		return f.navErr
	}
	f.Navigations = append(f.Navigations, url)
	return nil
}

// HTML implements browser.Driver.
func (f *FakeDriver) HTML(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.doc, nil
}

// Present implements browser.Driver.
func (f *FakeDriver) Present(_ context.Context, sel string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.tick(sel) {
		return false, nil
	}
	return f.present[sel], nil
}

// Clickable implements browser.Driver.
func (f *FakeDriver) Clickable(_ context.Context, sel string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.tick(sel) {
		return false, nil
	}
	return f.clickable[sel], nil
}

// Click implements browser.Driver.
func (f *FakeDriver) Click(_ context.Context, sel string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.clickErr[sel]; err != nil {
		return err
	}
	if !f.present[sel] {
		return fmt.Errorf("no element matches %q", sel)
	}
	f.Clicks = append(f.Clicks, sel)
	return nil
}

// SendKeys implements browser.Driver.
func (f *FakeDriver) SendKeys(_ context.Context, sel, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.present[sel] {
		return fmt.Errorf("no element matches %q", sel)
	}
	f.Typed = append(f.Typed, TypedEntry{Selector: sel, Text: text})
	return nil
}

// SetValue implements browser.Driver.
func (f *FakeDriver) SetValue(_ context.Context, sel, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.present[sel] {
		return fmt.Errorf("no element matches %q", sel)
	}
	f.Values = append(f.Values, ValueEntry{Selector: sel, Value: value})
	return nil
}

// ClickableByText implements browser.Driver.
func (f *FakeDriver) ClickableByText(_ context.Context, label string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.links[label], nil
}

// ClickByText implements browser.Driver.
func (f *FakeDriver) ClickByText(_ context.Context, label string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.links[label] {
		return fmt.Errorf("no link or button with text %q", label)
	}
	f.TabClicks = append(f.TabClicks, label)
	return nil
}

// Close implements browser.Conn. Always succeeds; calls are counted so
// tests can assert teardown happens exactly once per resource.
func (f *FakeDriver) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CloseCalls++
	return nil
}
