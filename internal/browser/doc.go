// Package browser drives a single Chrome instance against the dashboard
// under test.
//
// The package is split into four layers, leaf first:
//
//   - Driver: the minimal DOM query/mutation surface. The chromedp-backed
//     Session implements it for real runs; tests substitute an in-memory
//     fake.
//   - Waiter: WaitFor polls a Condition against live document state until
//     it holds or a deadline passes. It is the only suspension point in
//     the system; everything above inherits its timeout semantics.
//   - Overlay handling: best-effort dismissal of incidental blocking
//     modals. Absence of a modal is the common case and is not an error.
//   - Runtime: the interaction primitives (load page, select from an
//     async combobox, set a static dropdown, click, switch tabs) composed
//     from the layers below.
//
// Primitives never retry beyond the waiter's own poll loop. A condition
// that times out once is reported as a genuine failure; flakiness is
// treated as diagnostic signal, not something to paper over.
package browser
