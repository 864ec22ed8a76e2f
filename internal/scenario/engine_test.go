package scenario

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cedarhq/uiprobe/internal/browser"
	"github.com/cedarhq/uiprobe/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newEngineRuntime pairs a fake driver with a fast runtime.
func newEngineRuntime(d *testutil.FakeDriver) *browser.Runtime {
	rt := browser.NewRuntime(d, "http://localhost:3838/cedar/", 100*time.Millisecond, discardLogger())
	rt.SettleUnit = time.Millisecond
	return rt
}

// countingStep returns a raw step that increments n when it runs.
func countingStep(desc string, n *int) Step {
	return raw(desc, func(ctx context.Context, rt *browser.Runtime) error {
		*n++
		return nil
	})
}

func failingStep(desc string, err error) Step {
	return raw(desc, func(ctx context.Context, rt *browser.Runtime) error {
		return err
	})
}

func TestExecute_AllStepsPass(t *testing.T) {
	d := testutil.NewFakeDriver()
	rt := newEngineRuntime(d)

	ran := 0
	sc := &Scenario{
		Label: "happy",
		Steps: []Step{
			countingStep("first", &ran),
			countingStep("second", &ran),
		},
	}

	out := Execute(context.Background(), rt, sc, discardLogger())

	assert.True(t, out.Success)
	assert.Equal(t, "happy", out.Label)
	assert.Empty(t, out.Diagnostics)
	assert.Equal(t, 2, ran)
}

func TestExecute_FailFast(t *testing.T) {
	d := testutil.NewFakeDriver()
	rt := newEngineRuntime(d)

	ran := 0
	sc := &Scenario{
		Label: "fails_midway",
		Steps: []Step{
			countingStep("first", &ran),
			failingStep("second", errors.New("element vanished")),
			countingStep("third", &ran),
		},
	}

	out := Execute(context.Background(), rt, sc, discardLogger())

	assert.False(t, out.Success)
	// The step after the failure never ran.
	assert.Equal(t, 1, ran)
	require.Len(t, out.Diagnostics, 1)
	assert.Contains(t, out.Diagnostics[0], "step 2/3")
	assert.Contains(t, out.Diagnostics[0], "second")
	assert.Contains(t, out.Diagnostics[0], "element vanished")
}

func TestExecute_WaitTimeoutRecordedVerbatim(t *testing.T) {
	d := testutil.NewFakeDriver()
	rt := newEngineRuntime(d)

	sc := &Scenario{
		Label: "times_out",
		Steps: []Step{
			ExpectPresent("results table", "#never_renders"),
		},
	}

	out := Execute(context.Background(), rt, sc, discardLogger())

	assert.False(t, out.Success)
	require.Len(t, out.Diagnostics, 1)
	assert.Contains(t, out.Diagnostics[0], "WAIT_TIMEOUT")
}

func TestExecute_ErrorMarkerFlipsSuccess(t *testing.T) {
	d := testutil.NewFakeDriver()
	d.SetDocument("<html><body><div>An error has occurred</div></body></html>")
	rt := newEngineRuntime(d)

	ran := 0
	sc := &Scenario{
		Label: "server_error",
		Steps: []Step{countingStep("only", &ran)},
	}

	out := Execute(context.Background(), rt, sc, discardLogger())

	// Every step succeeded, yet the rendered output carries a failure.
	assert.Equal(t, 1, ran)
	assert.False(t, out.Success)
	require.Len(t, out.Diagnostics, 1)
	assert.Contains(t, out.Diagnostics[0], "APP_ERROR_SIGNAL")
	assert.Contains(t, out.Diagnostics[0], "An error has occurred")
}

func TestExecute_MissingDataObjectMarker(t *testing.T) {
	d := testutil.NewFakeDriver()
	d.SetDocument("<html><body>object 'hr_data' not found</body></html>")
	rt := newEngineRuntime(d)

	sc := &Scenario{
		Label: "stale_data",
		Steps: []Step{raw("noop", func(ctx context.Context, rt *browser.Runtime) error { return nil })},
	}

	out := Execute(context.Background(), rt, sc, discardLogger())
	assert.False(t, out.Success)
	assert.Contains(t, out.Diagnostics[0], "hr_data")
}

func TestExecute_CleanDocumentPasses(t *testing.T) {
	d := testutil.NewFakeDriver()
	d.SetDocument("<html><body><table id='results'>42 rows</table></body></html>")
	rt := newEngineRuntime(d)

	sc := &Scenario{
		Label: "clean",
		Steps: []Step{raw("noop", func(ctx context.Context, rt *browser.Runtime) error { return nil })},
	}

	out := Execute(context.Background(), rt, sc, discardLogger())
	assert.True(t, out.Success)
	assert.Empty(t, out.Diagnostics)
}

func TestExecute_SoftCheckWarningDoesNotFlip(t *testing.T) {
	d := testutil.NewFakeDriver()
	rt := newEngineRuntime(d)

	sc := &Scenario{
		Label: "slow_table",
		Steps: []Step{raw("noop", func(ctx context.Context, rt *browser.Runtime) error { return nil })},
		SoftChecks: []SoftCheck{
			{Desc: "results table", Selector: ".dataTables_wrapper"},
		},
	}

	out := Execute(context.Background(), rt, sc, discardLogger())

	assert.True(t, out.Success)
	require.Len(t, out.Diagnostics, 1)
	assert.Contains(t, out.Diagnostics[0], "warning: results table not rendered")
}

func TestExecute_SoftCheckSatisfiedIsSilent(t *testing.T) {
	d := testutil.NewFakeDriver()
	d.AddElement(".dataTables_wrapper")
	rt := newEngineRuntime(d)

	sc := &Scenario{
		Label: "fast_table",
		Steps: []Step{raw("noop", func(ctx context.Context, rt *browser.Runtime) error { return nil })},
		SoftChecks: []SoftCheck{
			{Desc: "results table", Selector: ".dataTables_wrapper"},
		},
	}

	out := Execute(context.Background(), rt, sc, discardLogger())
	assert.True(t, out.Success)
	assert.Empty(t, out.Diagnostics)
}

func TestExecute_SoftChecksSkippedAfterFailure(t *testing.T) {
	d := testutil.NewFakeDriver()
	rt := newEngineRuntime(d)

	sc := &Scenario{
		Label: "broken",
		Steps: []Step{failingStep("boom", errors.New("boom"))},
		SoftChecks: []SoftCheck{
			{Desc: "results table", Selector: ".dataTables_wrapper"},
		},
	}

	out := Execute(context.Background(), rt, sc, discardLogger())

	assert.False(t, out.Success)
	// Only the step failure; no soft-check noise on top of a hard failure.
	require.Len(t, out.Diagnostics, 1)
	assert.NotContains(t, out.Diagnostics[0], "warning")
}

func TestExecute_StepErrorNeverPropagates(t *testing.T) {
	d := testutil.NewFakeDriver()
	rt := newEngineRuntime(d)

	sc := &Scenario{
		Label: "absorbed",
		Steps: []Step{failingStep("boom", browser.NewWaitTimeout("clickable #x", time.Second))},
	}

	// Execute returns an Outcome, not an error; the failure is data.
	out := Execute(context.Background(), rt, sc, discardLogger())
	assert.False(t, out.Success)
}
