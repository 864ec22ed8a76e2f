package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cedarhq/uiprobe/internal/browser"
	"github.com/cedarhq/uiprobe/internal/scenario"
	"github.com/cedarhq/uiprobe/internal/testutil"
)

// fakeOpen injects an in-memory driver in place of a Chrome launch.
func fakeOpen(d *testutil.FakeDriver) func(ctx context.Context, cfg browser.Config, log *slog.Logger) (browser.Conn, error) {
	return func(ctx context.Context, cfg browser.Config, log *slog.Logger) (browser.Conn, error) {
		return d, nil
	}
}

func newRunTestOptions(d *testutil.FakeDriver, format string) *RunOptions {
	return &RunOptions{
		RootOptions: &RootOptions{Format: format},
		BaseURL:     "http://localhost:3838/cedar/",
		Headless:    true,
		TimeoutSecs: 1,
		Open:        fakeOpen(d),
		SettleUnit:  time.Millisecond,
	}
}

// enrollmentPage lays out what the enrollment scenario needs.
func enrollmentPage() *testutil.FakeDriver {
	d := testutil.NewFakeDriver()
	d.AddElement("body")
	d.AddLink("Enrollment")
	d.AddElement("#enrl_dept")
	d.SetDocument("<html><body>dashboard</body></html>")
	return d
}

func newOutputCommand(buf *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	return cmd
}

func TestRunScenarios_SingleScenarioPasses(t *testing.T) {
	d := enrollmentPage()
	buf := &bytes.Buffer{}

	err := runScenarios(newRunTestOptions(d, "text"), "enrollment", newOutputCommand(buf))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "✓ enrollment")
	assert.Contains(t, buf.String(), "All scenarios passed")
	assert.Equal(t, []string{"Enrollment"}, d.TabClicks)
}

func TestRunScenarios_FailureExitCode(t *testing.T) {
	d := testutil.NewFakeDriver()
	d.AddElement("body")
	// No Enrollment tab: the scenario's first step times out.
	buf := &bytes.Buffer{}

	err := runScenarios(newRunTestOptions(d, "text"), "enrollment", newOutputCommand(buf))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	// The report is still rendered in full before the failure exit.
	assert.Contains(t, buf.String(), "✗ enrollment")
	assert.Contains(t, buf.String(), "Some scenarios failed")
}

func TestRunScenarios_UnknownScenario(t *testing.T) {
	d := enrollmentPage()
	buf := &bytes.Buffer{}

	err := runScenarios(newRunTestOptions(d, "text"), "no_such_scenario", newOutputCommand(buf))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, scenario.IsUnknownScenario(err))

	// No report for a selection that never resolved.
	assert.Empty(t, buf.String())
}

func TestRunScenarios_JSONOutput(t *testing.T) {
	d := enrollmentPage()
	buf := &bytes.Buffer{}

	err := runScenarios(newRunTestOptions(d, "json"), "enrollment", newOutputCommand(buf))
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestRunScenarios_InvalidTimeout(t *testing.T) {
	opts := newRunTestOptions(enrollmentPage(), "text")
	opts.TimeoutSecs = 0

	err := runScenarios(opts, "enrollment", newOutputCommand(&bytes.Buffer{}))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunScenarios_ExtraScenarioDir(t *testing.T) {
	dir := t.TempDir()
	yaml := `label: ping
description: Page body renders
steps:
  - op: expect_present
    selector: body
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ping.yaml"), []byte(yaml), 0644))

	d := enrollmentPage()
	opts := newRunTestOptions(d, "text")
	opts.ScenarioDir = dir
	buf := &bytes.Buffer{}

	err := runScenarios(opts, "ping", newOutputCommand(buf))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ ping")
}

func TestRunScenarios_BadScenarioDir(t *testing.T) {
	opts := newRunTestOptions(enrollmentPage(), "text")
	opts.ScenarioDir = "/nonexistent/scenarios"

	err := runScenarios(opts, "enrollment", newOutputCommand(&bytes.Buffer{}))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunScenarios_DuplicateExtraLabel(t *testing.T) {
	dir := t.TempDir()
	yaml := `label: enrollment
description: collides with a builtin
steps:
  - op: load_page
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dup.yaml"), []byte(yaml), 0644))

	opts := newRunTestOptions(enrollmentPage(), "text")
	opts.ScenarioDir = dir

	err := runScenarios(opts, "enrollment", newOutputCommand(&bytes.Buffer{}))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "already registered")
}

func TestNewRunCommand_FlagDefaults(t *testing.T) {
	cmd := NewRunCommand(&RootOptions{Format: "text"})

	assert.Equal(t, "http://localhost:3838/cedar/", cmd.Flags().Lookup("url").DefValue)
	assert.Equal(t, "true", cmd.Flags().Lookup("headless").DefValue)
	assert.Equal(t, "30", cmd.Flags().Lookup("timeout").DefValue)
	assert.Equal(t, "", cmd.Flags().Lookup("scenarios").DefValue)
}

func TestNewRunCommand_RejectsExtraArgs(t *testing.T) {
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"one", "two"})

	err := cmd.Execute()
	require.Error(t, err)
}
