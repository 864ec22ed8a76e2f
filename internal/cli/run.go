package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cedarhq/uiprobe/internal/browser"
	"github.com/cedarhq/uiprobe/internal/scenario"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	BaseURL      string
	Headless     bool
	TimeoutSecs  int
	ScenarioDir  string
	WindowWidth  int
	WindowHeight int

	// Open allows overriding the browser launcher (for testing).
	// If nil, the runner launches a real Chrome instance.
	Open func(ctx context.Context, cfg browser.Config, log *slog.Logger) (browser.Conn, error)

	// SettleUnit overrides the runner's settle unit (for testing).
	SettleUnit time.Duration
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "Run scenarios against a live dashboard",
		Long: `Run one scenario, or all of them, against a live dashboard instance.

The command launches a headless Chrome, loads the dashboard, drives the
selected scenario's steps, and reports pass/fail. Scenario names come from
the built-in set ('uiprobe list') plus any YAML definitions loaded with
--scenarios.

Example:
  uiprobe run                       # all scenarios
  uiprobe run dept_filter           # a single scenario
  uiprobe run --url http://localhost:3838/cedar/ --timeout 60 all`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			selector := scenario.SelectorAll
			if len(args) == 1 {
				selector = args[0]
			}
			return runScenarios(opts, selector, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.BaseURL, "url", "http://localhost:3838/cedar/", "base URL of the dashboard")
	cmd.Flags().BoolVar(&opts.Headless, "headless", true, "run Chrome headless")
	cmd.Flags().IntVar(&opts.TimeoutSecs, "timeout", 30, "per-wait timeout in seconds")
	cmd.Flags().StringVar(&opts.ScenarioDir, "scenarios", "", "directory of extra YAML scenario definitions")
	cmd.Flags().IntVar(&opts.WindowWidth, "window-width", 1920, "browser window width")
	cmd.Flags().IntVar(&opts.WindowHeight, "window-height", 1080, "browser window height")

	return cmd
}

func runScenarios(opts *RunOptions, selector string, cmd *cobra.Command) error {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	log := slog.New(handler)
	slog.SetDefault(log)

	if opts.TimeoutSecs <= 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid timeout: %d seconds", opts.TimeoutSecs))
	}

	reg := scenario.Builtins()
	if opts.ScenarioDir != "" {
		slog.Info("loading scenario definitions", "dir", opts.ScenarioDir)
		extras, err := scenario.LoadScenarioDir(opts.ScenarioDir)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load scenario definitions", err)
		}
		for _, sc := range extras {
			if err := reg.Register(sc); err != nil {
				return WrapExitError(ExitCommandError, "failed to register scenario", err)
			}
		}
		slog.Info("scenario definitions loaded", "count", len(extras))
	}

	runner := scenario.NewRunner(reg, opts.BaseURL, browser.Config{
		Headless:     opts.Headless,
		Timeout:      time.Duration(opts.TimeoutSecs) * time.Second,
		WindowWidth:  opts.WindowWidth,
		WindowHeight: opts.WindowHeight,
	}, log)
	if opts.Open != nil {
		runner.Open = opts.Open
	}
	if opts.SettleUnit > 0 {
		runner.SettleUnit = opts.SettleUnit
	}

	// Setup signal handling so Ctrl-C tears the browser down cleanly.
	// Use command's context if available (for testing), otherwise create one.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	slog.Info("starting scenarios", "selector", selector, "url", opts.BaseURL)
	report, err := runner.Run(ctx, selector)
	if err != nil {
		switch {
		case scenario.IsUnknownScenario(err):
			return WrapExitError(ExitCommandError, "unknown scenario", err)
		case browser.IsLaunchError(err):
			return WrapExitError(ExitCommandError, "browser launch failed", err)
		default:
			return WrapExitError(ExitCommandError, "run aborted", err)
		}
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		if err := renderReportJSON(out, report); err != nil {
			return WrapExitError(ExitCommandError, "failed to encode report", err)
		}
	} else {
		renderReportText(out, report)
	}

	if !report.Success() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", report.Failed(), len(report.Outcomes)))
	}
	return nil
}
