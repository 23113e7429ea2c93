package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/urfave/cli/v2"

	reporter "github.com/e2e-infra/run-reporter"
	"github.com/e2e-infra/run-reporter/events"
	"github.com/e2e-infra/run-reporter/exitcodes"
	"github.com/e2e-infra/run-reporter/flags"
	"github.com/e2e-infra/run-reporter/service"
)

var (
	Version   = "v0.3.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "run-reporter"
	app.Usage = "CI test-run aggregation and reporting"
	app.Description = "run-reporter folds per-test attempt events into a run summary, JSON artifacts and a pass/fail exit signal"
	app.Flags = flags.Flags
	app.Action = run
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			if reporter.IsRuntimeError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
			} else {
				// Test failures and unspecified errors both exit 1.
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
			}
		}
	}

	// Telemetry is best-effort; a missing collector must not block reporting.
	shutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(app.Name),
		otelconfig.WithServiceVersion(app.Version),
	)
	if err != nil {
		log.Warn("Failed to configure open telemetry", "error", err)
	} else {
		defer shutdown()
	}

	if err := app.Run(os.Args); err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func run(ctx *cli.Context) error {
	logger := log.NewLogger(log.NewTerminalHandler(os.Stderr, true))
	log.SetDefault(logger)

	cfg, err := reporter.NewConfig(ctx, logger)
	if err != nil {
		return reporter.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}

	if cfg.ServeMetrics {
		svc := service.New(logger)
		svc.Start(ctx.Context)
		defer svc.Shutdown()
	}

	rep, err := reporter.New(cfg)
	if err != nil {
		return reporter.NewRuntimeError(fmt.Errorf("failed to create reporter: %w", err))
	}

	input, closeInput, err := openEvents(cfg.EventsFile)
	if err != nil {
		return reporter.NewRuntimeError(err)
	}
	defer closeInput()

	result, err := events.Replay(ctx.Context, logger, input, rep)
	if err != nil {
		return reporter.NewRuntimeError(err)
	}

	if result.NoTestsFound {
		return reporter.NewTestFailureError(reporter.ErrNoTestsFound.Error())
	}
	if result.HasErrors {
		return reporter.NewTestFailureError(fmt.Sprintf(
			"run %s completed with %d failed of %d tests",
			result.RunID, result.Summary.FailedCount, result.Summary.TestCount))
	}
	return nil
}

// openEvents returns the event stream reader: stdin for "-", otherwise the
// named file.
func openEvents(path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open events file %q: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}
