package reporter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ethereum/go-ethereum/log"

	"github.com/e2e-infra/run-reporter/collector"
	"github.com/e2e-infra/run-reporter/exitcodes"
	"github.com/e2e-infra/run-reporter/metrics"
	"github.com/e2e-infra/run-reporter/reporting"
	"github.com/e2e-infra/run-reporter/suggest"
	"github.com/e2e-infra/run-reporter/summary"
	"github.com/e2e-infra/run-reporter/triage"
	"github.com/e2e-infra/run-reporter/types"
)

// runState tracks the controller's lifecycle position.
type runState int

const (
	stateNotStarted runState = iota
	stateRunning
	stateEnded
)

func (s runState) String() string {
	switch s {
	case stateNotStarted:
		return "not-started"
	case stateRunning:
		return "running"
	case stateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// RunResult is the terminal outcome of a run: the aggregated summary and the
// exit signal. The exit signal is the system's sole externally observable
// correctness contract.
type RunResult struct {
	RunID        string
	Summary      *types.RunSummary
	HasErrors    bool
	NoTestsFound bool
	ExitCode     int
}

// Reporter is the top-level state machine driving aggregation. The host
// executor delivers a strictly serialized callback sequence: Begin once, an
// interleaved sequence of RecordAttempt/RecordError calls, then End once.
// The reporter performs no internal threading; all mutable state is owned by
// these handlers.
type Reporter struct {
	cfg        *Config
	log        log.Logger
	store      *collector.Store
	aggregator *summary.Aggregator
	console    *reporting.ConsoleReporter
	writer     *reporting.ArtifactWriter
	suggester  *suggest.Client

	state         runState
	ctx           context.Context
	span          trace.Span
	runID         string
	startTime     time.Time
	declaredTotal int
	buildInfo     *types.BuildInfo
	runnerErrors  []error
	provisional   []types.Failure
	interrupted   bool
	result        *RunResult
}

// New creates a reporter from configuration. No artifacts are touched until
// Begin resolves the effective output location.
func New(cfg *Config) (*Reporter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	roster, err := cfg.TeamRoster()
	if err != nil {
		return nil, fmt.Errorf("failed to build team roster: %w", err)
	}

	r := &Reporter{
		cfg:        cfg,
		log:        cfg.Log,
		store:      collector.NewStore(cfg.Log, roster),
		aggregator: summary.NewAggregator(cfg.Log, cfg.MaxSlowTests),
		console:    reporting.NewConsoleReporter(cfg.ShowStackTrace, cfg.SlowTestThreshold),
		state:      stateNotStarted,
	}
	if cfg.GenerateFix {
		r.suggester = suggest.NewClient(cfg.Log, cfg.SuggestEndpoint)
	}
	return r, nil
}

// Begin transitions NotStarted -> Running. It captures the start timestamp,
// assigns the run ID and resolves the effective output location, honoring
// project-level overrides in declaration order.
func (r *Reporter) Begin(ctx context.Context, totalTestCount int, build *types.BuildInfo) error {
	if r.state != stateNotStarted {
		return fmt.Errorf("begin called in state %s", r.state)
	}

	r.runID = uuid.New().String()
	r.startTime = time.Now()
	r.declaredTotal = totalTestCount
	r.buildInfo = build
	r.writer = reporting.NewArtifactWriter(r.log, r.cfg.EffectiveOutputDir())

	r.ctx, r.span = otel.Tracer("run-reporter").Start(ctx, "test-run",
		trace.WithAttributes(attribute.String("run.id", r.runID)))

	r.state = stateRunning
	r.log.Info("Run started",
		"run_id", r.runID,
		"declared_tests", totalTestCount,
		"output_dir", r.writer.OutputDir())
	return nil
}

// RecordError records a setup/teardown error reported outside the per-test
// attempt stream. Such errors always force a failing exit signal.
func (r *Reporter) RecordError(err error) error {
	if r.state != stateRunning {
		return fmt.Errorf("recordError called in state %s", r.state)
	}
	r.runnerErrors = append(r.runnerErrors, err)
	r.log.Error("Runner-level error recorded", "error", err)
	metrics.RecordErrorDetails("runner error", err)
	return nil
}

// RecordAttempt ingests one completed attempt. The record is ensured first,
// so the append can never miss. Failed and timed-out attempts immediately
// materialize a provisional failure projection for streaming consumers; an
// interrupted attempt sets the sticky run-level interruption flag.
func (r *Reporter) RecordAttempt(meta types.TestMetadata, attempt types.AttemptRecord) error {
	if r.state != stateRunning {
		return fmt.Errorf("recordAttempt called in state %s", r.state)
	}

	record := r.store.EnsureRecord(meta)
	r.store.AppendAttempt(record.Metadata.TestID(), attempt)

	switch attempt.Status {
	case types.AttemptStatusFailed, types.AttemptStatusTimedOut:
		provisional := triage.ProvisionalFailure(record.Metadata, attempt)
		r.provisional = append(r.provisional, provisional)
		r.log.Debug("Provisional failure recorded",
			"testId", provisional.TestID,
			"category", provisional.Category,
			"retry", attempt.Retry)
	case types.AttemptStatusInterrupted:
		r.interrupted = true
		r.log.Warn("Run interruption recorded", "testId", record.Metadata.TestID())
	}

	if attempt.Duration > r.cfg.TimeoutWarningThreshold {
		r.log.Warn("Attempt duration close to timeout budget",
			"testId", record.Metadata.TestID(),
			"duration", attempt.Duration)
	}
	return nil
}

// ProvisionalFailures returns the streaming failure projections materialized
// so far, in ingestion order.
func (r *Reporter) ProvisionalFailures() []types.Failure {
	out := make([]types.Failure, len(r.provisional))
	copy(out, r.provisional)
	return out
}

// Interrupted reports whether the sticky run-level interruption flag is set.
func (r *Reporter) Interrupted() bool {
	return r.interrupted
}

// End transitions Running -> Ended, aggregates the store, persists artifacts
// and computes the exit signal. Calling End twice returns the first result
// without recounting anything. Persistence failures are logged and swallowed;
// the exit signal derives purely from test outcomes and runner-level errors.
func (r *Reporter) End() (*RunResult, error) {
	if r.state == stateEnded {
		return r.result, nil
	}
	if r.state != stateRunning {
		return nil, fmt.Errorf("end called in state %s", r.state)
	}
	r.state = stateEnded
	if r.span != nil {
		defer r.span.End()
	}

	wallClock := time.Since(r.startTime)

	if r.store.Len() == 0 {
		r.log.Error("No tests found")
		metrics.RecordError("no tests found")
		r.result = &RunResult{
			RunID:        r.runID,
			HasErrors:    true,
			NoTestsFound: true,
			ExitCode:     exitcodes.TestFailure,
		}
		return r.result, nil
	}

	runSummary := r.aggregator.Aggregate(r.store)
	runSummary.TotalTime = wallClock
	runSummary.BuildInfo = r.buildInfo

	hasErrors := len(runSummary.Failures) > 0 || len(r.runnerErrors) > 0 || r.interrupted

	failedIDs := make([]string, 0, len(runSummary.Failures))
	for _, failure := range runSummary.Failures {
		failedIDs = append(failedIDs, failure.TestID)
	}

	// Load the previous run before its record is overwritten below.
	previous, err := reporting.LoadLastRun(r.writer.OutputDir())
	if err != nil {
		r.log.Warn("Failed to load last-run history", "error", err)
	}
	delta := reporting.CompareRuns(previous, failedIDs)

	r.persist(runSummary, failedIDs)

	fmt.Print(r.console.Render(runSummary, r.store.Records(), &delta))

	exitCode := exitcodes.Success
	if hasErrors {
		exitCode = exitcodes.TestFailure
	}

	metrics.RecordRun(r.runID, hasErrors, runSummary, wallClock)
	if r.span != nil {
		r.span.SetAttributes(
			attribute.Int("tests.total", runSummary.TestCount),
			attribute.Int("tests.failed", runSummary.FailedCount),
			attribute.Bool("run.has_errors", hasErrors),
		)
	}

	r.result = &RunResult{
		RunID:     r.runID,
		Summary:   &runSummary,
		HasErrors: hasErrors,
		ExitCode:  exitCode,
	}

	// The suggestion stage runs strictly after the exit signal is computed
	// and is awaited fully so its artifacts are observable before exit. Its
	// failures can never alter the signal.
	if r.suggester != nil && len(runSummary.Failures) > 0 {
		r.generateSuggestions(runSummary.Failures)
	}

	r.log.Info("Run ended",
		"run_id", r.runID,
		"tests", runSummary.TestCount,
		"failed", runSummary.FailedCount,
		"runner_errors", len(r.runnerErrors),
		"interrupted", r.interrupted,
		"exit_code", exitCode)

	return r.result, nil
}

// persist writes all run artifacts. Each write failure is logged and counted
// but never surfaces to the caller.
func (r *Reporter) persist(runSummary types.RunSummary, failedIDs []string) {
	details := reporting.BuildDetails(r.store.Records())
	if err := r.writer.WriteSummary(runSummary, details); err != nil {
		r.log.Error("Failed to write summary artifact", "error", err)
		metrics.RecordErrorDetails("write summary", err)
	}
	if err := r.writer.WriteFailures(runSummary.Failures); err != nil {
		r.log.Error("Failed to write failures artifact", "error", err)
		metrics.RecordErrorDetails("write failures", err)
	}
	if err := r.writer.WriteLastRun(reporting.NewLastRun(failedIDs)); err != nil {
		r.log.Error("Failed to write last-run record", "error", err)
		metrics.RecordErrorDetails("write last-run", err)
	}
}

func (r *Reporter) generateSuggestions(failures []types.Failure) {
	ctx := r.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	suggestions := r.suggester.SuggestFixes(ctx, failures)
	if len(suggestions) == 0 {
		return
	}
	if err := r.suggester.WriteSuggestions(r.writer.OutputDir(), suggestions); err != nil {
		r.log.Error("Failed to write fix suggestions", "error", err)
		metrics.RecordErrorDetails("write suggestions", err)
	}
}
