package events

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reporter "github.com/e2e-infra/run-reporter"
	"github.com/e2e-infra/run-reporter/exitcodes"
	"github.com/e2e-infra/run-reporter/types"
)

func testLogger() log.Logger {
	return log.NewLogger(log.DiscardHandler())
}

func testReporter(t *testing.T) *reporter.Reporter {
	t.Helper()
	rep, err := reporter.New(&reporter.Config{
		OutputDir:               t.TempDir(),
		MaxSlowTests:            3,
		SlowTestThreshold:       5 * time.Second,
		TimeoutWarningThreshold: 30 * time.Second,
		Log:                     testLogger(),
	})
	require.NoError(t, err)
	return rep
}

func TestReplay_FullStream(t *testing.T) {
	stream := strings.Join([]string{
		`{"kind":"runBegin","totalTests":2}`,
		`{"kind":"attempt","attempt":{"title":"logs in","suiteTitle":"auth","outcome":"expected","status":"passed","durationSeconds":1.5,"retry":0}}`,
		`{"kind":"attempt","attempt":{"title":"checks out","suiteTitle":"cart","outcome":"unexpected","status":"failed","durationSeconds":2,"retry":0,"errors":[{"message":"Timeout of 5000ms exceeded","stack":"at cart.spec.ts:12"}]}}`,
		`{"kind":"runEnd"}`,
	}, "\n")

	result, err := Replay(context.Background(), testLogger(), strings.NewReader(stream), testReporter(t))
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.HasErrors)
	assert.Equal(t, exitcodes.TestFailure, result.ExitCode)
	assert.Equal(t, 2, result.Summary.TestCount)
	assert.Equal(t, 1, result.Summary.PassedCount)
	require.Len(t, result.Summary.Failures, 1)
	assert.Equal(t, "cart::checks out", result.Summary.Failures[0].TestID)
	assert.Equal(t, types.CategoryTimeout, result.Summary.Failures[0].Category)
}

func TestReplay_MalformedLinesAreSkipped(t *testing.T) {
	stream := strings.Join([]string{
		`{"kind":"runBegin","totalTests":1}`,
		`{not valid json`,
		``,
		`{"kind":"attempt","attempt":{"title":"t","outcome":"expected","status":"passed","durationSeconds":1}}`,
		`{"kind":"runEnd"}`,
	}, "\n")

	result, err := Replay(context.Background(), testLogger(), strings.NewReader(stream), testReporter(t))
	require.NoError(t, err)
	assert.False(t, result.HasErrors)
	assert.Equal(t, 1, result.Summary.PassedCount)
}

func TestReplay_RunnerError(t *testing.T) {
	stream := strings.Join([]string{
		`{"kind":"runBegin","totalTests":1}`,
		`{"kind":"attempt","attempt":{"title":"t","outcome":"expected","status":"passed","durationSeconds":1}}`,
		`{"kind":"runnerError","error":"global setup failed"}`,
		`{"kind":"runEnd"}`,
	}, "\n")

	result, err := Replay(context.Background(), testLogger(), strings.NewReader(stream), testReporter(t))
	require.NoError(t, err)
	assert.True(t, result.HasErrors)
	assert.Equal(t, exitcodes.TestFailure, result.ExitCode)
	assert.Empty(t, result.Summary.Failures)
}

func TestReplay_TruncatedStreamStillProducesVerdict(t *testing.T) {
	// A crashed executor never writes runEnd; the run is finalized anyway.
	stream := strings.Join([]string{
		`{"kind":"runBegin","totalTests":1}`,
		`{"kind":"attempt","attempt":{"title":"t","outcome":"expected","status":"passed","durationSeconds":1}}`,
	}, "\n")

	result, err := Replay(context.Background(), testLogger(), strings.NewReader(stream), testReporter(t))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.HasErrors)
}

func TestReplay_MissingRunBegin(t *testing.T) {
	stream := `{"kind":"runEnd"}`
	_, err := Replay(context.Background(), testLogger(), strings.NewReader(strings.TrimSpace("")), testReporter(t))
	require.Error(t, err)

	// A runEnd before runBegin is a lifecycle violation surfaced to the caller.
	_, err = Replay(context.Background(), testLogger(), strings.NewReader(stream), testReporter(t))
	require.Error(t, err)
}

func TestReplay_UnknownKindIsSkipped(t *testing.T) {
	stream := strings.Join([]string{
		`{"kind":"runBegin","totalTests":1}`,
		`{"kind":"heartbeat"}`,
		`{"kind":"attempt","attempt":{"title":"t","outcome":"expected","status":"passed","durationSeconds":1}}`,
		`{"kind":"runEnd"}`,
	}, "\n")

	result, err := Replay(context.Background(), testLogger(), strings.NewReader(stream), testReporter(t))
	require.NoError(t, err)
	assert.False(t, result.HasErrors)
}

func TestAttemptPayload_Record(t *testing.T) {
	payload := AttemptPayload{
		Title:           "t",
		Status:          "passed",
		DurationSeconds: 1.5,
		Retry:           2,
		Errors:          []ErrorPayload{{Message: "m", Stack: "s"}},
	}
	record := payload.Record()
	assert.Equal(t, types.AttemptStatusPassed, record.Status)
	assert.Equal(t, 1500*time.Millisecond, record.Duration)
	assert.Equal(t, 2, record.Retry)
	require.Len(t, record.Errors, 1)
	assert.Equal(t, "m", record.Errors[0].Message)
}

func TestAttemptPayload_RecordClampsNegativeDuration(t *testing.T) {
	payload := AttemptPayload{Status: "failed", DurationSeconds: -3}
	assert.Equal(t, time.Duration(0), payload.Record().Duration)
}

func TestAttemptPayload_Metadata(t *testing.T) {
	payload := AttemptPayload{
		Title:      "logs in",
		SuiteTitle: "auth",
		FilePath:   "e2e/auth/login.spec.ts",
		Line:       12,
		Column:     3,
		Outcome:    "flaky",
		Annotations: []types.Annotation{
			{Type: "team", Description: "Frontend"},
		},
	}
	meta := payload.Metadata()
	assert.Equal(t, "auth::logs in", meta.TestID())
	assert.Equal(t, types.OutcomeFlaky, meta.Outcome)
	assert.Equal(t, 12, meta.Location.Line)
	require.Len(t, meta.Annotations, 1)
}
