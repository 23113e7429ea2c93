package summary

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e2e-infra/run-reporter/collector"
	"github.com/e2e-infra/run-reporter/types"
)

func testLogger() log.Logger {
	return log.NewLogger(log.DiscardHandler())
}

func addTest(store *collector.Store, title string, outcome types.Outcome, attempts ...types.AttemptRecord) {
	record := store.EnsureRecord(types.TestMetadata{Title: title, SuiteTitle: "suite", Outcome: outcome})
	for _, attempt := range attempts {
		store.AppendAttempt(record.Metadata.TestID(), attempt)
	}
}

func TestAggregate_CountsAndFailures(t *testing.T) {
	store := collector.NewStore(testLogger(), nil)

	addTest(store, "passes", types.OutcomeExpected,
		types.AttemptRecord{Status: types.AttemptStatusPassed, Duration: time.Second})
	addTest(store, "fails", types.OutcomeUnexpected,
		types.AttemptRecord{Status: types.AttemptStatusFailed,
			Errors: []types.AttemptError{{Message: "assertion failed"}}})
	addTest(store, "skips", types.OutcomeSkipped,
		types.AttemptRecord{Status: types.AttemptStatusSkipped})
	addTest(store, "errors", types.Outcome("mystery"),
		types.AttemptRecord{Status: types.AttemptStatusFailed})

	summary := NewAggregator(testLogger(), 0).Aggregate(store)

	assert.Equal(t, 4, summary.TestCount)
	assert.Equal(t, 1, summary.PassedCount)
	assert.Equal(t, 2, summary.FailedCount, "errored tests land in the failed bucket")
	assert.Equal(t, 1, summary.SkippedCount)
	require.Len(t, summary.Failures, 2)
	assert.Equal(t, types.CategoryAssertionFailure, summary.Failures[0].Category)
	assert.Equal(t, "Unknown outcome: mystery", summary.Failures[1].Message)
}

func TestAggregate_FlakyContributesOnlyPassingAttempt(t *testing.T) {
	store := collector.NewStore(testLogger(), nil)

	addTest(store, "flaky", types.OutcomeFlaky,
		types.AttemptRecord{Status: types.AttemptStatusFailed, Duration: 10 * time.Second, Retry: 0},
		types.AttemptRecord{Status: types.AttemptStatusPassed, Duration: time.Second, Retry: 1},
	)
	addTest(store, "steady", types.OutcomeExpected,
		types.AttemptRecord{Status: types.AttemptStatusPassed, Duration: 3 * time.Second})

	summary := NewAggregator(testLogger(), 5).Aggregate(store)

	assert.Equal(t, 2, summary.PassedCount)
	assert.Equal(t, 0, summary.FailedCount)
	assert.Empty(t, summary.Failures, "flaky tests are passed and emit no failure")

	// The 10s failed attempt is excluded from the timing pool: mean of [1, 3] is 2.
	assert.Equal(t, 2*time.Second, summary.AverageTime)
	assert.Equal(t, 3*time.Second, summary.SlowestTest)
	require.Len(t, summary.SlowestTests, 2)
	assert.Equal(t, "steady", summary.SlowestTests[0].Title)
	assert.Equal(t, "flaky", summary.SlowestTests[1].Title)
}

func TestAggregate_EmptyStore(t *testing.T) {
	store := collector.NewStore(testLogger(), nil)

	summary := NewAggregator(testLogger(), 3).Aggregate(store)
	assert.Equal(t, 0, summary.TestCount)
	assert.Equal(t, time.Duration(0), summary.AverageTime)
	assert.Equal(t, time.Duration(0), summary.SlowestTest)
	assert.Empty(t, summary.SlowestTests)
	assert.Empty(t, summary.Failures)
}

func TestAggregate_SlowestListIsCappedAndSorted(t *testing.T) {
	store := collector.NewStore(testLogger(), nil)

	durations := []time.Duration{2 * time.Second, 5 * time.Second, time.Second, 4 * time.Second}
	for i, d := range durations {
		addTest(store, string(rune('a'+i)), types.OutcomeExpected,
			types.AttemptRecord{Status: types.AttemptStatusPassed, Duration: d})
	}

	summary := NewAggregator(testLogger(), 3).Aggregate(store)

	require.Len(t, summary.SlowestTests, 3)
	assert.Equal(t, 5*time.Second, summary.SlowestTests[0].Duration)
	assert.Equal(t, 4*time.Second, summary.SlowestTests[1].Duration)
	assert.Equal(t, 2*time.Second, summary.SlowestTests[2].Duration)
	assert.Equal(t, 5*time.Second, summary.SlowestTest)
}

func TestAggregate_IsDeterministic(t *testing.T) {
	store := collector.NewStore(testLogger(), nil)

	addTest(store, "passes", types.OutcomeExpected,
		types.AttemptRecord{Status: types.AttemptStatusPassed, Duration: time.Second})
	addTest(store, "fails", types.OutcomeUnexpected,
		types.AttemptRecord{Status: types.AttemptStatusFailed,
			Errors: []types.AttemptError{{Message: "Timeout exceeded", Stack: "at foo"}}})

	aggregator := NewAggregator(testLogger(), 3)
	first := aggregator.Aggregate(store)
	second := aggregator.Aggregate(store)
	require.Equal(t, first, second, "aggregation must not mutate the store")
}

func TestSlowestN_TiesKeepEncounterOrder(t *testing.T) {
	pool := []types.SlowTest{
		{Title: "a", Duration: time.Second},
		{Title: "b", Duration: time.Second},
		{Title: "c", Duration: 2 * time.Second},
	}
	top := slowestN(pool, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "c", top[0].Title)
	assert.Equal(t, "a", top[1].Title)
	assert.Equal(t, "b", top[2].Title)
	// The input pool is untouched.
	assert.Equal(t, "a", pool[0].Title)
}
