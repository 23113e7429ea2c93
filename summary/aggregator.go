// Package summary folds resolved test records into run-level statistics.
package summary

import (
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/montanaflynn/stats"

	"github.com/e2e-infra/run-reporter/collector"
	"github.com/e2e-infra/run-reporter/triage"
	"github.com/e2e-infra/run-reporter/types"
)

// DefaultMaxSlowTests is the number of slowest passed attempts reported when
// no explicit limit is configured.
const DefaultMaxSlowTests = 3

// Aggregator computes a RunSummary from a record store. Aggregation is a pure
// fold: it never mutates the store, and repeated calls on an unmutated store
// yield identical output.
type Aggregator struct {
	log          log.Logger
	maxSlowTests int
}

// NewAggregator creates an aggregator reporting at most maxSlowTests slowest
// passed attempts.
func NewAggregator(logger log.Logger, maxSlowTests int) *Aggregator {
	if maxSlowTests <= 0 {
		maxSlowTests = DefaultMaxSlowTests
	}
	return &Aggregator{
		log:          logger,
		maxSlowTests: maxSlowTests,
	}
}

// Aggregate resolves every record exactly once and accumulates counts, the
// passed-attempt duration pool and the failure list. Timing statistics are
// computed over individual attempts whose own status is passed, so a flaky
// test contributes only its passing attempt's duration.
func (a *Aggregator) Aggregate(store *collector.Store) types.RunSummary {
	summary := types.RunSummary{
		SlowestTests: make([]types.SlowTest, 0),
		Failures:     make([]types.Failure, 0),
	}

	passedAttempts := make([]types.SlowTest, 0)

	for _, record := range store.Records() {
		summary.TestCount++

		status, failure := triage.Resolve(record)
		switch status {
		case types.TestStatusPass:
			summary.PassedCount++
		case types.TestStatusSkip:
			summary.SkippedCount++
		default:
			// Failed and errored tests both land in the failed bucket.
			summary.FailedCount++
			if failure != nil {
				summary.Failures = append(summary.Failures, *failure)
			}
		}

		for _, attempt := range record.Attempts {
			if attempt.Status == types.AttemptStatusPassed {
				passedAttempts = append(passedAttempts, types.SlowTest{
					Title:    record.Metadata.Title,
					Duration: attempt.Duration,
				})
			}
		}
	}

	summary.AverageTime = averageDuration(passedAttempts)
	summary.SlowestTest = maxDuration(passedAttempts)
	summary.SlowestTests = slowestN(passedAttempts, a.maxSlowTests)

	a.log.Debug("Aggregated run summary",
		"tests", summary.TestCount,
		"passed", summary.PassedCount,
		"failed", summary.FailedCount,
		"skipped", summary.SkippedCount,
		"passedAttempts", len(passedAttempts))

	return summary
}

// averageDuration returns the arithmetic mean of the passed-attempt pool,
// or 0 for an empty pool.
func averageDuration(pool []types.SlowTest) time.Duration {
	if len(pool) == 0 {
		return 0
	}
	seconds := make([]float64, len(pool))
	for i, entry := range pool {
		seconds[i] = entry.Duration.Seconds()
	}
	mean, err := stats.Mean(seconds)
	if err != nil {
		return 0
	}
	return time.Duration(mean * float64(time.Second))
}

// maxDuration returns the longest passed-attempt duration, or 0 for an empty pool.
func maxDuration(pool []types.SlowTest) time.Duration {
	var longest time.Duration
	for _, entry := range pool {
		if entry.Duration > longest {
			longest = entry.Duration
		}
	}
	return longest
}

// slowestN returns the top-n entries of the pool by duration, descending.
// The sort is stable so ties keep their original encounter order. Entries are
// not deduplicated per test: a test with several passing attempts can appear
// more than once.
func slowestN(pool []types.SlowTest, n int) []types.SlowTest {
	sorted := make([]types.SlowTest, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Duration > sorted[j].Duration
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
