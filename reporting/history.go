package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Run statuses recorded in the last-run history file.
const (
	LastRunStatusPassed = "passed"
	LastRunStatusFailed = "failed"
)

// LastRun is the persisted pass/fail record of a run, keyed by the failing
// test identifiers. It is diffed against the previous run to surface trends.
type LastRun struct {
	Status      string   `json:"status"`
	FailedTests []string `json:"failedTests"`
}

// NewLastRun builds a history record from the current run's failing test ids.
func NewLastRun(failedTestIDs []string) LastRun {
	status := LastRunStatusPassed
	if len(failedTestIDs) > 0 {
		status = LastRunStatusFailed
	}
	if failedTestIDs == nil {
		failedTestIDs = make([]string, 0)
	}
	return LastRun{
		Status:      status,
		FailedTests: failedTestIDs,
	}
}

// LoadLastRun reads the previous run's history record from the output
// directory. A missing file is not an error; it simply means there is no
// history to compare against.
func LoadLastRun(outputDir string) (*LastRun, error) {
	path := filepath.Join(outputDir, LastRunFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read last-run file %s: %w", path, err)
	}
	var lastRun LastRun
	if err := json.Unmarshal(data, &lastRun); err != nil {
		return nil, fmt.Errorf("failed to parse last-run file %s: %w", path, err)
	}
	return &lastRun, nil
}

// HistoryDelta is the trend comparison between the previous run and the
// current one.
type HistoryDelta struct {
	NewFailures []string // failing now, passing (or absent) before
	FixedTests  []string // failing before, not failing now
}

// CompareRuns diffs the current failing-test-id set against the previous
// run's record. A nil previous run yields every current failure as new.
func CompareRuns(previous *LastRun, currentFailedIDs []string) HistoryDelta {
	delta := HistoryDelta{
		NewFailures: make([]string, 0),
		FixedTests:  make([]string, 0),
	}

	previousFailed := make(map[string]bool)
	if previous != nil {
		for _, id := range previous.FailedTests {
			previousFailed[id] = true
		}
	}

	currentFailed := make(map[string]bool, len(currentFailedIDs))
	for _, id := range currentFailedIDs {
		currentFailed[id] = true
		if !previousFailed[id] {
			delta.NewFailures = append(delta.NewFailures, id)
		}
	}
	for _, id := range previous.failedOrEmpty() {
		if !currentFailed[id] {
			delta.FixedTests = append(delta.FixedTests, id)
		}
	}
	return delta
}

func (lr *LastRun) failedOrEmpty() []string {
	if lr == nil {
		return nil
	}
	return lr.FailedTests
}
