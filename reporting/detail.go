package reporting

import (
	"github.com/e2e-infra/run-reporter/types"
)

// AttemptDetail is the serialized form of one attempt in the summary artifact.
// Durations are written as seconds so downstream tooling never has to guess
// the unit.
type AttemptDetail struct {
	Status          types.AttemptStatus  `json:"status"`
	DurationSeconds float64              `json:"durationSeconds"`
	Retry           int                  `json:"retry"`
	Errors          []types.AttemptError `json:"errors,omitempty"`
}

// TestDetail is the per-test record embedded in the summary artifact.
type TestDetail struct {
	TestID     string           `json:"testId"`
	Title      string           `json:"title"`
	SuiteTitle string           `json:"suiteTitle,omitempty"`
	FilePath   string           `json:"filePath,omitempty"`
	Team       string           `json:"team"`
	Outcome    types.Outcome    `json:"outcome"`
	Status     types.TestStatus `json:"status"`
	Display    StatusDisplay    `json:"statusDisplay"`
	Attempts   []AttemptDetail  `json:"attempts"`
}

// BuildDetails projects the record store into serializable per-test detail
// records, preserving first-seen order.
func BuildDetails(records []*types.TestRecord) []TestDetail {
	details := make([]TestDetail, 0, len(records))
	for _, record := range records {
		detail := TestDetail{
			TestID:     record.Metadata.TestID(),
			Title:      record.Metadata.Title,
			SuiteTitle: record.Metadata.SuiteTitle,
			FilePath:   record.Metadata.FilePath,
			Team:       record.Metadata.Team,
			Outcome:    record.Metadata.Outcome,
			Status:     record.Metadata.Status,
			Display:    getStatusDisplay(record.Metadata.Status),
			Attempts:   make([]AttemptDetail, 0, len(record.Attempts)),
		}
		for _, attempt := range record.Attempts {
			detail.Attempts = append(detail.Attempts, AttemptDetail{
				Status:          attempt.Status,
				DurationSeconds: attempt.Duration.Seconds(),
				Retry:           attempt.Retry,
				Errors:          attempt.Errors,
			})
		}
		details = append(details, detail)
	}
	return details
}
