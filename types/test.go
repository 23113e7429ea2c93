// Package types contains shared types used across the run-reporter aggregation pipeline
package types

import (
	"strings"
)

// TestStatus represents the coarse final disposition of a test
type TestStatus string

const (
	TestStatusPass  TestStatus = "pass"
	TestStatusFail  TestStatus = "fail"
	TestStatusSkip  TestStatus = "skip"
	TestStatusError TestStatus = "error"
)

// Outcome is the executor-level classification of a test's overall result
// across all of its attempts.
type Outcome string

const (
	OutcomeSkipped    Outcome = "skipped"
	OutcomeExpected   Outcome = "expected"
	OutcomeUnexpected Outcome = "unexpected"
	OutcomeFlaky      Outcome = "flaky"
)

// CoarseStatus maps an executor outcome to the coarse test status.
// Unrecognized outcomes map to TestStatusError.
func (o Outcome) CoarseStatus() TestStatus {
	switch o {
	case OutcomeExpected, OutcomeFlaky:
		return TestStatusPass
	case OutcomeUnexpected:
		return TestStatusFail
	case OutcomeSkipped:
		return TestStatusSkip
	default:
		return TestStatusError
	}
}

// Annotation is an executor-supplied key/value annotation attached to a test.
type Annotation struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// SourceLocation identifies where a test is declared.
type SourceLocation struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// TestMetadata is the static identity and classification of a test, captured
// once when the test is first seen and never mutated afterwards.
type TestMetadata struct {
	Title       string         `json:"title"`
	SuiteTitle  string         `json:"suiteTitle,omitempty"`
	FilePath    string         `json:"filePath,omitempty"`
	Location    SourceLocation `json:"location,omitempty"`
	Outcome     Outcome        `json:"outcome"`
	Status      TestStatus     `json:"status"`
	Team        string         `json:"team"`
	Annotations []Annotation   `json:"annotations,omitempty"`
}

// TestID returns the stable aggregation key for the test. Tests are keyed by
// suite title plus title so that identically named tests in different suites
// do not collide; the bare title remains the display name.
func (m *TestMetadata) TestID() string {
	if m.SuiteTitle == "" {
		return m.Title
	}
	return m.SuiteTitle + "::" + m.Title
}

// TestRecord owns one test's metadata and its ordered attempt history.
// Attempts are append-only and arrive in retry order.
type TestRecord struct {
	Metadata TestMetadata    `json:"metadata"`
	Attempts []AttemptRecord `json:"attempts"`
}

// LastAttempt returns the most recent attempt. Records are created on first
// attempt ingestion, so a record visible to consumers always has at least one.
func (r *TestRecord) LastAttempt() *AttemptRecord {
	if len(r.Attempts) == 0 {
		return nil
	}
	return &r.Attempts[len(r.Attempts)-1]
}

// GetTestDisplayName returns a formatted display name for a test
func GetTestDisplayName(metadata TestMetadata) string {
	if metadata.SuiteTitle == "" {
		return metadata.Title
	}
	return metadata.SuiteTitle + " > " + metadata.Title
}

// ShortFilePath trims a repository-absolute file path down to its last two
// segments for display.
func ShortFilePath(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) <= 2 {
		return path
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
