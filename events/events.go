// Package events decodes the JSONL attempt-event stream produced by the host
// test executor and replays it through the run controller. One line is one
// event; events arrive strictly serialized, in the order the executor
// delivered its callbacks.
package events

import (
	"time"

	"github.com/e2e-infra/run-reporter/types"
)

// EventKind discriminates the lifecycle events of a run.
type EventKind string

const (
	KindRunBegin    EventKind = "runBegin"
	KindAttempt     EventKind = "attempt"
	KindRunnerError EventKind = "runnerError"
	KindRunEnd      EventKind = "runEnd"
)

// ErrorPayload is one error attached to an attempt event.
type ErrorPayload struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// AttemptPayload describes one completed attempt of a test.
type AttemptPayload struct {
	Title           string             `json:"title"`
	SuiteTitle      string             `json:"suiteTitle,omitempty"`
	FilePath        string             `json:"filePath,omitempty"`
	Line            int                `json:"line,omitempty"`
	Column          int                `json:"column,omitempty"`
	Outcome         string             `json:"outcome"`
	Annotations     []types.Annotation `json:"annotations,omitempty"`
	Status          string             `json:"status"`
	DurationSeconds float64            `json:"durationSeconds"`
	Retry           int                `json:"retry"`
	Errors          []ErrorPayload     `json:"errors,omitempty"`
}

// Event is one line of the JSONL stream.
type Event struct {
	Kind       EventKind        `json:"kind"`
	TotalTests int              `json:"totalTests,omitempty"`
	Build      *types.BuildInfo `json:"build,omitempty"`
	Attempt    *AttemptPayload  `json:"attempt,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// Metadata converts the attempt payload into the test identity consumed by
// the record store.
func (p *AttemptPayload) Metadata() types.TestMetadata {
	return types.TestMetadata{
		Title:      p.Title,
		SuiteTitle: p.SuiteTitle,
		FilePath:   p.FilePath,
		Location: types.SourceLocation{
			File:   p.FilePath,
			Line:   p.Line,
			Column: p.Column,
		},
		Outcome:     types.Outcome(p.Outcome),
		Annotations: p.Annotations,
	}
}

// Record converts the attempt payload into an attempt record. Durations are
// delivered as seconds and clamped at zero.
func (p *AttemptPayload) Record() types.AttemptRecord {
	seconds := p.DurationSeconds
	if seconds < 0 {
		seconds = 0
	}
	record := types.AttemptRecord{
		Status:   types.AttemptStatus(p.Status),
		Duration: time.Duration(seconds * float64(time.Second)),
		Retry:    p.Retry,
	}
	for _, payload := range p.Errors {
		record.Errors = append(record.Errors, types.AttemptError{
			Message: payload.Message,
			Stack:   payload.Stack,
		})
	}
	return record
}
