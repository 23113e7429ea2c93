package types

import "time"

// AttemptStatus represents the terminal state of a single test attempt
type AttemptStatus string

const (
	AttemptStatusPassed      AttemptStatus = "passed"
	AttemptStatusFailed      AttemptStatus = "failed"
	AttemptStatusTimedOut    AttemptStatus = "timedOut"
	AttemptStatusSkipped     AttemptStatus = "skipped"
	AttemptStatusInterrupted AttemptStatus = "interrupted"
)

// AttemptError is one error reported by the executor for an attempt.
// Stack is optional; some executors only deliver a message.
type AttemptError struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// AttemptRecord captures the outcome of a single execution attempt of a test.
// Attempts are immutable once appended to a TestRecord.
type AttemptRecord struct {
	Status   AttemptStatus  `json:"status"`
	Duration time.Duration  `json:"duration"`
	Errors   []AttemptError `json:"errors,omitempty"`
	Retry    int            `json:"retry"` // 0 for the first attempt
}

// FirstError returns the first error of the attempt, or nil if there are none.
func (a *AttemptRecord) FirstError() *AttemptError {
	if len(a.Errors) == 0 {
		return nil
	}
	return &a.Errors[0]
}
