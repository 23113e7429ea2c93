package triage

import (
	"fmt"
	"strings"

	"github.com/e2e-infra/run-reporter/types"
)

// InterruptedMessage is the synthesized failure message for a test whose last
// attempt was interrupted before reaching a regular terminal state.
const InterruptedMessage = "Test was interrupted"

// Resolve derives a test's final disposition from its executor-classified
// outcome, captured at record creation. It does not recompute the outcome
// from the attempt history. A Failure is returned only for failed and
// errored dispositions.
func Resolve(record *types.TestRecord) (types.TestStatus, *types.Failure) {
	switch record.Metadata.Outcome {
	case types.OutcomeExpected, types.OutcomeFlaky:
		// A test that failed and then passed on retry counts as passed.
		return types.TestStatusPass, nil
	case types.OutcomeSkipped:
		return types.TestStatusSkip, nil
	case types.OutcomeUnexpected:
		failure := failureFromLastAttempt(record)
		return types.TestStatusFail, &failure
	default:
		failure := synthesizedFailure(record)
		return types.TestStatusError, &failure
	}
}

// failureFromLastAttempt builds a Failure from the final attempt of an
// unexpectedly failed test. The primary message comes from the first error
// only, while the stack is the newline-join of every error's stack in that
// attempt. The asymmetry is deliberate and matches the streaming projection
// consumers already depend on.
func failureFromLastAttempt(record *types.TestRecord) types.Failure {
	failure := baseFailure(record.Metadata)

	last := record.LastAttempt()
	if last == nil {
		return failure
	}

	if first := last.FirstError(); first != nil {
		failure.Message = first.Message
	}
	failure.Category = Classify(failure.Message)

	stacks := make([]string, 0, len(last.Errors))
	for _, attemptErr := range last.Errors {
		if attemptErr.Stack != "" {
			stacks = append(stacks, attemptErr.Stack)
		}
	}
	failure.Stack = strings.Join(stacks, "\n")

	for _, attemptErr := range last.Errors {
		if containsTimeoutIndicator(attemptErr.Message) {
			failure.IsTimeout = true
			break
		}
	}
	return failure
}

// synthesizedFailure covers interrupted and unrecognized outcomes, which have
// no usable error payload of their own.
func synthesizedFailure(record *types.TestRecord) types.Failure {
	failure := baseFailure(record.Metadata)

	if last := record.LastAttempt(); last != nil && last.Status == types.AttemptStatusInterrupted {
		failure.Message = InterruptedMessage
	} else {
		failure.Message = fmt.Sprintf("Unknown outcome: %s", record.Metadata.Outcome)
	}
	failure.Category = Classify(failure.Message)
	return failure
}

// ProvisionalFailure builds a streaming failure projection from a single
// attempt, before the test's final outcome is known. Unlike the run-end
// projection it takes both message and stack from the first error only.
func ProvisionalFailure(meta types.TestMetadata, attempt types.AttemptRecord) types.Failure {
	failure := baseFailure(meta)

	if first := attempt.FirstError(); first != nil {
		failure.Message = first.Message
		failure.Stack = first.Stack
	}
	failure.Category = Classify(failure.Message)

	for _, attemptErr := range attempt.Errors {
		if containsTimeoutIndicator(attemptErr.Message) {
			failure.IsTimeout = true
			break
		}
	}
	return failure
}

func baseFailure(meta types.TestMetadata) types.Failure {
	return types.Failure{
		TestID:     meta.TestID(),
		Title:      meta.Title,
		SuiteTitle: meta.SuiteTitle,
		FilePath:   meta.FilePath,
		Team:       meta.Team,
		Category:   types.CategoryUnknown,
	}
}
