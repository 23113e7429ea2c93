package events

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/log"

	reporter "github.com/e2e-infra/run-reporter"
)

// maxLineSize bounds a single event line; stack traces can get large.
const maxLineSize = 4 * 1024 * 1024

// Replay feeds a JSONL event stream through the reporter and returns the
// run's terminal result. Malformed lines are logged and skipped rather than
// aborting the run; a stream without a runEnd event is closed out with an
// implicit End so a crashed executor still produces a verdict.
func Replay(ctx context.Context, logger log.Logger, r io.Reader, rep *reporter.Reporter) (*reporter.RunResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	began := false
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			logger.Warn("Skipping malformed event line", "line", lineNo, "error", err)
			continue
		}

		switch event.Kind {
		case KindRunBegin:
			if err := rep.Begin(ctx, event.TotalTests, event.Build); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			began = true

		case KindAttempt:
			if event.Attempt == nil {
				logger.Warn("Attempt event without payload", "line", lineNo)
				continue
			}
			if err := rep.RecordAttempt(event.Attempt.Metadata(), event.Attempt.Record()); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}

		case KindRunnerError:
			if err := rep.RecordError(errors.New(event.Error)); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}

		case KindRunEnd:
			return rep.End()

		default:
			logger.Warn("Skipping unknown event kind", "line", lineNo, "kind", event.Kind)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event stream: %w", err)
	}
	if !began {
		return nil, errors.New("event stream contained no runBegin event")
	}

	logger.Warn("Event stream ended without runEnd; finalizing run")
	return rep.End()
}
