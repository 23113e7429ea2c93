// Package reporting renders and persists run artifacts: the console results
// table, the JSON summary and failure files, and the last-run history record.
package reporting

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/e2e-infra/run-reporter/types"
)

// StatusDisplay represents display information for a test status
type StatusDisplay struct {
	Text  string `json:"text"`  // Human-readable status text
	Class string `json:"class"` // Style identifier
}

// getStatusDisplay returns human-readable status text and a style class
func getStatusDisplay(status types.TestStatus) StatusDisplay {
	switch status {
	case types.TestStatusPass:
		return StatusDisplay{Text: "PASS", Class: "pass"}
	case types.TestStatusFail:
		return StatusDisplay{Text: "FAIL", Class: "fail"}
	case types.TestStatusSkip:
		return StatusDisplay{Text: "SKIP", Class: "skip"}
	case types.TestStatusError:
		return StatusDisplay{Text: "ERROR", Class: "error"}
	default:
		return StatusDisplay{Text: "UNKNOWN", Class: "unknown"}
	}
}

// getResultString returns a compact marker for the final test status.
func getResultString(status types.TestStatus) string {
	switch status {
	case types.TestStatusPass:
		return "✓ pass"
	case types.TestStatusSkip:
		return "- skip"
	default:
		return "✗ fail"
	}
}

// FormatDuration formats a duration for display
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Truncate(time.Millisecond).String()
}

// truncateMessage trims a failure message to a single displayable line of at
// most maxLen runes. Truncation happens on rune boundaries so multi-byte
// characters never get split.
func truncateMessage(message string, maxLen int) string {
	for i, r := range message {
		if r == '\n' {
			message = message[:i]
			break
		}
	}
	if utf8.RuneCountInString(message) > maxLen {
		runes := []rune(message)
		return string(runes[:maxLen-1]) + "…"
	}
	return message
}
