// Package triage derives final test dispositions and failure projections
// from accumulated attempt history.
package triage

import (
	"strings"

	"github.com/acarl005/stripansi"

	"github.com/e2e-infra/run-reporter/types"
)

// classificationRule maps a set of message substrings to a failure category.
type classificationRule struct {
	substrings []string
	category   types.FailureCategory
}

// classificationRules is evaluated in order; the first matching rule wins.
// Matching is case-sensitive substring containment, so a message matching
// both the timeout and selector rules classifies as timeout.
var classificationRules = []classificationRule{
	{[]string{"No node found", "not visible"}, types.CategoryElementNotFound},
	{[]string{"Timeout", "timed out"}, types.CategoryTimeout},
	{[]string{"selector", "locator"}, types.CategorySelectorChanged},
	{[]string{"expect(", "assertion failed"}, types.CategoryAssertionFailure},
	{[]string{"Network", "fetch failed", "status="}, types.CategoryNetworkError},
	{[]string{"javascript error", "undefined is not", "null"}, types.CategoryJavaScriptError},
	{[]string{"navigation", "page.goto"}, types.CategoryNavigationError},
	{[]string{"element is not clickable", "intercepted"}, types.CategoryElementInteraction},
	{[]string{"permission", "access denied"}, types.CategoryPermissionError},
}

// timeoutIndicators are the substrings that mark a failure as a timeout,
// independent of the attempt's terminal status.
var timeoutIndicators = []string{"Timeout", "timed out"}

// Classify maps a raw error message to a stable failure category. Messages
// are stripped of ANSI escapes first so colored executor output classifies
// the same as plain output.
func Classify(message string) types.FailureCategory {
	message = stripansi.Strip(message)
	for _, rule := range classificationRules {
		for _, substr := range rule.substrings {
			if strings.Contains(message, substr) {
				return rule.category
			}
		}
	}
	return types.CategoryUnknown
}

// containsTimeoutIndicator reports whether the message text indicates a
// timeout. The flag is derived from message text, not from attempt status.
func containsTimeoutIndicator(message string) bool {
	message = stripansi.Strip(message)
	for _, indicator := range timeoutIndicators {
		if strings.Contains(message, indicator) {
			return true
		}
	}
	return false
}
