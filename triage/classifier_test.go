package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/e2e-infra/run-reporter/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    types.FailureCategory
	}{
		{name: "no node found", message: "No node found for selector '#login'", want: types.CategoryElementNotFound},
		{name: "not visible", message: "element is not visible", want: types.CategoryElementNotFound},
		{name: "timeout literal", message: "Timeout of 5000ms exceeded", want: types.CategoryTimeout},
		{name: "timed out", message: "waiting for response timed out", want: types.CategoryTimeout},
		{name: "selector", message: "invalid selector '.btn'", want: types.CategorySelectorChanged},
		{name: "locator", message: "locator resolved to 2 elements", want: types.CategorySelectorChanged},
		{name: "expect call", message: "expect(received).toBe(expected)", want: types.CategoryAssertionFailure},
		{name: "assertion failed", message: "assertion failed: got 3 want 4", want: types.CategoryAssertionFailure},
		{name: "network", message: "Network request blocked", want: types.CategoryNetworkError},
		{name: "fetch failed", message: "fetch failed: connection refused", want: types.CategoryNetworkError},
		{name: "status code", message: "response status=502", want: types.CategoryNetworkError},
		{name: "javascript error", message: "javascript error in page context", want: types.CategoryJavaScriptError},
		{name: "undefined is not", message: "undefined is not a function", want: types.CategoryJavaScriptError},
		{name: "null deref", message: "cannot read properties of null", want: types.CategoryJavaScriptError},
		{name: "navigation", message: "navigation aborted", want: types.CategoryNavigationError},
		{name: "page goto", message: "page.goto: net::ERR_ABORTED", want: types.CategoryNavigationError},
		{name: "not clickable", message: "element is not clickable at point (10, 20)", want: types.CategoryElementInteraction},
		{name: "intercepted", message: "click intercepted by overlay", want: types.CategoryElementInteraction},
		{name: "permission", message: "permission denied for camera", want: types.CategoryPermissionError},
		{name: "access denied", message: "access denied by policy", want: types.CategoryPermissionError},
		{name: "no match", message: "something entirely novel happened", want: types.CategoryUnknown},
		{name: "empty message", message: "", want: types.CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.message))
		})
	}
}

func TestClassify_RuleOrderIsDeterministic(t *testing.T) {
	// Matches both the timeout rule and the selector rule; the earlier rule wins.
	assert.Equal(t, types.CategoryTimeout, Classify("selector timed out"))

	// Matches both element-not-found and selector; rule 1 precedes rule 3.
	assert.Equal(t, types.CategoryElementNotFound, Classify("No node found for selector"))

	// "Network ... null" matches both network and javascript rules; network wins.
	assert.Equal(t, types.CategoryNetworkError, Classify("Network response body was null"))
}

func TestClassify_IsCaseSensitive(t *testing.T) {
	assert.Equal(t, types.CategoryUnknown, Classify("TIMEOUT EXCEEDED"),
		"matching is case-sensitive substring containment")
	assert.Equal(t, types.CategoryTimeout, Classify("Timeout exceeded"))
}

func TestClassify_StripsANSIEscapes(t *testing.T) {
	colored := "\x1b[31mTimeout of 5000ms exceeded\x1b[0m"
	assert.Equal(t, types.CategoryTimeout, Classify(colored))
}

func TestClassify_IsPure(t *testing.T) {
	message := "locator resolved to nothing"
	first := Classify(message)
	second := Classify(message)
	assert.Equal(t, first, second, "identical message must yield identical category")
}

func TestContainsTimeoutIndicator(t *testing.T) {
	assert.True(t, containsTimeoutIndicator("Timeout of 5000ms exceeded"))
	assert.True(t, containsTimeoutIndicator("the request timed out"))
	assert.False(t, containsTimeoutIndicator("Network status=500"),
		"timeout flag is message-text-derived, not status-derived")
	assert.False(t, containsTimeoutIndicator(""))
}
