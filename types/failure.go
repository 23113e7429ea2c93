package types

// FailureCategory is a stable tag summarizing the likely cause of a failure,
// derived from error-message pattern matching. The taxonomy is advisory and
// used for grouping; unmatched messages fall back to CategoryUnknown.
type FailureCategory string

const (
	CategoryElementNotFound    FailureCategory = "ElementNotFound"
	CategoryTimeout            FailureCategory = "Timeout/DelayedElement"
	CategorySelectorChanged    FailureCategory = "SelectorChanged"
	CategoryAssertionFailure   FailureCategory = "AssertionFailure"
	CategoryNetworkError       FailureCategory = "NetworkError"
	CategoryJavaScriptError    FailureCategory = "JavaScriptError"
	CategoryNavigationError    FailureCategory = "NavigationError"
	CategoryElementInteraction FailureCategory = "ElementInteractionError"
	CategoryPermissionError    FailureCategory = "PermissionError"
	CategoryUnknown            FailureCategory = "Unknown"
)

// Failure is a derived projection of a failed or errored test, built at run
// end from its record. It is never stored back into the record.
type Failure struct {
	TestID     string          `json:"testId"`
	Title      string          `json:"title"`
	SuiteTitle string          `json:"suiteTitle,omitempty"`
	FilePath   string          `json:"filePath,omitempty"`
	Team       string          `json:"team"`
	Message    string          `json:"message"`
	Stack      string          `json:"stack,omitempty"`
	Category   FailureCategory `json:"category"`
	IsTimeout  bool            `json:"isTimeout"`
}
