package types

import "time"

// BuildInfo is opaque CI metadata attached to a run's summary. It is supplied
// by an external collaborator and carried through without interpretation.
type BuildInfo struct {
	System    string `json:"system,omitempty"` // e.g. "github-actions", "jenkins"
	Branch    string `json:"branch,omitempty"`
	Commit    string `json:"commit,omitempty"`
	BuildURL  string `json:"buildUrl,omitempty"`
	BuildID   string `json:"buildId,omitempty"`
	Triggerer string `json:"triggerer,omitempty"`
}

// SlowTest pairs a test title with the duration of one of its passed attempts.
type SlowTest struct {
	Title    string        `json:"title"`
	Duration time.Duration `json:"duration"`
}

// RunSummary holds the run-level statistics folded from all test records.
type RunSummary struct {
	TestCount    int           `json:"testCount"`
	PassedCount  int           `json:"passedCount"`
	FailedCount  int           `json:"failedCount"`
	SkippedCount int           `json:"skippedCount"`
	TotalTime    time.Duration `json:"totalTime"`
	AverageTime  time.Duration `json:"averageTime"`
	SlowestTest  time.Duration `json:"slowestTest"`
	SlowestTests []SlowTest    `json:"slowestTests"`
	Failures     []Failure     `json:"failures"`
	BuildInfo    *BuildInfo    `json:"buildInfo,omitempty"`
}
