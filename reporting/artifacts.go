package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/log"

	"github.com/e2e-infra/run-reporter/types"
)

// Artifact file names written under the output directory.
const (
	SummaryFileName  = "testSummary.json"
	FailuresFileName = "testFailures.json"
	LastRunFileName  = ".last-run.json"
	FixesFileName    = "testFixes.json"
)

// summaryPayload is the serialized shape of testSummary.json: the run summary
// plus the full per-test detail list.
type summaryPayload struct {
	TestCount          int               `json:"testCount"`
	PassedCount        int               `json:"passedCount"`
	FailedCount        int               `json:"failedCount"`
	SkippedCount       int               `json:"skippedCount"`
	TotalTimeDisplay   string            `json:"totalTimeDisplay"`
	AverageTimeSeconds float64           `json:"averageTimeSeconds"`
	SlowestTestSeconds float64           `json:"slowestTestSeconds"`
	SlowestTests       []slowTestPayload `json:"slowestTests"`
	Failures           []types.Failure   `json:"failures"`
	BuildInfo          *types.BuildInfo  `json:"buildInfo,omitempty"`
	Tests              []TestDetail      `json:"tests"`
}

type slowTestPayload struct {
	Title           string  `json:"title"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// ArtifactWriter persists run artifacts as UTF-8 JSON under a single output
// directory. Write failures are reported to the caller but must never alter
// the run's pass/fail signal; callers log and continue.
type ArtifactWriter struct {
	log       log.Logger
	outputDir string
}

// NewArtifactWriter creates a writer rooted at outputDir. The directory is
// created on first write.
func NewArtifactWriter(logger log.Logger, outputDir string) *ArtifactWriter {
	return &ArtifactWriter{
		log:       logger,
		outputDir: outputDir,
	}
}

// OutputDir returns the directory artifacts are written to.
func (w *ArtifactWriter) OutputDir() string {
	return w.outputDir
}

// WriteSummary writes testSummary.json from the run summary and the per-test
// detail records.
func (w *ArtifactWriter) WriteSummary(summary types.RunSummary, details []TestDetail) error {
	payload := summaryPayload{
		TestCount:          summary.TestCount,
		PassedCount:        summary.PassedCount,
		FailedCount:        summary.FailedCount,
		SkippedCount:       summary.SkippedCount,
		TotalTimeDisplay:   FormatDuration(summary.TotalTime),
		AverageTimeSeconds: summary.AverageTime.Seconds(),
		SlowestTestSeconds: summary.SlowestTest.Seconds(),
		SlowestTests:       make([]slowTestPayload, 0, len(summary.SlowestTests)),
		Failures:           summary.Failures,
		BuildInfo:          summary.BuildInfo,
		Tests:              details,
	}
	for _, slow := range summary.SlowestTests {
		payload.SlowestTests = append(payload.SlowestTests, slowTestPayload{
			Title:           slow.Title,
			DurationSeconds: slow.Duration.Seconds(),
		})
	}
	return w.writeJSON(SummaryFileName, payload)
}

// WriteFailures writes testFailures.json.
func (w *ArtifactWriter) WriteFailures(failures []types.Failure) error {
	if failures == nil {
		failures = make([]types.Failure, 0)
	}
	return w.writeJSON(FailuresFileName, failures)
}

// WriteLastRun writes the .last-run.json history record consumed by the
// trend-comparison collaborator of the next run.
func (w *ArtifactWriter) WriteLastRun(lastRun LastRun) error {
	return w.writeJSON(LastRunFileName, lastRun)
}

func (w *ArtifactWriter) writeJSON(name string, payload any) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", w.outputDir, err)
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	path := filepath.Join(w.outputDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	w.log.Debug("Wrote artifact", "path", path, "bytes", len(data))
	return nil
}
