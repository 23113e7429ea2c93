package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/e2e-infra/run-reporter/types"
)

// ConsoleReporter renders the end-of-run results table and failure details
// for CI console output. Rendering is pure presentation: it holds no state
// and never mutates its inputs.
type ConsoleReporter struct {
	showStackTrace    bool
	slowTestThreshold time.Duration
}

// NewConsoleReporter creates a console reporter. Tests whose displayed
// duration exceeds slowTestThreshold are marked in the table.
func NewConsoleReporter(showStackTrace bool, slowTestThreshold time.Duration) *ConsoleReporter {
	return &ConsoleReporter{
		showStackTrace:    showStackTrace,
		slowTestThreshold: slowTestThreshold,
	}
}

// Render produces the full console report: results table, failure details,
// slowest tests and the history comparison when one is available.
func (c *ConsoleReporter) Render(summary types.RunSummary, records []*types.TestRecord, delta *HistoryDelta) string {
	var sb strings.Builder

	sb.WriteString(c.renderTable(summary, records))
	sb.WriteString("\n")

	if len(summary.Failures) > 0 {
		sb.WriteString(c.renderFailures(summary.Failures))
	}
	if len(summary.SlowestTests) > 0 {
		sb.WriteString(c.renderSlowest(summary))
	}
	if delta != nil {
		sb.WriteString(c.renderDelta(*delta))
	}
	return sb.String()
}

func (c *ConsoleReporter) renderTable(summary types.RunSummary, records []*types.TestRecord) string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Test Run Results (%s)", FormatDuration(summary.TotalTime)))

	t.AppendHeader(table.Row{
		"Test", "Team", "Attempts", "Duration", "Status", "Error",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Test", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Attempts", Align: text.AlignRight},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Error", WidthMax: 70, WidthMaxEnforcer: text.WrapSoft},
	})

	failureByID := make(map[string]types.Failure, len(summary.Failures))
	for _, failure := range summary.Failures {
		failureByID[failure.TestID] = failure
	}

	for _, record := range records {
		var testDuration time.Duration
		for _, attempt := range record.Attempts {
			testDuration += attempt.Duration
		}

		displayName := types.GetTestDisplayName(record.Metadata)
		if testDuration > c.slowTestThreshold {
			displayName += " (slow)"
		}

		errorMsg := ""
		if failure, ok := failureByID[record.Metadata.TestID()]; ok {
			errorMsg = truncateMessage(failure.Message, 70)
		}

		t.AppendRow(table.Row{
			displayName,
			record.Metadata.Team,
			len(record.Attempts),
			FormatDuration(testDuration),
			getResultString(record.Metadata.Status),
			errorMsg,
		})
	}

	overall := types.TestStatusPass
	if summary.FailedCount > 0 {
		overall = types.TestStatusFail
	} else if summary.PassedCount == 0 && summary.SkippedCount > 0 {
		overall = types.TestStatusSkip
	}
	switch overall {
	case types.TestStatusPass:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	case types.TestStatusSkip:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.AppendFooter(table.Row{
		fmt.Sprintf("TOTAL %d", summary.TestCount),
		"",
		"",
		FormatDuration(summary.TotalTime),
		fmt.Sprintf("%d passed / %d failed / %d skipped",
			summary.PassedCount, summary.FailedCount, summary.SkippedCount),
		"",
	})

	return t.Render() + "\n"
}

func (c *ConsoleReporter) renderFailures(failures []types.Failure) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\nFailures (%d):\n", len(failures)))
	for _, failure := range failures {
		marker := ""
		if failure.IsTimeout {
			marker = " [timeout]"
		}
		sb.WriteString(fmt.Sprintf("  ✗ %s  [%s]%s  owner=%s\n",
			failure.TestID, failure.Category, marker, failure.Team))
		if failure.FilePath != "" {
			sb.WriteString("      " + types.ShortFilePath(failure.FilePath) + "\n")
		}
		if failure.Message != "" {
			sb.WriteString("      " + truncateMessage(failure.Message, 200) + "\n")
		}
		if c.showStackTrace && failure.Stack != "" {
			for _, line := range strings.Split(failure.Stack, "\n") {
				sb.WriteString("      " + line + "\n")
			}
		}
	}
	return sb.String()
}

func (c *ConsoleReporter) renderSlowest(summary types.RunSummary) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\nSlowest passed attempts (avg %s):\n", FormatDuration(summary.AverageTime)))
	for _, slow := range summary.SlowestTests {
		sb.WriteString(fmt.Sprintf("  %s  %s\n", FormatDuration(slow.Duration), slow.Title))
	}
	return sb.String()
}

func (c *ConsoleReporter) renderDelta(delta HistoryDelta) string {
	var sb strings.Builder
	if len(delta.NewFailures) > 0 {
		sb.WriteString(fmt.Sprintf("\nNew failures since last run (%d):\n", len(delta.NewFailures)))
		for _, id := range delta.NewFailures {
			sb.WriteString("  + " + id + "\n")
		}
	}
	if len(delta.FixedTests) > 0 {
		sb.WriteString(fmt.Sprintf("\nFixed since last run (%d):\n", len(delta.FixedTests)))
		for _, id := range delta.FixedTests {
			sb.WriteString("  - " + id + "\n")
		}
	}
	return sb.String()
}
