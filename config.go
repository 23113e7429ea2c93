// Package reporter aggregates per-test attempt events delivered by an
// external test executor into a run-level summary, persisted JSON artifacts
// and a single pass/fail exit signal.
package reporter

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/e2e-infra/run-reporter/collector"
	"github.com/e2e-infra/run-reporter/flags"
)

// Config holds the application configuration
type Config struct {
	EventsFile              string        // Path to the JSONL event stream, "-" for stdin
	OutputDir               string        // Base directory for run artifacts
	ProjectOutputDirs       []string      // Project-level overrides, first non-empty wins
	MaxSlowTests            int           // Number of slowest passed attempts to report
	SlowTestThreshold       time.Duration // Informational slow-test marker threshold
	TimeoutWarningThreshold time.Duration // Informational timeout-budget warning threshold
	ShowStackTrace          bool          // Include stack traces in console output
	GenerateFix             bool          // Request fix suggestions after the run
	SuggestEndpoint         string        // Fix-suggestion service endpoint
	Teams                   []string      // Known team names for ownership resolution
	FallbackTeam            string        // Fallback team; only honored if it names a known team
	TeamConfig              string        // Optional YAML roster file
	ServeMetrics            bool          // Expose healthz/metrics servers during the run
	Log                     log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, logger log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	outputDir := ctx.String(flags.OutputDir.Name)
	if outputDir == "" {
		outputDir = "./test-results"
	}
	absOutputDir, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for output directory '%s': %w", outputDir, err)
	}

	generateFix := ctx.Bool(flags.GenerateFix.Name)
	suggestEndpoint := ctx.String(flags.SuggestEndpoint.Name)
	if generateFix && suggestEndpoint == "" {
		return nil, errors.New("a suggest endpoint is required when fix generation is enabled")
	}

	return &Config{
		EventsFile:              ctx.String(flags.EventsFile.Name),
		OutputDir:               absOutputDir,
		ProjectOutputDirs:       ctx.StringSlice(flags.ProjectOutputDirs.Name),
		MaxSlowTests:            ctx.Int(flags.MaxSlowTests.Name),
		SlowTestThreshold:       ctx.Duration(flags.SlowTestThreshold.Name),
		TimeoutWarningThreshold: ctx.Duration(flags.TimeoutWarningThreshold.Name),
		ShowStackTrace:          ctx.Bool(flags.ShowStackTrace.Name),
		GenerateFix:             generateFix,
		SuggestEndpoint:         suggestEndpoint,
		Teams:                   ctx.StringSlice(flags.Teams.Name),
		FallbackTeam:            ctx.String(flags.FallbackTeam.Name),
		TeamConfig:              ctx.String(flags.TeamConfig.Name),
		ServeMetrics:            ctx.Bool(flags.ServeMetrics.Name),
		Log:                     logger,
	}, nil
}

// TeamRoster builds the ownership roster from the configured team names,
// loading the YAML roster file when one is declared.
func (c *Config) TeamRoster() (*collector.TeamRoster, error) {
	if c.TeamConfig != "" {
		return collector.LoadTeamRoster(c.TeamConfig, c.FallbackTeam)
	}
	return collector.NewTeamRoster(c.Teams, c.FallbackTeam), nil
}

// EffectiveOutputDir resolves the run's output location. Project-level
// overrides are scanned in declaration order and the first non-empty one
// wins; otherwise the configured base directory is used.
func (c *Config) EffectiveOutputDir() string {
	for _, override := range c.ProjectOutputDirs {
		if override != "" {
			return override
		}
	}
	return c.OutputDir
}
