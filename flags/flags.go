package flags

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "RUN_REPORTER"

// prefixEnvVar adds the application prefix to an environment variable name.
func prefixEnvVar(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	EventsFile = &cli.StringFlag{
		Name:    "events",
		Value:   "-",
		EnvVars: prefixEnvVar("EVENTS"),
		Usage:   "Path to the JSONL attempt-event stream produced by the test executor ('-' for stdin)",
	}
	OutputDir = &cli.StringFlag{
		Name:    "output-dir",
		Value:   "./test-results",
		EnvVars: prefixEnvVar("OUTPUT_DIR"),
		Usage:   "Directory to write run artifacts (testSummary.json, testFailures.json, .last-run.json)",
	}
	ProjectOutputDirs = &cli.StringSliceFlag{
		Name:    "project-output-dir",
		EnvVars: prefixEnvVar("PROJECT_OUTPUT_DIR"),
		Usage:   "Project-level output directory overrides, scanned in declaration order; the first non-empty value wins",
	}
	MaxSlowTests = &cli.IntFlag{
		Name:    "max-slow-tests",
		Value:   3,
		EnvVars: prefixEnvVar("MAX_SLOW_TESTS"),
		Usage:   "Number of slowest passed attempts to report",
	}
	SlowTestThreshold = &cli.DurationFlag{
		Name:    "slow-test-threshold",
		Value:   5 * time.Second,
		EnvVars: prefixEnvVar("SLOW_TEST_THRESHOLD"),
		Usage:   "Duration above which a test is flagged as slow in the console report",
	}
	TimeoutWarningThreshold = &cli.DurationFlag{
		Name:    "timeout-warning-threshold",
		Value:   30 * time.Second,
		EnvVars: prefixEnvVar("TIMEOUT_WARNING_THRESHOLD"),
		Usage:   "Duration above which a test is flagged as close to its timeout budget",
	}
	ShowStackTrace = &cli.BoolFlag{
		Name:    "show-stack-trace",
		Value:   true,
		EnvVars: prefixEnvVar("SHOW_STACK_TRACE"),
		Usage:   "Include stack traces in the console failure report",
	}
	GenerateFix = &cli.BoolFlag{
		Name:    "generate-fix",
		Value:   false,
		EnvVars: prefixEnvVar("GENERATE_FIX"),
		Usage:   "Request best-effort fix suggestions for failures after the run completes",
	}
	SuggestEndpoint = &cli.StringFlag{
		Name:    "suggest-endpoint",
		Value:   "",
		EnvVars: prefixEnvVar("SUGGEST_ENDPOINT"),
		Usage:   "HTTP endpoint of the fix-suggestion service (required with --generate-fix)",
	}
	TeamConfig = &cli.StringFlag{
		Name:    "team-config",
		Value:   "",
		EnvVars: prefixEnvVar("TEAM_CONFIG"),
		Usage:   "Path to a YAML file declaring the known team names (eg. 'teams.yaml')",
	}
	Teams = &cli.StringSliceFlag{
		Name:    "team",
		EnvVars: prefixEnvVar("TEAMS"),
		Usage:   "Known team name for ownership resolution; repeatable",
	}
	FallbackTeam = &cli.StringFlag{
		Name:    "fallback-team",
		Value:   "",
		EnvVars: prefixEnvVar("FALLBACK_TEAM"),
		Usage:   "Team assigned when no title tag or annotation resolves; must name a known team",
	}
	ServeMetrics = &cli.BoolFlag{
		Name:    "serve-metrics",
		Value:   false,
		EnvVars: prefixEnvVar("SERVE_METRICS"),
		Usage:   "Expose healthz and Prometheus metrics servers for the duration of the run",
	}
)

var requiredFlags = []cli.Flag{}

var optionalFlags = []cli.Flag{
	EventsFile,
	OutputDir,
	ProjectOutputDirs,
	MaxSlowTests,
	SlowTestThreshold,
	TimeoutWarningThreshold,
	ShowStackTrace,
	GenerateFix,
	SuggestEndpoint,
	TeamConfig,
	Teams,
	FallbackTeam,
	ServeMetrics,
}

var Flags []cli.Flag

func init() {
	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
