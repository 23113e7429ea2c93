// Package exitcodes defines the standard exit codes used by run-reporter.
package exitcodes

// Exit code constants used by run-reporter
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when the run completed without failures, runner errors
//   or interruption
// * TestFailure (1): Used when the run had failures, runner-level errors, an
//   interruption, or recorded zero tests
// * RuntimeErr (2): Used for operational errors such as unreadable event
//   streams or invalid configuration
const (
	Success     = 0 // Run passed
	TestFailure = 1 // Run failed (includes the no-tests-found case)
	RuntimeErr  = 2 // Runtime errors
)
