// Package logger provides leveled console logging for postmortem.
//
// # Verbosity Levels
//
// Logging behavior is controlled by two flags:
//
//   - --verbose: Shows info messages
//   - --debug: Shows info and debug messages
//
// Warnings and errors are always shown. Warnings are how postmortem reports
// recoverable conditions (a missing attachment, an account that carries a
// value but no recipients, an unexpected account count) so they must never
// be hidden.
//
// # Usage
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Processing %d accounts", count)
//
// Tests can redirect output by setting Stdout and Stderr.
package logger
