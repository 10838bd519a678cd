// Package logging provides a simple leveled logging interface for the
// autoplay daemon.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable.
//
// Engine components never call the package functions directly; they receive
// a Logger so diagnostics can be captured in tests with a Recorder.
package logging
