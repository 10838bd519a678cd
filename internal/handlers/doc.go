// Package handlers provides the HTTP status API of the session engine.
//
// It includes handlers for:
//   - Health, liveness and readiness probes
//   - Version and Prometheus metrics
//   - The current session snapshot and manual saves
//   - Capture history when the sqlite backend is in use
//   - The configured overrides
package handlers
