// Package middleware provides HTTP middleware for the status server.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics labelled by route template
//   - Configurable filtering for health checks
package middleware
