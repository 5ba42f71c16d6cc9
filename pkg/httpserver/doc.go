// Package httpserver runs the HTTP listener with graceful shutdown on
// context cancellation or SIGINT/SIGTERM, plus a readiness endpoint
// that aggregates dependency healthchecks.
package httpserver
