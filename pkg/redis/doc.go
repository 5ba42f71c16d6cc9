// Package redis connects the webhook deduplication store to Redis:
// URL-based configuration, ping-verified startup with retries, and a
// healthcheck for the readiness endpoint.
package redis
