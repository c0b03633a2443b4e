// Package main provides the entry point for respcache-server.
//
// The server is a single process exposing:
//
//   - A TCP listener speaking a subset of the Redis RESP protocol
//     (PING, ECHO, SET with px expiry, GET)
//   - An optional HTTP listener serving Prometheus metrics
//
// Usage:
//
//	respcache-server [flags]
//	respcache-server --config /path/to/config.yaml
//	respcache-server --port 6380
//
// The server loads configuration, initializes the store and telemetry,
// starts the configured listeners, and reloads the log level when the
// configuration file changes.
package main
