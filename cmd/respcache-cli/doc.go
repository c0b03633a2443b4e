// Package main provides the entry point for respcache-cli.
//
// Usage:
//
//	respcache-cli [--server host:port] <command> [args]
//
// Commands:
//
//   - ping [message]: check server liveness
//   - echo <message>: echo a message back
//   - set <key> <value> [--px ms]: store a value
//   - get <key>: fetch a value
package main
