// Package respserver implements the RESP-subset protocol server.
//
// It contains the protocol value type and its codec, command
// construction and dispatch against the shared store, and the TCP
// accept loop that runs one connection per goroutine:
//
//   - value.go: the recursive protocol value (simple string, bulk
//     string, array) and its wire encoding
//   - decode.go: buffer decoder returning the unconsumed remainder
//   - command.go: the closed command set (PING, ECHO, SET, GET) and
//     store-resolving construction
//   - server.go: listener, per-connection loop, deadlines, rate limit
package respserver
