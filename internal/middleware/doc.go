// Package middleware holds the HTTP middleware chain: request ids, OpenTelemetry
// spans and metrics, structured request logs, panic recovery, security and
// CORS headers, rate limiting, request deadlines and JSON body validation.
// Every rejection is written as an RFC 7807 problem.
package middleware
