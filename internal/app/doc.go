// Package app wires sheetpivot together and runs it.
//
// New resolves the configured directories, initializes OpenTelemetry, opens
// the record store once and builds the import, export and health services on
// top of it. The router applies the middleware chain
//
//	RequestID → RealIP → OTel → StructuredLogger → Recoverer →
//	SecurityHeaders → CORS → RateLimiter → Timeout
//
// and serves the /api endpoints plus /metrics.
//
// Run listens on the configured port and serves until SIGINT or SIGTERM.
// The HTTP server and the runtime metrics sampler share an errgroup; when
// either fails or a signal arrives, Stop shuts down the server, flushes the
// OpenTelemetry providers and closes the store. Errors are returned to the
// caller; the package never calls os.Exit.
package app
