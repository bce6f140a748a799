// Package errors renders failures as RFC 7807 problem details.
//
// Handlers translate service errors into *APIError values and pass them to
// ErrorHandler.HandleError, which picks the problem type, status and
// extensions (error_code, details, trace_id). Context cancellation becomes a
// 504; anything unrecognised becomes a 500 without leaking its message.
package errors
