// Package http implements the HTTP handlers of sheetpivot. Handlers stay thin:
// they decode and validate the JSON body, call a service through a small
// interface and render the result with chi/render.
//
// # Endpoints
//
//	POST /api/import       copy a workbook into a collection
//	POST /api/export       write Datos_Validados and Tabla_Dinamica sheets
//	GET  /api/health       static liveness probe
//	GET  /api/health/ready store and data directory checks, 503 when failing
//	GET  /api/health/live  uptime and goroutines
//	GET  /api/version      build information
//	GET  /api/stats        runtime and record store snapshot
//	GET  /metrics          Prometheus text format
//
// # Errors
//
// Service errors are mapped onto *errors.APIError values and written as RFC
// 7807 problem details:
//
//	services.ErrInvalidInput     400 INVALID_REQUEST
//	services.ErrSheetNotFound    404 SHEET_NOT_FOUND
//	services.ErrWorkbookIO       422 WORKBOOK_ERROR
//	services.ErrStoreUnavailable 503 STORE_UNAVAILABLE
//
// A pivot that cannot be built is not an error at this layer: the export
// answers 200 and reports the reason in pivot_error.
package http
