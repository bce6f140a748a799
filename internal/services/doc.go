// Package services implements the import and export pipelines and the
// health checks behind the HTTP and CLI front ends.
//
// # Import
//
// ImportService reads one or every sheet of a workbook and appends each data
// row to a record collection as a document of text cells. Nothing about the
// columns is enforced at write time.
//
// # Export
//
// ExportService loads a collection into a tabulate.Table, infers and coerces
// every column, and builds the requested pivot. The output workbook always
// gets the validated sheet; a pivot that cannot be built is replaced by a
// one-cell error table and reported in ExportResult.PivotError rather than as
// a call failure.
//
// # Errors
//
// Infrastructure failures are wrapped with ErrStoreUnavailable, ErrWorkbookIO
// or ErrSheetNotFound; bad request values with ErrInvalidInput. Handlers
// translate these into problem responses.
//
// # Testing
//
// Services run against an in-memory store and temporary workbooks:
//
//	st, _ := store.Open(store.Options{InMemory: true})
//	svc := NewImportService(st, paths, "tables", nil, logger)
//	res, err := svc.Import(ctx, ImportRequest{Path: "input.xlsx"})
package services
