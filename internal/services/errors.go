package services

import (
	"context"
	"errors"
	"fmt"

	"sheetpivot/internal/store"
	"sheetpivot/internal/workbook"
)

// Pipeline errors. Callers match them with errors.Is.
var (
	// Store errors
	ErrStoreUnavailable = errors.New("record store unavailable")

	// Workbook errors
	ErrWorkbookIO    = errors.New("workbook i/o failed")
	ErrSheetNotFound = errors.New("sheet not found")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)

// storeError classifies an error returned by the record store.
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, store.ErrInvalidCollection):
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidInput, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}
}

// workbookError classifies an error returned by the workbook reader or writer.
func workbookError(op string, err error) error {
	if errors.Is(err, workbook.ErrSheetNotFound) {
		return fmt.Errorf("%s: %w: %w", op, ErrSheetNotFound, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrWorkbookIO, err)
}
