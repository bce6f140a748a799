package tabulate

import (
	"errors"
	"fmt"
)

// ErrMissingColumn matches any MissingColumnError via errors.Is.
var ErrMissingColumn = errors.New("missing column")

// ErrInvalidPivot matches every pivot definition error that is not a
// missing column.
var ErrInvalidPivot = errors.New("invalid pivot definition")

// MissingColumnError names a grouping or value column absent from the table.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q not found in table", e.Column)
}

// Is reports ErrMissingColumn as a match.
func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

// PivotSpecError describes a structurally invalid pivot definition.
type PivotSpecError struct {
	Reason string
}

func (e *PivotSpecError) Error() string {
	return "invalid pivot: " + e.Reason
}

func (e *PivotSpecError) Is(target error) bool {
	return target == ErrInvalidPivot
}

// UnknownAggregationError names an aggregation that is not registered.
type UnknownAggregationError struct {
	Name string
}

func (e *UnknownAggregationError) Error() string {
	return fmt.Sprintf("unknown aggregation %q", e.Name)
}

func (e *UnknownAggregationError) Is(target error) bool {
	return target == ErrInvalidPivot
}

// UnsupportedAggregationError reports a numeric aggregation requested on a
// column of another category.
type UnsupportedAggregationError struct {
	Aggregation string
	Column      string
	Category    Category
}

func (e *UnsupportedAggregationError) Error() string {
	return fmt.Sprintf("aggregation %q requires a numeric column, %q is %s",
		e.Aggregation, e.Column, e.Category)
}

func (e *UnsupportedAggregationError) Is(target error) bool {
	return target == ErrInvalidPivot
}
