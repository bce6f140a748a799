// Package tabulate implements the type-inference and pivot pipeline.
//
// A Table of loosely typed records passes through three steps:
//
//	1. Every column is classified as Numeric, Temporal or Textual by the
//	   share of its non-missing values that coerce to each kind.
//	2. Every value is rewritten to the column's kind. Numeric gaps become 0,
//	   temporal gaps stay Missing and textual gaps become a sentinel string.
//	3. PivotBuilder groups the validated table by one or more columns,
//	   aggregates the value columns and appends a grand-total row.
//
// Coercion never fails. Pivot construction fails only on an invalid
// definition, and callers substitute ErrorTable for the pivot output.
package tabulate
