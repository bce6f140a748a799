// Package workbook reads and writes xlsx workbooks with excelize.
//
// Read returns sheets as rectangular text grids with a unique header, ready
// to be stored as records. Write streams typed cells, so numbers stay numbers
// and time.Time values carry a date format in the output file.
package workbook
