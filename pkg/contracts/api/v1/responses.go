package api

import "net/http"

// ImportResponse reports the rows written by an import.
type ImportResponse struct {
	Message    string `json:"message"`
	Collection string `json:"collection"`
	Rows       int    `json:"rows"`
	Sheets     int    `json:"sheets"`
}

// Render implements the render.Renderer interface
func (*ImportResponse) Render(http.ResponseWriter, *http.Request) error { return nil }

// ColumnSummary is the category detected for one exported column.
type ColumnSummary struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// ExportResponse reports what an export wrote. PivotError is set when the
// pivot sheet holds an error table.
type ExportResponse struct {
	Message    string          `json:"message"`
	OutputPath string          `json:"output_path"`
	Rows       int             `json:"rows"`
	Columns    []ColumnSummary `json:"columns"`
	PivotRows  int             `json:"pivot_rows"`
	PivotError string          `json:"pivot_error,omitempty"`
}

// Render implements the render.Renderer interface
func (*ExportResponse) Render(http.ResponseWriter, *http.Request) error { return nil }
