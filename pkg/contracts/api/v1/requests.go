// Package api contains the JSON contracts of the sheetpivot HTTP API.
// Version v1 represents the current stable API version.
package api

import (
	"net/http"
	"strings"
)

// ImportRequest asks for a workbook, or one of its sheets, to be copied into
// a collection.
type ImportRequest struct {
	Path       string `json:"path" validate:"required,workbook"`
	Sheet      string `json:"sheet,omitempty" validate:"omitempty,sheetname"`
	Collection string `json:"collection,omitempty" validate:"omitempty,collection"`
}

// Bind implements the render.Binder interface
func (r *ImportRequest) Bind(*http.Request) error {
	r.Path = strings.TrimSpace(r.Path)
	r.Collection = strings.TrimSpace(r.Collection)
	return nil
}

// ExportRequest asks for a collection to be validated and pivoted into a new
// workbook. Pivot problems such as unknown columns or aggregations do not
// fail the request; they are reported through ExportResponse.PivotError.
type ExportRequest struct {
	OutputPath   string   `json:"output_path" validate:"required,workbook"`
	Collection   string   `json:"collection,omitempty" validate:"omitempty,collection"`
	Index        []string `json:"index" validate:"omitempty,dive,required"`
	Values       []string `json:"values" validate:"omitempty,dive,required"`
	Aggregations []string `json:"aggregations,omitempty" validate:"omitempty,dive,required"`
}

// Bind implements the render.Binder interface
func (r *ExportRequest) Bind(*http.Request) error {
	r.OutputPath = strings.TrimSpace(r.OutputPath)
	r.Collection = strings.TrimSpace(r.Collection)
	return nil
}
