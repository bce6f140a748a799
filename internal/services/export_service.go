package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"sheetpivot/internal/config"
	"sheetpivot/internal/infrastructure"
	"sheetpivot/internal/store"
	"sheetpivot/internal/tabulate"
	"sheetpivot/internal/workbook"
)

// ExportRequest names the output workbook, the source collection and the
// pivot to build.
type ExportRequest struct {
	OutputPath   string
	Collection   string
	Index        []string
	Values       []string
	Aggregations []string
}

// ColumnInfo is the category detected for one validated column.
type ColumnInfo struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// ExportResult reports what an export wrote. PivotError is set when the
// pivot sheet holds an error table instead of a pivot.
type ExportResult struct {
	Message    string       `json:"message"`
	OutputPath string       `json:"output_path"`
	Rows       int          `json:"rows"`
	Columns    []ColumnInfo `json:"columns"`
	PivotRows  int          `json:"pivot_rows"`
	PivotError string       `json:"pivot_error,omitempty"`
}

// ExportService writes a validated copy of a collection and its pivot to a
// two-sheet workbook.
type ExportService struct {
	store             *store.Store
	paths             PathResolver
	defaultCollection string
	validator         *tabulate.Validator
	pivots            *tabulate.PivotBuilder
	metrics           *infrastructure.BusinessMetrics
	tracer            trace.Tracer
	logger            *slog.Logger
}

// NewExportService creates an export service tuned by the pipeline settings.
// metrics may be nil.
func NewExportService(st *store.Store, paths PathResolver, defaultCollection string, pipeline config.PipelineConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "export_service"))
	return &ExportService{
		store:             st,
		paths:             paths,
		defaultCollection: defaultCollection,
		validator:         tabulate.NewValidator(pipeline.Threshold, pipeline.Sentinel, logger),
		pivots:            tabulate.NewPivotBuilder(pipeline.Sentinel, pipeline.GrandTotalLabel, logger),
		metrics:           metrics,
		tracer:            otel.Tracer(TracerName),
		logger:            logger,
	}
}

// Export loads the collection, validates every column and builds the pivot.
// A pivot failure is written into the pivot sheet and reported in the result;
// only store and workbook failures fail the call.
func (s *ExportService) Export(ctx context.Context, req ExportRequest) (result *ExportResult, err error) {
	collection := s.defaultCollection
	if strings.TrimSpace(req.Collection) != "" {
		collection = req.Collection
	}
	ctx, span := s.tracer.Start(ctx, "export",
		trace.WithAttributes(
			attribute.String("export.collection", collection),
			attribute.StringSlice("export.index", req.Index),
			attribute.StringSlice("export.values", req.Values),
		))
	defer span.End()

	start := time.Now()
	var pivotErr error
	defer func() {
		infrastructure.RecordExport(ctx, s.metrics, collection, time.Since(start), pivotErr, err)
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
	}()

	path, err := s.paths.ResolveWorkbook(req.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	records, err := s.store.Collection(collection).Find(ctx, nil, nil)
	if err != nil {
		return nil, storeError("load collection", err)
	}
	table := recordsTable(records)

	vt := s.validate(ctx, table)

	pt, pivotErr := s.pivot(ctx, vt, tabulate.PivotSpec{
		Index:        req.Index,
		Values:       req.Values,
		Aggregations: req.Aggregations,
	})

	sheets := []workbook.SheetData{
		validatedSheet(vt),
		pivotSheet(pt),
	}
	if err := workbook.Write(path, sheets); err != nil {
		return nil, workbookError("write workbook", err)
	}

	result = &ExportResult{
		Message:    fmt.Sprintf("workbook %s exported with %d rows", req.OutputPath, vt.Len()),
		OutputPath: path,
		Rows:       vt.Len(),
		Columns:    make([]ColumnInfo, 0, len(vt.Columns)),
		PivotRows:  len(pt.Rows),
	}
	for _, col := range vt.Columns {
		result.Columns = append(result.Columns, ColumnInfo{Name: col.Name, Category: col.Category.String()})
	}
	if pivotErr != nil {
		result.PivotError = pivotErr.Error()
		result.Message += "; pivot table could not be built"
	}

	s.logger.InfoContext(ctx, "workbook exported",
		slog.String("path", path),
		slog.String("collection", collection),
		slog.Int("rows", vt.Len()),
		slog.Int("pivot_rows", len(pt.Rows)),
		slog.Bool("pivot_failed", pivotErr != nil))
	return result, nil
}

func (s *ExportService) validate(ctx context.Context, table tabulate.Table) tabulate.ValidatedTable {
	ctx, span := s.tracer.Start(ctx, "export.validate",
		trace.WithAttributes(attribute.Int("validate.columns", len(table.Columns))))
	defer span.End()

	vt := s.validator.Validate(ctx, table)
	for _, col := range vt.Columns {
		infrastructure.RecordColumnCategory(ctx, s.metrics, col.Category.String())
	}
	return vt
}

// pivot always returns a table to write: the pivot, or the error table.
func (s *ExportService) pivot(ctx context.Context, vt tabulate.ValidatedTable, spec tabulate.PivotSpec) (*tabulate.PivotTable, error) {
	ctx, span := s.tracer.Start(ctx, "export.pivot")
	defer span.End()

	pt, err := s.pivots.Build(ctx, vt, spec)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "pivot replaced by error table",
			slog.String("error", err.Error()))
		et := tabulate.ErrorTable(err)
		return &et, err
	}
	span.SetAttributes(attribute.Int("pivot.rows", len(pt.Rows)))
	return pt, nil
}

// recordsTable lays records out as a table. Columns appear in first-seen
// order; a field absent from a record is left out of its row.
func recordsTable(records []store.Record) tabulate.Table {
	var t tabulate.Table
	seen := make(map[string]bool)
	t.Rows = make([]tabulate.Row, len(records))
	for i, rec := range records {
		row := make(tabulate.Row, len(rec.Fields))
		for _, f := range rec.Fields {
			if !seen[f.Name] {
				seen[f.Name] = true
				t.Columns = append(t.Columns, f.Name)
			}
			row[f.Name] = f.Value
		}
		t.Rows[i] = row
	}
	return t
}

func validatedSheet(vt tabulate.ValidatedTable) workbook.SheetData {
	sd := workbook.SheetData{
		Name:   config.ValidatedSheetName,
		Header: vt.Names(),
		Rows:   make([][]any, vt.Len()),
	}
	for r := range sd.Rows {
		row := make([]any, len(vt.Columns))
		for c, col := range vt.Columns {
			row[c] = col.Values[r].Any()
		}
		sd.Rows[r] = row
	}
	return sd
}

func pivotSheet(pt *tabulate.PivotTable) workbook.SheetData {
	sd := workbook.SheetData{
		Name:   config.PivotSheetName,
		Header: pt.Header,
		Rows:   make([][]any, len(pt.Rows)),
	}
	for r, cells := range pt.Rows {
		row := make([]any, len(cells))
		for c, v := range cells {
			row[c] = v.Any()
		}
		sd.Rows[r] = row
	}
	return sd
}
