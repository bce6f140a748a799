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

	"sheetpivot/internal/infrastructure"
	"sheetpivot/internal/store"
	"sheetpivot/internal/workbook"
)

// TracerName names the spans started by the pipelines.
const TracerName = "sheetpivot.services"

// PathResolver maps a workbook path from a request onto the file system.
type PathResolver interface {
	ResolveWorkbook(path string) (string, error)
}

// ImportRequest selects a workbook, an optional sheet and a target collection.
type ImportRequest struct {
	Path       string
	Sheet      string
	Collection string
}

// ImportResult reports what an import wrote.
type ImportResult struct {
	Message    string `json:"message"`
	Collection string `json:"collection"`
	Rows       int    `json:"rows"`
	Sheets     int    `json:"sheets"`
}

// ImportService copies workbook rows into the record store.
type ImportService struct {
	store             *store.Store
	paths             PathResolver
	defaultCollection string
	metrics           *infrastructure.BusinessMetrics
	tracer            trace.Tracer
	logger            *slog.Logger
}

// NewImportService creates an import service. metrics may be nil.
func NewImportService(st *store.Store, paths PathResolver, defaultCollection string, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ImportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportService{
		store:             st,
		paths:             paths,
		defaultCollection: defaultCollection,
		metrics:           metrics,
		tracer:            otel.Tracer(TracerName),
		logger:            logger.With(slog.String("component", "import_service")),
	}
}

// Import reads the requested sheets and inserts one record per data row.
// Numbers are stored as float64, date-formatted cells as time.Time and
// blank cells as empty strings. Sheets are inserted one at a time in
// workbook order, so when an insert fails the rows of earlier sheets stay
// in the collection.
func (s *ImportService) Import(ctx context.Context, req ImportRequest) (result *ImportResult, err error) {
	collection := s.collection(req.Collection)
	ctx, span := s.tracer.Start(ctx, "import",
		trace.WithAttributes(
			attribute.String("import.collection", collection),
			attribute.String("import.sheet", req.Sheet),
		))
	defer span.End()

	start := time.Now()
	rows := 0
	defer func() {
		infrastructure.RecordImport(ctx, s.metrics, collection, rows, time.Since(start), err)
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
	}()

	path, err := s.paths.ResolveWorkbook(req.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	sheets, err := workbook.Read(path, req.Sheet)
	if err != nil {
		return nil, workbookError("read workbook", err)
	}

	coll := s.store.Collection(collection)
	for _, sh := range sheets {
		records := sheetRecords(sh)
		n, err := coll.InsertMany(ctx, records)
		if err != nil {
			return nil, storeError(fmt.Sprintf("insert sheet %s", sh.Name), err)
		}
		rows += n
		s.logger.DebugContext(ctx, "sheet imported",
			slog.String("sheet", sh.Name),
			slog.Int("rows", n),
			slog.Int("columns", len(sh.Columns)))
	}

	span.SetAttributes(attribute.Int("import.rows", rows))
	s.logger.InfoContext(ctx, "workbook imported",
		slog.String("path", path),
		slog.String("collection", collection),
		slog.Int("sheets", len(sheets)),
		slog.Int("rows", rows))

	return &ImportResult{
		Message:    importMessage(req.Path, rows, len(sheets)),
		Collection: collection,
		Rows:       rows,
		Sheets:     len(sheets),
	}, nil
}

func (s *ImportService) collection(name string) string {
	if strings.TrimSpace(name) == "" {
		return s.defaultCollection
	}
	return name
}

func sheetRecords(sh workbook.Sheet) []store.Record {
	records := make([]store.Record, len(sh.Values))
	for i, row := range sh.Values {
		records[i] = store.NewRecord(sh.Columns, row)
	}
	return records
}

func importMessage(path string, rows, sheets int) string {
	if sheets == 1 {
		return fmt.Sprintf("workbook %s imported with %d rows", path, rows)
	}
	return fmt.Sprintf("workbook %s imported with %d rows from %d sheets", path, rows, sheets)
}
