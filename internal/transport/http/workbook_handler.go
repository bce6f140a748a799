package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "sheetpivot/internal/errors"
	"sheetpivot/internal/middleware"
	"sheetpivot/internal/services"
	api "sheetpivot/pkg/contracts/api/v1"
)

// WorkbookHandler serves the import and export endpoints
type WorkbookHandler struct {
	importer     ImportServiceInterface
	exporter     ExportServiceInterface
	validator    *middleware.RequestValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewWorkbookHandler creates a new workbook handler
func NewWorkbookHandler(importer ImportServiceInterface, exporter ExportServiceInterface, validator *middleware.RequestValidator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *WorkbookHandler {
	return &WorkbookHandler{
		importer:     importer,
		exporter:     exporter,
		validator:    validator,
		logger:       logger.With(slog.String("component", "workbook_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the workbook routes on their own router
func (h *WorkbookHandler) Routes() chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes adds POST /import and POST /export to r
func (h *WorkbookHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(middleware.ContentTypeValidator("application/json"))

		r.Post("/import", h.Import)
		r.Post("/export", h.Export)
	})
}

// Import handles POST /api/import
func (h *WorkbookHandler) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.ImportRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "import requested",
		slog.String("request_id", middleware.GetReqID(ctx)),
		slog.String("path", req.Path),
		slog.String("sheet", req.Sheet),
		slog.String("collection", req.Collection))

	result, err := h.importer.Import(ctx, services.ImportRequest{
		Path:       req.Path,
		Sheet:      req.Sheet,
		Collection: req.Collection,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(ctx, "import", err))
		return
	}

	render.Render(w, r, &api.ImportResponse{
		Message:    result.Message,
		Collection: result.Collection,
		Rows:       result.Rows,
		Sheets:     result.Sheets,
	})
}

// Export handles POST /api/export. A pivot that could not be built still
// answers 200 with pivot_error set.
func (h *WorkbookHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.ExportRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "export requested",
		slog.String("request_id", middleware.GetReqID(ctx)),
		slog.String("output_path", req.OutputPath),
		slog.String("collection", req.Collection),
		slog.Any("index", req.Index),
		slog.Any("values", req.Values))

	result, err := h.exporter.Export(ctx, services.ExportRequest{
		OutputPath:   req.OutputPath,
		Collection:   req.Collection,
		Index:        req.Index,
		Values:       req.Values,
		Aggregations: req.Aggregations,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(ctx, "export", err))
		return
	}

	resp := &api.ExportResponse{
		Message:    result.Message,
		OutputPath: result.OutputPath,
		Rows:       result.Rows,
		Columns:    make([]api.ColumnSummary, 0, len(result.Columns)),
		PivotRows:  result.PivotRows,
		PivotError: result.PivotError,
	}
	for _, c := range result.Columns {
		resp.Columns = append(resp.Columns, api.ColumnSummary{Name: c.Name, Category: c.Category})
	}
	render.Render(w, r, resp)
}

// mapServiceError turns service sentinels into API errors. Context errors
// pass through so the error handler reports a timeout.
func (h *WorkbookHandler) mapServiceError(ctx context.Context, op string, err error) error {
	h.logger.WarnContext(ctx, op+" failed",
		slog.String("request_id", middleware.GetReqID(ctx)),
		slog.String("error", err.Error()))

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, services.ErrInvalidInput):
		return apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request", err.Error())
	case errors.Is(err, services.ErrSheetNotFound):
		return apierrors.SheetNotFoundError(err)
	case errors.Is(err, services.ErrWorkbookIO):
		return apierrors.WorkbookError(op, err)
	case errors.Is(err, services.ErrStoreUnavailable):
		return apierrors.StoreUnavailableError(err)
	default:
		return err
	}
}
