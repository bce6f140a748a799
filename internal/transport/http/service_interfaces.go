package http

import (
	"context"

	"sheetpivot/internal/infrastructure"
	"sheetpivot/internal/services"
)

// ImportServiceInterface copies workbook rows into the record store
type ImportServiceInterface interface {
	Import(ctx context.Context, req services.ImportRequest) (*services.ImportResult, error)
}

// ExportServiceInterface writes the validated and pivot sheets of a collection
type ExportServiceInterface interface {
	Export(ctx context.Context, req services.ExportRequest) (*services.ExportResult, error)
}

// HealthServiceInterface defines the interface for health checks
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
	SystemStats(ctx context.Context) *infrastructure.RuntimeStats
}
