package http

import (
	"context"

	"github.com/stretchr/testify/mock"

	"sheetpivot/internal/infrastructure"
	"sheetpivot/internal/services"
)

type mockImportService struct {
	mock.Mock
}

func (m *mockImportService) Import(ctx context.Context, req services.ImportRequest) (*services.ImportResult, error) {
	args := m.Called(ctx, req)
	if res, ok := args.Get(0).(*services.ImportResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockExportService struct {
	mock.Mock
}

func (m *mockExportService) Export(ctx context.Context, req services.ExportRequest) (*services.ExportResult, error) {
	args := m.Called(ctx, req)
	if res, ok := args.Get(0).(*services.ExportResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockHealthService struct {
	mock.Mock
}

func (m *mockHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *mockHealthService) ReadinessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *mockHealthService) LivenessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *mockHealthService) Version() map[string]interface{} {
	return m.Called().Get(0).(map[string]interface{})
}

func (m *mockHealthService) SystemStats(ctx context.Context) *infrastructure.RuntimeStats {
	return m.Called(ctx).Get(0).(*infrastructure.RuntimeStats)
}
