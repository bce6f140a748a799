package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sheetpivot/internal/infrastructure"
	"sheetpivot/internal/services"
	"sheetpivot/internal/shared/testutil"
)

func TestHealthHandler(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		setup      func(m *mockHealthService)
		call       func(h *HealthHandler) http.HandlerFunc
		wantStatus int
		check      func(t *testing.T, body map[string]interface{})
	}{
		{
			name: "health",
			setup: func(m *mockHealthService) {
				m.On("HealthCheck", mock.Anything).Return(services.HealthStatus{Status: "ok", Timestamp: now, Version: "1.0.0"})
			},
			call:       func(h *HealthHandler) http.HandlerFunc { return h.HealthCheck },
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "ok", body["status"])
				assert.Equal(t, "1.0.0", body["version"])
			},
		},
		{
			name: "ready",
			setup: func(m *mockHealthService) {
				m.On("ReadinessCheck", mock.Anything).Return(services.HealthStatus{
					Status:   "ready",
					Services: map[string]interface{}{"store": services.ServiceHealth{Status: "ready"}},
				})
			},
			call:       func(h *HealthHandler) http.HandlerFunc { return h.ReadinessCheck },
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Contains(t, body, "services")
			},
		},
		{
			name: "not ready",
			setup: func(m *mockHealthService) {
				m.On("ReadinessCheck", mock.Anything).Return(services.HealthStatus{
					Status:   "not_ready",
					Services: map[string]interface{}{"store": services.ServiceHealth{Status: "not_ready", Message: "record store error: store is closed"}},
				})
			},
			call:       func(h *HealthHandler) http.HandlerFunc { return h.ReadinessCheck },
			wantStatus: http.StatusServiceUnavailable,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "not_ready", body["status"])
			},
		},
		{
			name: "live",
			setup: func(m *mockHealthService) {
				m.On("LivenessCheck", mock.Anything).Return(services.HealthStatus{
					Status:  "alive",
					Runtime: map[string]interface{}{"goroutines": 4},
				})
			},
			call:       func(h *HealthHandler) http.HandlerFunc { return h.LivenessCheck },
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "alive", body["status"])
				assert.Contains(t, body, "runtime")
			},
		},
		{
			name: "version",
			setup: func(m *mockHealthService) {
				m.On("Version").Return(map[string]interface{}{"version": "1.0.0", "build_id": "abc"})
			},
			call:       func(h *HealthHandler) http.HandlerFunc { return h.Version },
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "abc", body["build_id"])
			},
		},
		{
			name: "stats",
			setup: func(m *mockHealthService) {
				m.On("SystemStats", mock.Anything).Return(&infrastructure.RuntimeStats{Goroutines: 7, StoreLSMBytes: 1024})
			},
			call:       func(h *HealthHandler) http.HandlerFunc { return h.Stats },
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, float64(7), body["goroutines"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			svc := &mockHealthService{}
			tt.setup(svc)
			h := NewHealthHandler(svc, logger)

			rec := httptest.NewRecorder()
			tt.call(h)(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			tt.check(t, body)
			svc.AssertExpectations(t)
		})
	}
}
