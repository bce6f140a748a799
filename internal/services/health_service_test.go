package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sheetpivot/internal/infrastructure"
	"sheetpivot/pkg/contracts"
)

type mockPinger struct {
	mock.Mock
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestHealthCheckIsStatic(t *testing.T) {
	hs := NewHealthService(BuildInfo{Version: "1.2.3"}, t.TempDir(), nil, nil, testLogger())
	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
}

func TestReadinessCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("ready", func(t *testing.T) {
		p := new(mockPinger)
		p.On("Ping", mock.Anything).Return(nil)
		hs := NewHealthService(BuildInfo{}, t.TempDir(), p, nil, testLogger())

		status := hs.ReadinessCheck(ctx)
		assert.Equal(t, "ready", status.Status)
		assert.Equal(t, "ready", status.Services["store"].(ServiceHealth).Status)
		p.AssertExpectations(t)
	})

	t.Run("store down", func(t *testing.T) {
		p := new(mockPinger)
		p.On("Ping", mock.Anything).Return(errors.New("closed"))
		hs := NewHealthService(BuildInfo{}, t.TempDir(), p, nil, testLogger())

		status := hs.ReadinessCheck(ctx)
		assert.Equal(t, "not_ready", status.Status)
		assert.Contains(t, status.Services["store"].(ServiceHealth).Message, "closed")
	})

	t.Run("missing data dir", func(t *testing.T) {
		hs := NewHealthService(BuildInfo{}, filepath.Join(t.TempDir(), "absent"), openTestStore(t), nil, testLogger())
		status := hs.ReadinessCheck(ctx)
		assert.Equal(t, "not_ready", status.Status)
		assert.Equal(t, "not_ready", status.Services["data"].(ServiceHealth).Status)
	})
}

func TestLivenessAndStats(t *testing.T) {
	st := openTestStore(t)
	rc, err := infrastructure.NewRuntimeCollector(nil, st.Size, 0)
	require.NoError(t, err)
	hs := NewHealthService(BuildInfo{Version: "v"}, t.TempDir(), st, rc, testLogger())

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Greater(t, live.Runtime["goroutines"], 0)

	stats := hs.SystemStats(context.Background())
	assert.NotEmpty(t, stats.GoVersion)
	assert.Positive(t, stats.CPUCount)
}

func TestVersionIncludesBuildInfo(t *testing.T) {
	hs := NewHealthService(BuildInfo{Version: "1.0.0", BuildTime: "now", BuildID: "abc"}, t.TempDir(), nil, nil, testLogger())
	v := hs.Version()
	assert.Equal(t, "1.0.0", v["version"])
	assert.Equal(t, "now", v["build_time"])
	assert.Equal(t, "abc", v["build_id"])
	assert.Equal(t, contracts.GetFullVersionString(), v["full_version"])
	assert.Equal(t, contracts.VersionStage, v["stage"])
	assert.Equal(t, contracts.IsStable(), v["stable"])
	assert.Equal(t, true, v["prerelease"])
}
