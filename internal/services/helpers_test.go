package services

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"sheetpivot/internal/config"
	"sheetpivot/internal/store"
	"sheetpivot/internal/workbook"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(store.Options{InMemory: true, Logger: testLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	return &config.Paths{DataDir: t.TempDir()}
}

// writeInput saves sheets under the data directory and returns the relative
// path used in requests.
func writeInput(t *testing.T, paths *config.Paths, name string, sheets ...workbook.SheetData) string {
	t.Helper()
	require.NoError(t, workbook.Write(filepath.Join(paths.DataDir, name), sheets))
	return name
}

func salesSheet() workbook.SheetData {
	return workbook.SheetData{
		Name:   "ventas",
		Header: []string{"region", "sales", "day", "note"},
		Rows: [][]any{
			{"E", 10, "2023-01-01", "a"},
			{"W", 5, "2023-01-02", ""},
			{"E", 3, "2023-01-03", "c"},
		},
	}
}

func pipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		Threshold:       0.7,
		Sentinel:        "no data",
		GrandTotalLabel: "Total General",
	}
}
