package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sheetpivot/internal/config"
	"sheetpivot/internal/store"
	"sheetpivot/internal/workbook"
)

func importSales(t *testing.T, st *store.Store, paths *config.Paths) {
	t.Helper()
	input := writeInput(t, paths, "input.xlsx", salesSheet())
	_, err := NewImportService(st, paths, "tables", nil, testLogger()).
		Import(context.Background(), ImportRequest{Path: input})
	require.NoError(t, err)
}

func readOutput(t *testing.T, path string) map[string]workbook.Sheet {
	t.Helper()
	sheets, err := workbook.Read(path, "")
	require.NoError(t, err)
	out := make(map[string]workbook.Sheet, len(sheets))
	for _, s := range sheets {
		out[s.Name] = s
	}
	return out
}

func TestImportThenExport(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	paths := testPaths(t)
	importSales(t, st, paths)

	svc := NewExportService(st, paths, "tables", pipelineConfig(), nil, testLogger())
	res, err := svc.Export(ctx, ExportRequest{
		OutputPath:   "out/result.xlsx",
		Index:        []string{"region"},
		Values:       []string{"sales"},
		Aggregations: []string{"sum"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 3, res.PivotRows)
	assert.Empty(t, res.PivotError)
	assert.Equal(t, filepath.Join(paths.DataDir, "out", "result.xlsx"), res.OutputPath)
	assert.Equal(t, []ColumnInfo{
		{Name: "region", Category: "textual"},
		{Name: "sales", Category: "numeric"},
		{Name: "day", Category: "temporal"},
		{Name: "note", Category: "textual"},
	}, res.Columns)

	sheets := readOutput(t, res.OutputPath)
	require.Len(t, sheets, 2)

	validated := sheets[config.ValidatedSheetName]
	assert.Equal(t, []string{"region", "sales", "day", "note"}, validated.Columns)
	assert.Equal(t, []string{"E", "10", "2023-01-01 00:00:00", "a"}, validated.Rows[0])
	assert.Equal(t, []string{"W", "5", "2023-01-02 00:00:00", "no data"}, validated.Rows[1])

	pivot := sheets[config.PivotSheetName]
	assert.Equal(t, []string{"region", "sales"}, pivot.Columns)
	assert.Equal(t, [][]string{
		{"E", "13"},
		{"W", "5"},
		{"Total General", "18"},
	}, pivot.Rows)
}

// writeFormattedSales writes sales with a thousands-separator number format
// and days with a built-in date format, as a spreadsheet user would.
func writeFormattedSales(t *testing.T, paths *config.Paths) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]interface{}{
		{"region", "sales", "day"},
		{"E", 1234.5, time.Date(2023, 1, 1, 9, 15, 0, 0, time.UTC)},
		{"W", 2000, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"E", 3000.25, time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)},
	}
	for r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &rows[r]))
	}
	thousands, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	require.NoError(t, err)
	days, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "B2", "B4", thousands))
	require.NoError(t, f.SetCellStyle("Sheet1", "C2", "C4", days))
	require.NoError(t, f.SaveAs(filepath.Join(paths.DataDir, "formatted.xlsx")))
	return "formatted.xlsx"
}

func TestImportThenExportFormattedNumbers(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	paths := testPaths(t)
	input := writeFormattedSales(t, paths)

	_, err := NewImportService(st, paths, "tables", nil, testLogger()).
		Import(ctx, ImportRequest{Path: input})
	require.NoError(t, err)

	svc := NewExportService(st, paths, "tables", pipelineConfig(), nil, testLogger())
	res, err := svc.Export(ctx, ExportRequest{
		OutputPath:   "out/formatted.xlsx",
		Index:        []string{"region"},
		Values:       []string{"sales"},
		Aggregations: []string{"sum"},
	})
	require.NoError(t, err)
	assert.Empty(t, res.PivotError)
	assert.Equal(t, []ColumnInfo{
		{Name: "region", Category: "textual"},
		{Name: "sales", Category: "numeric"},
		{Name: "day", Category: "temporal"},
	}, res.Columns)

	sheets := readOutput(t, res.OutputPath)
	validated := sheets[config.ValidatedSheetName]
	assert.Equal(t, []string{"E", "1234.5", "2023-01-01 09:15:00"}, validated.Rows[0])

	assert.Equal(t, [][]string{
		{"E", "4234.75"},
		{"W", "2000"},
		{"Total General", "6234.75"},
	}, sheets[config.PivotSheetName].Rows)
}

func TestExportMissingColumnStillWritesValidatedSheet(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	paths := testPaths(t)
	importSales(t, st, paths)

	svc := NewExportService(st, paths, "tables", pipelineConfig(), nil, testLogger())
	res, err := svc.Export(ctx, ExportRequest{
		OutputPath:   "result.xlsx",
		Index:        []string{"region"},
		Values:       []string{"amount"},
		Aggregations: []string{"sum"},
	})
	require.NoError(t, err)
	assert.Contains(t, res.PivotError, `"amount"`)
	assert.Contains(t, res.Message, "pivot table could not be built")

	sheets := readOutput(t, res.OutputPath)
	assert.Len(t, sheets[config.ValidatedSheetName].Rows, 3)

	pivot := sheets[config.PivotSheetName]
	assert.Equal(t, []string{"Error"}, pivot.Columns)
	require.Len(t, pivot.Rows, 1)
	assert.Equal(t, res.PivotError, pivot.Rows[0][0])
}

func TestExportInvalidAggregation(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	paths := testPaths(t)
	importSales(t, st, paths)

	svc := NewExportService(st, paths, "tables", pipelineConfig(), nil, testLogger())
	res, err := svc.Export(ctx, ExportRequest{
		OutputPath:   "result.xlsx",
		Index:        []string{"sales"},
		Values:       []string{"region"},
		Aggregations: []string{"sum"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.PivotError)
}

func TestExportEmptyCollection(t *testing.T) {
	st := openTestStore(t)
	paths := testPaths(t)

	svc := NewExportService(st, paths, "tables", pipelineConfig(), nil, testLogger())
	res, err := svc.Export(context.Background(), ExportRequest{
		OutputPath:   "empty.xlsx",
		Collection:   "nothing",
		Index:        []string{"region"},
		Values:       []string{"sales"},
		Aggregations: []string{"sum"},
	})
	require.NoError(t, err)
	assert.Zero(t, res.Rows)
	assert.Contains(t, res.PivotError, `"region"`)
	assert.FileExists(t, res.OutputPath)
}

func TestExportErrors(t *testing.T) {
	ctx := context.Background()
	paths := testPaths(t)

	t.Run("empty output path", func(t *testing.T) {
		svc := NewExportService(openTestStore(t), paths, "tables", pipelineConfig(), nil, testLogger())
		_, err := svc.Export(ctx, ExportRequest{})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("closed store", func(t *testing.T) {
		st := openTestStore(t)
		require.NoError(t, st.Close())
		svc := NewExportService(st, paths, "tables", pipelineConfig(), nil, testLogger())
		_, err := svc.Export(ctx, ExportRequest{OutputPath: "x.xlsx"})
		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})

	t.Run("unwritable output", func(t *testing.T) {
		// A directory in place of the output file makes the save fail.
		dir := filepath.Join(paths.DataDir, "taken.xlsx")
		require.NoError(t, workbook.Write(filepath.Join(dir, "inner.xlsx"), []workbook.SheetData{{Name: "s"}}))
		svc := NewExportService(openTestStore(t), paths, "tables", pipelineConfig(), nil, testLogger())
		_, err := svc.Export(ctx, ExportRequest{OutputPath: "taken.xlsx"})
		assert.ErrorIs(t, err, ErrWorkbookIO)
	})
}

func TestRecordsTable(t *testing.T) {
	records := []store.Record{
		store.NewRecord([]string{"a", "b"}, []any{"1", "x"}),
		store.NewRecord([]string{"b", "c"}, []any{"y", "2"}),
	}
	table := recordsTable(records)
	assert.Equal(t, []string{"a", "b", "c"}, table.Columns)
	assert.Equal(t, []any{"1", nil}, table.Column("a"))
	assert.Equal(t, []any{nil, "2"}, table.Column("c"))
}
