package workbook

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes sheets of raw cell rows with excelize directly.
func buildWorkbook(t *testing.T, sheets map[string][][]interface{}, order []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.xlsx")

	f := excelize.NewFile()
	defer f.Close()
	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadSingleSheet(t *testing.T) {
	path := buildWorkbook(t, map[string][][]interface{}{
		"ventas": {
			{"region", "sales", "note"},
			{"E", 10, "ok"},
			{"W", 5.5},
			{nil, nil, nil},
			{"E", 3, ""},
		},
		"other": {{"x"}, {1}},
	}, []string{"ventas", "other"})

	sheets, err := Read(path, "ventas")
	require.NoError(t, err)
	require.Len(t, sheets, 1)

	s := sheets[0]
	assert.Equal(t, "ventas", s.Name)
	assert.Equal(t, []string{"region", "sales", "note"}, s.Columns)
	assert.Equal(t, [][]string{
		{"E", "10", "ok"},
		{"W", "5.5", ""},
		{"E", "3", ""},
	}, s.Rows)
	assert.Equal(t, [][]any{
		{"E", 10.0, "ok"},
		{"W", 5.5, ""},
		{"E", 3.0, ""},
	}, s.Values)
}

func TestReadTypedCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typed.xlsx")
	when := time.Date(2023, 3, 15, 14, 30, 0, 0, time.UTC)

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"amount", "stamp", "day", "ratio", "flag", "code"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{1234.5, when, when, 0.25, true, "007"}))

	thousands, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	require.NoError(t, err)
	stamp, err := f.NewStyle(&excelize.Style{NumFmt: 22})
	require.NoError(t, err)
	day, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(`dd/mm/yyyy "day"`)})
	require.NoError(t, err)
	percent, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr("0.00%")})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "A2", "A2", thousands))
	require.NoError(t, f.SetCellStyle("Sheet1", "B2", "B2", stamp))
	require.NoError(t, f.SetCellStyle("Sheet1", "C2", "C2", day))
	require.NoError(t, f.SetCellStyle("Sheet1", "D2", "D2", percent))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	sheets, err := Read(path, "")
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	require.Len(t, sheets[0].Values, 1)
	row := sheets[0].Values[0]

	// Displayed text follows the number format; values do not.
	assert.Equal(t, "1,234.50", sheets[0].Rows[0][0])
	assert.Equal(t, 1234.5, row[0])

	for _, i := range []int{1, 2} {
		got, ok := row[i].(time.Time)
		require.True(t, ok, "column %d: %T", i, row[i])
		assert.True(t, when.Equal(got), "column %d: %v", i, got)
	}

	assert.Equal(t, 0.25, row[3])
	assert.Equal(t, true, row[4])
	assert.Equal(t, "007", row[5])
}

func TestIsDateFormat(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{code: "yyyy-mm-dd hh:mm:ss", want: true},
		{code: "[$-409]d-mmm-yy", want: true},
		{code: "h:mm AM/PM", want: true},
		{code: "#,##0.00", want: false},
		{code: "0.00%", want: false},
		{code: `0 "days"`, want: false},
		{code: `0\d`, want: false},
		{code: "General", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, isDateFormat(tt.code))
		})
	}
}

func TestReadAllSheets(t *testing.T) {
	path := buildWorkbook(t, map[string][][]interface{}{
		"a": {{"k"}, {"1"}},
		"b": {{"k"}, {"2"}, {"3"}},
	}, []string{"a", "b"})

	sheets, err := Read(path, "")
	require.NoError(t, err)
	require.Len(t, sheets, 2)
	assert.Equal(t, "a", sheets[0].Name)
	assert.Equal(t, "b", sheets[1].Name)
	assert.Len(t, sheets[1].Rows, 2)
}

func TestReadMissingSheet(t *testing.T) {
	path := buildWorkbook(t, map[string][][]interface{}{"a": {{"k"}}}, []string{"a"})

	_, err := Read(path, "nope")
	assert.True(t, errors.Is(err, ErrSheetNotFound))
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.xlsx"), "")
	assert.Error(t, err)
}

func TestHeaderNames(t *testing.T) {
	tests := []struct {
		name  string
		raw   []string
		width int
		want  []string
	}{
		{name: "plain", raw: []string{"a", "b"}, width: 2, want: []string{"a", "b"}},
		{name: "blank", raw: []string{"a", "", " "}, width: 3, want: []string{"a", "Unnamed: 1", "Unnamed: 2"}},
		{name: "padded", raw: []string{"a"}, width: 3, want: []string{"a", "Unnamed: 1", "Unnamed: 2"}},
		{name: "duplicates", raw: []string{"a", "a", "a"}, width: 3, want: []string{"a", "a.1", "a.2"}},
		{name: "suffix clash", raw: []string{"a", "a.1", "a"}, width: 3, want: []string{"a", "a.1", "a.2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HeaderNames(tt.raw, tt.width))
		})
	}
}

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "result.xlsx")
	day := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

	err := Write(path, []SheetData{
		{
			Name:   "Datos_Validados",
			Header: []string{"region", "sales", "day"},
			Rows: [][]any{
				{"E", 13.0, day},
				{"W", 5.0, nil},
			},
		},
		{
			Name:   "Tabla_Dinamica",
			Header: []string{"Error"},
			Rows:   [][]any{{"column \"amount\" not found in table"}},
		},
	})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Datos_Validados", "Tabla_Dinamica"}, f.GetSheetList())

	sheets, err := Read(path, "")
	require.NoError(t, err)
	require.Len(t, sheets, 2)

	assert.Equal(t, []string{"region", "sales", "day"}, sheets[0].Columns)
	assert.Equal(t, "E", sheets[0].Rows[0][0])
	assert.Equal(t, "13", sheets[0].Rows[0][1])
	assert.Equal(t, "2023-01-02 00:00:00", sheets[0].Rows[0][2])
	assert.Equal(t, []string{"W", "5", ""}, sheets[0].Rows[1])
	assert.Equal(t, 13.0, sheets[0].Values[0][1])
	got, ok := sheets[0].Values[0][2].(time.Time)
	require.True(t, ok)
	assert.True(t, day.Equal(got))

	assert.Equal(t, []string{"Error"}, sheets[1].Columns)
	assert.Contains(t, sheets[1].Rows[0][0], "amount")
}

func TestWriteNoSheets(t *testing.T) {
	assert.Error(t, Write(filepath.Join(t.TempDir(), "x.xlsx"), nil))
}
